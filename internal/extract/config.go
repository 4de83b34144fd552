package extract

// Config carries the immutable keyword and pattern tables the extractors
// match against. Construct one per locale or document profile; the zero
// value is not usable, start from DefaultConfig.
type Config struct {
	DateKeywords    []string
	InvoiceKeywords []string
	TotalKeywords   []string
	// TotalExclusions disqualify a line from being a hard total match
	// (tax, discount and fee qualifiers).
	TotalExclusions []string
	VendorKeywords  []string
	// NoiseTokens mark boilerplate lines that can never be a vendor name.
	NoiseTokens  []string
	AddressWords []string
	// ReservedIDWords reject false-positive invoice identifiers.
	ReservedIDWords []string

	// VendorScanLines bounds the top-of-document window scored for the
	// vendor name. TailScanLines bounds the reverse proximity search for
	// the total amount.
	VendorScanLines int
	TailScanLines   int
}

// DefaultConfig returns the stock keyword tables.
func DefaultConfig() Config {
	return Config{
		DateKeywords: []string{
			"date", "dated", "invoice date", "bill date", "inv date",
			"issued on", "created on", "billing date", "payment date",
			"statement date", "generation date", "document date",
			"transaction date", "txn date", "delivered on", "shipped on",
		},
		InvoiceKeywords: []string{
			"invoice", "bill", "receipt", "inv", "no", "number", "bill#",
			"invoice#", "inv#", "ref", "ride id", "order #", "order no",
			"txn id", "transaction", "folio", "voucher", "doc no",
		},
		TotalKeywords: []string{
			"total", "amount", "amt", "grand total", "net total",
			"total amount", "final amount", "subtotal", "charged", "fare",
			"price", "payable", "due", "sum", "bill total", "net amount",
			"paid",
		},
		TotalExclusions: []string{
			"taxable", "sub", "discount", "received", "fee", "%",
			"cgst", "sgst", "igst", "item total",
		},
		VendorKeywords: []string{
			"pvt", "ltd", "private", "company", "co.", "shop", "store",
			"enterprises", "restaurant", "dhaba", "hotel", "foods", "cafe",
			"bakery", "mart", "super", "services", "agency", "clinic",
			"pharmacy", "electrical", "electronics", "bus", "cab", "ride",
			"uber", "rapido", "ola", "zomato", "swiggy", "blinkit",
			"groceries", "trading", "retail", "solutions", "corp", "family",
			"shree", "ventures", "llp",
		},
		NoiseTokens: []string{
			"chq", "help", "delivered", "items", "copy", "logo", "time",
			"date", "no", "gst", "cin", "pan", "reorder", "sr#", "qty",
		},
		AddressWords: []string{
			"india", "karnataka", "maharashtra", "thane", "bengaluru",
			"mumbai", "road", "village", "taluka", "district", "dist",
			"pin", "pincode", "state", "west", "east", "south", "north",
		},
		ReservedIDWords: []string{
			"INVOICE", "INVOICENO", "INVOICENUMBER", "BILLNO", "TOTAL",
			"SUBTOTAL", "NUMBER", "DETAILS",
		},
		VendorScanLines: 15,
		TailScanLines:   15,
	}
}
