package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensedesk/claims-engine/internal/entity"
)

var testClock = func() time.Time {
	return time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e := NewExtractor(DefaultConfig(), nil)
	e.Clock = testClock
	return e
}

func doc(text string) entity.ExtractedText {
	return entity.NewExtractedText(text)
}

func TestInvoiceNumberKeywordLine(t *testing.T) {
	e := newTestExtractor(t)

	c := e.InvoiceNumber(doc("Sharma Electricals\nInvoice No: INV-2025/0042\nDate: 12/03/2025"))
	require.True(t, c.Found)
	assert.Equal(t, "1NV-2025/0042", c.Value)
	assert.Equal(t, "invoice.keyword", c.Strategy)
}

func TestInvoiceNumberRejectsShortAndReserved(t *testing.T) {
	e := newTestExtractor(t)

	// "Invoice No: 42" is too short to be an identifier
	c := e.InvoiceNumber(doc("Invoice No: 42\nTotal 450"))
	assert.NotEqual(t, "invoice.keyword", c.Strategy)

	// a keyword capturing another keyword is rejected
	c = e.InvoiceNumber(doc("Invoice Number Details\nnothing else"))
	assert.NotEqual(t, "invoice.keyword", c.Strategy)
}

func TestInvoiceNumberNextLine(t *testing.T) {
	e := newTestExtractor(t)

	c := e.InvoiceNumber(doc("Invoice Number\nAB12345678901\nTotal 450"))
	require.True(t, c.Found)
	assert.Equal(t, "AB12345678901", c.Value)
	assert.Equal(t, "invoice.next_line", c.Strategy)
}

func TestInvoiceNumberOrderNoTail(t *testing.T) {
	e := newTestExtractor(t)

	c := e.InvoiceNumber(doc("Welcome\nThanks for visiting\nOrder No. 88"))
	require.True(t, c.Found)
	assert.Equal(t, "88", c.Value)
	assert.Equal(t, "invoice.order_no_tail", c.Strategy)
}

func TestInvoiceNumberGenericCodeAndOrderID(t *testing.T) {
	e := newTestExtractor(t)

	c := e.InvoiceNumber(doc("some text with code ABCD12345678 inside"))
	require.True(t, c.Found)
	assert.Equal(t, "invoice.generic_code", c.Strategy)
	assert.Equal(t, "ABCD12345678", c.Value)

	c = e.InvoiceNumber(doc("your order od1234567890123 has shipped"))
	require.True(t, c.Found)
	assert.Equal(t, "invoice.order_id", c.Strategy)
	assert.Equal(t, "OD1234567890123", c.Value)
}

func TestInvoiceNumberNotFound(t *testing.T) {
	e := newTestExtractor(t)

	c := e.InvoiceNumber(doc("just a plain note\nwith no identifiers"))
	assert.False(t, c.Found)
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "1NV-0042", NormalizeID("inv-OO42", nil))
	assert.Equal(t, "AB/1234", NormalizeID(" ab/1234 ", nil))
	assert.Equal(t, "", NormalizeID("##", nil))
	assert.Equal(t, "", NormalizeID("Invoice", []string{"INVOICE"}))
}

func TestVendorScoredPrefersKeywordLine(t *testing.T) {
	e := newTestExtractor(t)

	c := e.Vendor(doc("GSTIN 27AAAAA0000A1Z5\nSharma Electricals Pvt Ltd\n12/03/2025\nTotal 450"))
	require.True(t, c.Found)
	assert.Equal(t, "vendor.scored", c.Strategy)
	assert.Equal(t, "Sharma Electricals Pvt Ltd", c.Value)
}

func TestVendorFallsBackToFirstUsableLine(t *testing.T) {
	e := newTestExtractor(t)

	// every scored line is penalized below the acceptance threshold once
	// the position bonus runs out, so the fallback fires
	text := "12\n45%\nqty 2\nA Plain Heading Line"
	c := e.Vendor(doc(text))
	require.True(t, c.Found)
	assert.Equal(t, "A Plain Heading Line", c.Value)
}

func TestVendorSkipsNoiseAndDateLines(t *testing.T) {
	e := newTestExtractor(t)

	c := e.Vendor(doc("qty\ngst\n12\n%"))
	assert.False(t, c.Found)
}

func TestTotalAmountKeywordPattern(t *testing.T) {
	e := newTestExtractor(t)

	c := e.TotalAmount(doc("Item A 120.00\nItem B 330.00\nGrand Total 472.50"))
	require.True(t, c.Found)
	assert.Equal(t, "total.keyword", c.Strategy)
	assert.True(t, c.Value.Equal(decimal.RequireFromString("472.50")))
}

func TestTotalAmountKeywordFloor(t *testing.T) {
	e := newTestExtractor(t)

	// 20 sits under the keyword floor; the line fallback is also floored,
	// so the proximity search decides
	c := e.TotalAmount(doc("Grand Total 20"))
	assert.NotEqual(t, "total.keyword", c.Strategy)
}

func TestTotalAmountLineFallback(t *testing.T) {
	e := newTestExtractor(t)

	// no anchored pattern matches; the line scan takes the largest
	// in-range token on a keyword line
	c := e.TotalAmount(doc("items 2\namount payable 120 and 890"))
	require.True(t, c.Found)
	assert.Equal(t, "total.line", c.Strategy)
	assert.True(t, c.Value.Equal(decimal.RequireFromString("890")))
}

func TestTotalAmountHardProximityWinsOverTax(t *testing.T) {
	e := newTestExtractor(t)

	// walking bottom-up, the first hard line (total keyword, no tax
	// qualifier) returns immediately even though a larger amount sits
	// above it on a CGST line
	c := e.TotalAmount(doc("Trip receipt\nCGST 9999\nFare charged\n472.50"))
	require.True(t, c.Found)
	assert.Equal(t, "total.proximity", c.Strategy)
	assert.True(t, c.Value.Equal(decimal.RequireFromString("472.50")))
}

func TestTotalAmountNotFound(t *testing.T) {
	e := newTestExtractor(t)

	c := e.TotalAmount(doc("no numbers here\nnothing at all"))
	assert.False(t, c.Found)
}

func TestDocumentDateKeywordLine(t *testing.T) {
	e := newTestExtractor(t)

	c := e.DocumentDate(doc("Sharma Electricals\nInvoice Date: 12/03/2025\nTotal 450"))
	require.True(t, c.Found)
	assert.Equal(t, "date.keyword", c.Strategy)
	assert.Equal(t, time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), c.Value)
}

func TestDocumentDateContinuationLine(t *testing.T) {
	e := newTestExtractor(t)

	// the keyword line itself has no date; the following line completes it
	c := e.DocumentDate(doc("Invoice Date:\n15-Aug-2025\nTotal 450"))
	require.True(t, c.Found)
	assert.Equal(t, time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC), c.Value)
}

func TestDocumentDateGlobalScan(t *testing.T) {
	e := newTestExtractor(t)

	c := e.DocumentDate(doc("issued for trip\non 05/02/2026 by cab"))
	require.True(t, c.Found)
	assert.Equal(t, "date.global", c.Strategy)
	assert.Equal(t, time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC), c.Value)
}

func TestDocumentDateNotFound(t *testing.T) {
	e := newTestExtractor(t)

	c := e.DocumentDate(doc("amount 450\ninvoice INV-1"))
	assert.False(t, c.Found)
}

func TestFieldsComposesAllExtractors(t *testing.T) {
	e := newTestExtractor(t)

	fields := e.Fields(doc("Sharma Electricals Pvt Ltd\nInvoice No: INV-2025/0042\nInvoice Date: 12/03/2025\nGrand Total 472.50"))
	assert.Equal(t, "1NV-2025/0042", fields.InvoiceNumber)
	assert.Equal(t, "Sharma Electricals Pvt Ltd", fields.Vendor)
	assert.Equal(t, time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), fields.DocumentDate)
	require.True(t, fields.TotalFound)
	assert.True(t, fields.Total.Equal(decimal.RequireFromString("472.50")))
}
