package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/expensedesk/claims-engine/constants"
)

// KnownFields are caller-declared expected values supplied out-of-band
// (from the claim form). They are cross-checked against extracted values
// and never overwritten by extraction.
type KnownFields struct {
	Date          *time.Time
	Total         *decimal.Decimal
	InvoiceNumber string
}

// Attachment is one submitted document instance. Bytes are owned by the
// caller for the duration of one evaluation; the engine never retains them.
type Attachment struct {
	Bytes    []byte
	Filename string
	Known    KnownFields
}

// Voucher is one claim line item grouping attachments of a single sub-type.
type Voucher struct {
	SubType     constants.SubType
	BillAmount  decimal.Decimal
	DailyLimit  *decimal.Decimal
	Attachments []Attachment
}

// ClaimRequest is the transport-agnostic claim evaluation request.
type ClaimRequest struct {
	ClaimantCode  string
	ClaimType     string
	ExpectedTotal *decimal.Decimal
	Vouchers      []Voucher
}

// DocumentFields is the candidate field set extracted from one document.
// String fields use "" and the date uses the zero time as the not-found
// sentinel; TotalFound distinguishes a genuine zero from absence.
type DocumentFields struct {
	InvoiceNumber string
	DocumentDate  time.Time
	Vendor        string
	Total         decimal.Decimal
	TotalFound    bool
}

// ClaimResult is the terminal disposition for a claim evaluation, plus
// status-specific payload.
type ClaimResult struct {
	Status           constants.ClaimStatus `json:"status"`
	Reason           string                `json:"reason,omitempty"`
	InvoiceNumber    string                `json:"invoice_number,omitempty"`
	InvoiceDate      string                `json:"invoice_date,omitempty"`
	Vendor           string                `json:"vendor,omitempty"`
	TotalAmount      *decimal.Decimal      `json:"total_amount,omitempty"`
	RecordsSaved     int                   `json:"records_saved,omitempty"`
	MismatchedFields []string              `json:"mismatched_fields,omitempty"`
	DailyLimit       *decimal.Decimal      `json:"daily_limit,omitempty"`
	VoucherAmount    *decimal.Decimal      `json:"voucher_amount,omitempty"`
	SheetTotal       *decimal.Decimal      `json:"excel_total,omitempty"`
}
