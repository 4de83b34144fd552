package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClaimRecord is one persisted prior claim. Records are immutable once
// appended; the full collection is the durable prior-claims set consulted
// for duplicate detection. ExtractedText retains the recognized document
// text verbatim for audit.
type ClaimRecord struct {
	ID            uuid.UUID       `json:"id"`
	ClaimantCode  string          `json:"claimant_code"`
	InvoiceNumber string          `json:"invoice_number"`
	DocumentDate  time.Time       `json:"document_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ClaimType     string          `json:"claim_type"`
	Fingerprint   string          `json:"fingerprint"`
	Vendor        string          `json:"vendor,omitempty"`
	ExtractedText string          `json:"extracted_text,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
