// Package validate holds the duplicate and tolerance checks applied to an
// evaluated document before it is allowed to become a new claim record.
package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expensedesk/claims-engine/constants"
	"github.com/expensedesk/claims-engine/internal/entity"
	"github.com/expensedesk/claims-engine/internal/normalize"
	"github.com/expensedesk/claims-engine/internal/repository"
)

// WithinTolerance reports whether two amounts differ by at most the shared
// tolerance. The bound is inclusive: a difference of exactly the tolerance
// still matches.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(constants.AmountTolerance)
}

// Validator answers duplicate and mismatch questions against the claim store.
type Validator struct {
	store repository.ClaimStore
}

func New(store repository.ClaimStore) *Validator {
	return &Validator{store: store}
}

// IsHardDuplicate reports whether a byte-identical attachment was already
// accepted, keyed by its content fingerprint.
func (v *Validator) IsHardDuplicate(ctx context.Context, fingerprint string) (bool, error) {
	ok, err := v.store.ExistsByFingerprint(ctx, fingerprint)
	if err != nil {
		return false, fmt.Errorf("hard duplicate check: %w", err)
	}
	return ok, nil
}

// IsSoftDuplicate reports whether a prior record for the same claimant shares
// the invoice number, document date, and an amount within tolerance. The
// invoice scan is restricted to the same claim type so a daily-expense row
// never shadows an individual-expense document.
func (v *Validator) IsSoftDuplicate(ctx context.Context, claimantCode, invoiceNumber, claimType string, documentDate time.Time, amount decimal.Decimal) (bool, error) {
	if invoiceNumber == "" {
		return false, nil
	}
	records, err := v.store.ScanByInvoice(ctx, invoiceNumber, claimType)
	if err != nil {
		return false, fmt.Errorf("soft duplicate check: %w", err)
	}
	for _, rec := range records {
		if rec.ClaimantCode != claimantCode {
			continue
		}
		if !normalize.SameDate(rec.DocumentDate, documentDate) {
			continue
		}
		if WithinTolerance(rec.TotalAmount, amount) {
			return true, nil
		}
	}
	return false, nil
}

// CompareKnown checks extracted fields against the values the claimant typed
// in. It returns the names of fields that disagree; an empty slice means the
// document backs the claim. Amounts use the shared tolerance, dates must match
// exactly, and absent known values are skipped.
func CompareKnown(known entity.KnownFields, fields entity.DocumentFields) []string {
	var mismatched []string
	if known.Date != nil && !fields.DocumentDate.IsZero() {
		if !normalize.SameDate(*known.Date, fields.DocumentDate) {
			mismatched = append(mismatched, "invoice_date")
		}
	}
	if known.Total != nil && fields.TotalFound {
		if !WithinTolerance(*known.Total, fields.Total) {
			mismatched = append(mismatched, "total_amount")
		}
	}
	return mismatched
}

// ExceedsDailyLimit reports whether an amount is strictly above the voucher's
// per-day ceiling. A nil limit means the voucher carries no ceiling.
func ExceedsDailyLimit(amount decimal.Decimal, limit *decimal.Decimal) bool {
	if limit == nil {
		return false
	}
	return amount.GreaterThan(*limit)
}
