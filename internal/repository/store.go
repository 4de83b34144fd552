// Package repository holds the claim store adapter contract and its
// implementations. The engine only needs existence checks, invoice scans
// and batch appends; connection lifecycle stays inside each adapter.
package repository

import (
	"context"

	"github.com/expensedesk/claims-engine/internal/entity"
)

// ClaimStore is the durable prior-claims collection. Records are append
// only: implementations must never update rows in place. Duplicate safety
// under concurrent submission relies on the backing store's atomicity for
// ExistsByFingerprint and Append.
type ClaimStore interface {
	// ExistsByFingerprint reports whether any prior record carries the
	// exact content fingerprint.
	ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error)

	// ScanByInvoice returns prior records with the given invoice number
	// and claim type.
	ScanByInvoice(ctx context.Context, invoiceNumber, claimType string) ([]entity.ClaimRecord, error)

	// Append persists the batch; either all records land or none do.
	Append(ctx context.Context, records []entity.ClaimRecord) error
}
