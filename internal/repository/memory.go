package repository

import (
	"context"
	"sync"

	"github.com/expensedesk/claims-engine/internal/entity"
)

// MemoryStore is an in-process ClaimStore for tests and the CLI's
// throwaway mode.
type MemoryStore struct {
	mu           sync.RWMutex
	records      []entity.ClaimRecord
	fingerprints map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{fingerprints: make(map[string]struct{})}
}

func (s *MemoryStore) ExistsByFingerprint(_ context.Context, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fingerprints[fingerprint]
	return ok, nil
}

func (s *MemoryStore) ScanByInvoice(_ context.Context, invoiceNumber, claimType string) ([]entity.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.ClaimRecord
	for _, r := range s.records {
		if r.InvoiceNumber == invoiceNumber && r.ClaimType == claimType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, records []entity.ClaimRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records = append(s.records, r)
		if r.Fingerprint != "" {
			s.fingerprints[r.Fingerprint] = struct{}{}
		}
	}
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
