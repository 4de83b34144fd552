package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/expensedesk/claims-engine/internal/common"
	"github.com/expensedesk/claims-engine/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS claim_record (
	id             TEXT PRIMARY KEY,
	claimant_code  TEXT NOT NULL,
	invoice_number TEXT NOT NULL,
	document_date  TEXT NOT NULL,
	total_amount   TEXT NOT NULL,
	claim_type     TEXT NOT NULL,
	fingerprint    TEXT NOT NULL,
	vendor         TEXT NOT NULL DEFAULT '',
	extracted_text TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_claim_record_fingerprint ON claim_record(fingerprint);
CREATE INDEX IF NOT EXISTS idx_claim_record_invoice ON claim_record(invoice_number, claim_type);
`

// SQLiteStore persists claim records in an embedded SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (and if needed initializes) a SQLite claim store.
// dsn accepts anything the driver does, including ":memory:".
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	logger.Info("sqlite claim store ready", "dsn", dsn)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM claim_record WHERE fingerprint = ? LIMIT 1`, fingerprint).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fingerprint lookup: %w", common.ErrStoreUnavailable)
	}
	return true, nil
}

func (s *SQLiteStore) ScanByInvoice(ctx context.Context, invoiceNumber, claimType string) ([]entity.ClaimRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, claimant_code, invoice_number, document_date, total_amount,
		        claim_type, fingerprint, vendor, extracted_text, created_at
		   FROM claim_record
		  WHERE invoice_number = ? AND claim_type = ?`,
		invoiceNumber, claimType)
	if err != nil {
		return nil, fmt.Errorf("invoice scan: %w", common.ErrStoreUnavailable)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.ClaimRecord
	for rows.Next() {
		rec, err := scanClaimRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoice scan rows: %w", common.ErrStoreUnavailable)
	}
	return out, nil
}

func (s *SQLiteStore) Append(ctx context.Context, records []entity.ClaimRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", common.ErrStoreUnavailable)
	}
	for _, r := range records {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO claim_record
			   (id, claimant_code, invoice_number, document_date, total_amount,
			    claim_type, fingerprint, vendor, extracted_text, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID.String(), r.ClaimantCode, r.InvoiceNumber,
			r.DocumentDate.Format("2006-01-02"), r.TotalAmount.String(),
			r.ClaimType, r.Fingerprint, r.Vendor, r.ExtractedText,
			r.CreatedAt.Format(time.RFC3339))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append record: %w", common.ErrStoreUnavailable)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", common.ErrStoreUnavailable)
	}
	s.logger.Debug("records appended", "count", len(records))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaimRecord(rows rowScanner) (entity.ClaimRecord, error) {
	var rec entity.ClaimRecord
	var id, docDate, total, createdAt string
	if err := rows.Scan(&id, &rec.ClaimantCode, &rec.InvoiceNumber, &docDate,
		&total, &rec.ClaimType, &rec.Fingerprint, &rec.Vendor,
		&rec.ExtractedText, &createdAt); err != nil {
		return rec, fmt.Errorf("scan record: %w", common.ErrStoreUnavailable)
	}
	rec.ID, _ = uuid.Parse(id)
	if t, err := time.Parse("2006-01-02", docDate); err == nil {
		rec.DocumentDate = t
	}
	if v, err := decimal.NewFromString(total); err == nil {
		rec.TotalAmount = v
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}
