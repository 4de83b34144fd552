package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/expensedesk/claims-engine/internal/common"
	"github.com/expensedesk/claims-engine/internal/entity"
)

// PostgresConfig mirrors the pool knobs exposed through the environment.
type PostgresConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// PostgresStore persists claim records in Postgres via a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates the pgx pool and verifies connectivity.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "claims-engine"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(dialCtx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	logger.Info("postgres claim store ready")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS claim_record (
	id             UUID PRIMARY KEY,
	claimant_code  TEXT NOT NULL,
	invoice_number TEXT NOT NULL,
	document_date  DATE NOT NULL,
	total_amount   NUMERIC(14,2) NOT NULL,
	claim_type     TEXT NOT NULL,
	fingerprint    TEXT NOT NULL,
	vendor         TEXT NOT NULL DEFAULT '',
	extracted_text TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_claim_record_fingerprint ON claim_record (fingerprint);
CREATE INDEX IF NOT EXISTS idx_claim_record_invoice ON claim_record (invoice_number, claim_type);
`

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM claim_record WHERE fingerprint = $1 LIMIT 1`, fingerprint).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fingerprint lookup: %w", common.ErrStoreUnavailable)
	}
	return true, nil
}

func (s *PostgresStore) ScanByInvoice(ctx context.Context, invoiceNumber, claimType string) ([]entity.ClaimRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, claimant_code, invoice_number, document_date, total_amount,
		        claim_type, fingerprint, vendor, extracted_text, created_at
		   FROM claim_record
		  WHERE invoice_number = $1 AND claim_type = $2`,
		invoiceNumber, claimType)
	if err != nil {
		return nil, fmt.Errorf("invoice scan: %w", common.ErrStoreUnavailable)
	}
	defer rows.Close()

	var out []entity.ClaimRecord
	for rows.Next() {
		var rec entity.ClaimRecord
		var id, total string
		var docDate, createdAt time.Time
		if err := rows.Scan(&id, &rec.ClaimantCode, &rec.InvoiceNumber, &docDate,
			&total, &rec.ClaimType, &rec.Fingerprint, &rec.Vendor,
			&rec.ExtractedText, &createdAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", common.ErrStoreUnavailable)
		}
		rec.ID, _ = uuid.Parse(id)
		rec.DocumentDate = docDate
		rec.CreatedAt = createdAt
		if v, err := decimal.NewFromString(total); err == nil {
			rec.TotalAmount = v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoice scan rows: %w", common.ErrStoreUnavailable)
	}
	return out, nil
}

func (s *PostgresStore) Append(ctx context.Context, records []entity.ClaimRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", common.ErrStoreUnavailable)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, r := range records {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO claim_record
			   (id, claimant_code, invoice_number, document_date, total_amount,
			    claim_type, fingerprint, vendor, extracted_text, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			r.ID.String(), r.ClaimantCode, r.InvoiceNumber, r.DocumentDate,
			r.TotalAmount.String(), r.ClaimType, r.Fingerprint, r.Vendor,
			r.ExtractedText, r.CreatedAt)
		if err != nil {
			return fmt.Errorf("append record: %w", common.ErrStoreUnavailable)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", common.ErrStoreUnavailable)
	}
	s.logger.Debug("records appended", "count", len(records))
	return nil
}
