package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/expensedesk/claims-engine/internal/common"
	"github.com/expensedesk/claims-engine/internal/entity"
)

const (
	workbookSheet   = "Claims"
	workbookDateFmt = "2006-01-02"
)

var workbookHeader = []string{
	"ID", "Claimant Code", "Invoice Number", "Document Date", "Total Amount",
	"Claim Type", "Fingerprint", "Vendor", "Extracted Text", "Created At",
}

// WorkbookStore keeps claim records in a single xlsx file. It exists for
// small deployments that want the ledger openable in a spreadsheet; all
// access goes through one mutex so concurrent evaluations stay safe.
type WorkbookStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// OpenWorkbook prepares the xlsx file, creating it with a header row when absent.
func OpenWorkbook(path string, logger *slog.Logger) (*WorkbookStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f := excelize.NewFile()
		idx, err := f.NewSheet(workbookSheet)
		if err != nil {
			return nil, fmt.Errorf("create sheet: %w", err)
		}
		f.SetActiveSheet(idx)
		_ = f.DeleteSheet("Sheet1")
		for i, h := range workbookHeader {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(workbookSheet, cell, h)
		}
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("init workbook: %w", err)
		}
	}
	logger.Info("workbook claim store ready", "path", path)
	return &WorkbookStore{path: path, logger: logger}, nil
}

func (s *WorkbookStore) ExistsByFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.readRows()
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if len(row) > 6 && row[6] == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

func (s *WorkbookStore) ScanByInvoice(ctx context.Context, invoiceNumber, claimType string) ([]entity.ClaimRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	var out []entity.ClaimRecord
	for _, row := range rows {
		rec, ok := recordFromRow(row)
		if !ok {
			continue
		}
		if rec.InvoiceNumber == invoiceNumber && rec.ClaimType == claimType {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *WorkbookStore) Append(ctx context.Context, records []entity.ClaimRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", common.ErrStoreUnavailable)
	}
	defer f.Close()

	existing, err := f.GetRows(workbookSheet)
	if err != nil {
		return fmt.Errorf("read workbook: %w", common.ErrStoreUnavailable)
	}
	next := len(existing) + 1
	for _, r := range records {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().UTC()
		}
		values := []interface{}{
			r.ID.String(), r.ClaimantCode, r.InvoiceNumber,
			r.DocumentDate.Format(workbookDateFmt), r.TotalAmount.String(),
			r.ClaimType, r.Fingerprint, r.Vendor, r.ExtractedText,
			r.CreatedAt.Format(time.RFC3339),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, next)
			if err := f.SetCellValue(workbookSheet, cell, v); err != nil {
				return fmt.Errorf("write row: %w", common.ErrStoreUnavailable)
			}
		}
		next++
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", common.ErrStoreUnavailable)
	}
	s.logger.Debug("records appended", "count", len(records))
	return nil
}

// readRows returns all data rows, header excluded. Caller holds the mutex.
func (s *WorkbookStore) readRows() ([][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", common.ErrStoreUnavailable)
	}
	defer f.Close()
	rows, err := f.GetRows(workbookSheet)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", common.ErrStoreUnavailable)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func recordFromRow(row []string) (entity.ClaimRecord, bool) {
	if len(row) < 10 {
		return entity.ClaimRecord{}, false
	}
	var rec entity.ClaimRecord
	rec.ID, _ = uuid.Parse(row[0])
	rec.ClaimantCode = row[1]
	rec.InvoiceNumber = row[2]
	if t, err := time.Parse(workbookDateFmt, row[3]); err == nil {
		rec.DocumentDate = t
	}
	if v, err := decimal.NewFromString(row[4]); err == nil {
		rec.TotalAmount = v
	}
	rec.ClaimType = row[5]
	rec.Fingerprint = row[6]
	rec.Vendor = row[7]
	rec.ExtractedText = row[8]
	if t, err := time.Parse(time.RFC3339, row[9]); err == nil {
		rec.CreatedAt = t
	}
	return rec, true
}
