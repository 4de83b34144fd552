package acquire

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/expensedesk/claims-engine/internal/common"
)

// SheetRow is one data row of a tabular daily-expense sheet, with values
// still in their raw written form.
type SheetRow struct {
	Index     int // 1-based data row number (header excluded)
	InvoiceNo string
	Date      string
	Amount    string
	Employee  string
}

// ReadSheetRows opens an XLSX workbook and returns the data rows of its
// first sheet. Columns are auto-detected from the header row by
// case-insensitive substring match: "invoice", "date", "amount", and
// "employee". The first three are required.
func ReadSheetRows(data []byte) ([]SheetRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", common.ErrInvalidDocument)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets: %w", common.ErrInvalidDocument)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", common.ErrInvalidDocument)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty sheet: %w", common.ErrMissingRequiredColumns)
	}

	invoiceCol, dateCol, amountCol, employeeCol := -1, -1, -1, -1
	for i, h := range rows[0] {
		low := strings.ToLower(strings.TrimSpace(h))
		switch {
		case invoiceCol == -1 && strings.Contains(low, "invoice"):
			invoiceCol = i
		case dateCol == -1 && strings.Contains(low, "date"):
			dateCol = i
		case amountCol == -1 && strings.Contains(low, "amount"):
			amountCol = i
		case employeeCol == -1 && strings.Contains(low, "employee"):
			employeeCol = i
		}
	}
	if invoiceCol == -1 || dateCol == -1 || amountCol == -1 {
		return nil, fmt.Errorf("sheet header %v lacks invoice/date/amount columns: %w",
			rows[0], common.ErrMissingRequiredColumns)
	}

	cell := func(row []string, col int) string {
		if col < 0 || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	out := make([]SheetRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		r := SheetRow{
			Index:     i + 1,
			InvoiceNo: cell(row, invoiceCol),
			Date:      cell(row, dateCol),
			Amount:    cell(row, amountCol),
			Employee:  cell(row, employeeCol),
		}
		if r.InvoiceNo == "" && r.Date == "" && r.Amount == "" {
			continue // trailing blank rows
		}
		out = append(out, r)
	}
	return out, nil
}
