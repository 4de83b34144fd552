package acquire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/expensedesk/claims-engine/internal/common"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for ri, row := range rows {
		for ci, v := range row {
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func TestReadSheetRows(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Invoice No", "Bill Date", "Amount (INR)", "Employee Code"},
		{"INV-001", "12/03/2025", "450.00", "E-001"},
		{"INV-002", "13/03/2025", "890", "E-001"},
	})

	rows, err := ReadSheetRows(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, "INV-001", rows[0].InvoiceNo)
	assert.Equal(t, "12/03/2025", rows[0].Date)
	assert.Equal(t, "450.00", rows[0].Amount)
	assert.Equal(t, "E-001", rows[0].Employee)

	assert.Equal(t, 2, rows[1].Index)
	assert.Equal(t, "890", rows[1].Amount)
}

func TestReadSheetRowsHeaderDetectionIsCaseInsensitive(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"INVOICE NUMBER", "TXN DATE", "TOTAL AMOUNT"},
		{"INV-009", "01/04/2025", "120"},
	})

	rows, err := ReadSheetRows(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-009", rows[0].InvoiceNo)
	assert.Equal(t, "", rows[0].Employee)
}

func TestReadSheetRowsSkipsBlankTrailingRows(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Invoice", "Date", "Amount"},
		{"INV-001", "12/03/2025", "450"},
		{"", "", ""},
	})

	rows, err := ReadSheetRows(data)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReadSheetRowsMissingColumns(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Description", "Qty", "Price"},
		{"pens", 2, 40},
	})

	_, err := ReadSheetRows(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingRequiredColumns)
}

func TestReadSheetRowsRejectsGarbage(t *testing.T) {
	_, err := ReadSheetRows([]byte("not a workbook"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidDocument)
}
