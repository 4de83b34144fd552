package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffFormat(t *testing.T) {
	assert.Equal(t, PDF, SniffFormat([]byte("%PDF-1.7 ...")))
	assert.Equal(t, SHEET, SniffFormat([]byte("PK\x03\x04...")))
	assert.Equal(t, TEXT, SniffFormat([]byte("Invoice No: INV-1\nTotal 450")))
	assert.Equal(t, IMAGE, SniffFormat([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
}

func TestIsDocumentFormat(t *testing.T) {
	assert.True(t, PDF.IsDocumentFormat())
	assert.True(t, IMAGE.IsDocumentFormat())
	assert.True(t, TEXT.IsDocumentFormat())
	assert.False(t, SHEET.IsDocumentFormat())
}

func TestMapExtToFormat(t *testing.T) {
	assert.Equal(t, PDF, MapExtToFormat(".PDF"))
	assert.Equal(t, SHEET, MapExtToFormat("xlsx"))
	assert.Equal(t, AttachmentFormat(""), MapExtToFormat("exe"))
}

func TestCanonicalSubType(t *testing.T) {
	for _, in := range []string{"Daily_Expense", "daily expense", "DAILY-EXPENSES", "daily"} {
		st, ok := CanonicalSubType(in)
		assert.True(t, ok, in)
		assert.Equal(t, DailyExpense, st)
	}
	st, ok := CanonicalSubType("Individual Expense")
	assert.True(t, ok)
	assert.Equal(t, IndividualExpense, st)

	_, ok = CanonicalSubType("mystery")
	assert.False(t, ok)
}
