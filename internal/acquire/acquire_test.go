package acquire

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensedesk/claims-engine/constants"
	"github.com/expensedesk/claims-engine/internal/common"
)

func TestDecodeAttachment(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("Invoice No: INV-1\nTotal 450"))

	data, format, err := DecodeAttachment(payload)
	require.NoError(t, err)
	assert.Equal(t, constants.TEXT, format)
	assert.Contains(t, string(data), "INV-1")
}

func TestDecodeAttachmentDataURLPrefix(t *testing.T) {
	raw := []byte("%PDF-1.4 fake")
	payload := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(raw)

	data, format, err := DecodeAttachment(payload)
	require.NoError(t, err)
	assert.Equal(t, constants.PDF, format)
	assert.Equal(t, raw, data)
}

func TestFormatForFilename(t *testing.T) {
	format, err := FormatForFilename("scans/receipt.PDF")
	require.NoError(t, err)
	assert.Equal(t, constants.PDF, format)

	format, err = FormatForFilename("expenses.xlsx")
	require.NoError(t, err)
	assert.Equal(t, constants.SHEET, format)

	_, err = FormatForFilename("report.exe")
	assert.ErrorIs(t, err, common.ErrUnsupportedFileType)
}

func TestDecodeAttachmentRejectsBadPayloads(t *testing.T) {
	_, _, err := DecodeAttachment("!!! not base64 !!!")
	assert.ErrorIs(t, err, common.ErrInvalidDocument)

	_, _, err = DecodeAttachment("")
	assert.ErrorIs(t, err, common.ErrInvalidDocument)
}

func TestPlainTextExtractor(t *testing.T) {
	doc, err := PlainText{}.ExtractText(context.Background(), []byte("line one\nline two"), constants.TEXT)
	require.NoError(t, err)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "line one", doc.Lines[0].Text)
}

func TestPlainTextExtractorRejectsOtherFormats(t *testing.T) {
	_, err := PlainText{}.ExtractText(context.Background(), []byte{0xFF, 0xD8}, constants.IMAGE)
	assert.ErrorIs(t, err, common.ErrInvalidDocument)

	_, err = PlainText{}.ExtractText(context.Background(), []byte("   \n  "), constants.TEXT)
	assert.ErrorIs(t, err, common.ErrInvalidDocument)
}
