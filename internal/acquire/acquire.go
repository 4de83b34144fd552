// Package acquire is the boundary to the text acquisition collaborator:
// attachment decoding and format sniffing, the recognized-text contract,
// and tabular sheet reading. Recognition itself (OCR, PDF text layers)
// lives behind the TextExtractor interface.
package acquire

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/expensedesk/claims-engine/constants"
	"github.com/expensedesk/claims-engine/internal/common"
	"github.com/expensedesk/claims-engine/internal/entity"
	"github.com/expensedesk/claims-engine/internal/extract"
)

// TextExtractor produces recognized text for a single-document attachment.
// Implementations must return common.ErrInvalidDocument (wrapped) when no
// text can be produced at all.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, format constants.AttachmentFormat) (entity.ExtractedText, error)
}

// PlainText is the TextExtractor for attachments that already carry their
// text (TXT uploads and pre-recognized payloads).
type PlainText struct{}

func (PlainText) ExtractText(_ context.Context, data []byte, format constants.AttachmentFormat) (entity.ExtractedText, error) {
	if format != constants.TEXT {
		return entity.ExtractedText{}, fmt.Errorf("plaintext extractor cannot handle %s: %w", format, common.ErrInvalidDocument)
	}
	doc := entity.NewExtractedText(extract.CleanText(string(data)))
	if doc.IsEmpty() {
		return entity.ExtractedText{}, fmt.Errorf("no text in attachment: %w", common.ErrInvalidDocument)
	}
	return doc, nil
}

// FormatForFilename resolves an attachment format from a file name's
// extension, for callers that receive files rather than raw payloads.
func FormatForFilename(name string) (constants.AttachmentFormat, error) {
	format := constants.MapExtToFormat(filepath.Ext(name))
	if format == "" {
		return "", fmt.Errorf("%s: %w", name, common.ErrUnsupportedFileType)
	}
	return format, nil
}

// DecodeAttachment decodes a base64 payload (tolerating a data-URL prefix)
// and sniffs the attachment format from the decoded bytes.
func DecodeAttachment(payload string) ([]byte, constants.AttachmentFormat, error) {
	if idx := strings.Index(payload, "base64,"); idx != -1 {
		payload = payload[idx+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, "", fmt.Errorf("decode attachment: %w", common.ErrInvalidDocument)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty attachment: %w", common.ErrInvalidDocument)
	}
	return data, constants.SniffFormat(data), nil
}
