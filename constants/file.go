package constants

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// AttachmentFormat classifies decoded attachment bytes.
type AttachmentFormat string

const (
	PDF   AttachmentFormat = "PDF"
	IMAGE AttachmentFormat = "IMAGE"
	SHEET AttachmentFormat = "SHEET"
	TEXT  AttachmentFormat = "TEXT"
)

// AllowedExtensions holds the default allowed file extensions for claim attachments.
var AllowedExtensions = map[string]AttachmentFormat{
	"pdf":  PDF,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"png":  IMAGE,
	"xls":  SHEET,
	"xlsx": SHEET,
	"txt":  TEXT,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat resolves a file extension to its attachment format,
// returning "" for unsupported extensions.
func MapExtToFormat(ext string) AttachmentFormat {
	if f, ok := AllowedExtensions[NormalizeExt(ext)]; ok {
		return f
	}
	return ""
}

// SniffFormat classifies raw bytes by magic prefix. XLSX workbooks are ZIP
// containers, so "PK" maps to SHEET. Printable payloads classify as TEXT;
// anything else is treated as an image.
func SniffFormat(data []byte) AttachmentFormat {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")):
		return PDF
	case bytes.HasPrefix(data, []byte("PK")):
		return SHEET
	case utf8.Valid(data) && !bytes.ContainsRune(data, 0):
		return TEXT
	default:
		return IMAGE
	}
}

// IsDocumentFormat reports whether the format is a single-document type
// (invoice or receipt) as opposed to a tabular sheet.
func (f AttachmentFormat) IsDocumentFormat() bool {
	return f == PDF || f == IMAGE || f == TEXT
}
