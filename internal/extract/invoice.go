package extract

import (
	"regexp"
	"strings"

	"github.com/expensedesk/claims-engine/internal/entity"
)

var (
	// Identifier directly after an invoice keyword on the same line.
	reInvoiceKeyworded = regexp.MustCompile(`(?i)(?:invoice\s*number|invoice\s*no|invoice\s*id|invoice\s*#|inv\s*no|bill\s*no|bill\s*number|order\s*#|order\s*id|txn\s*id|patient\s*id)[\s#:\-/]*([A-Za-z0-9\-/]{2,}(?:\s[A-Za-z0-9\-/]+)*)`)
	// Bare alphanumeric code on its own line (continuation of a keyword line).
	reBareCode = regexp.MustCompile(`(?i)^[A-Z0-9]{10,}$`)
	// "Order No . 88" style near the document end.
	reOrderNoTail = regexp.MustCompile(`(?i)(?:order\s*no|order\s*#)[\s.]*(\d{1,4})\s*$`)
	// Generic letters-then-digits code anywhere in the text.
	reGenericCode = regexp.MustCompile(`\b[A-Z]{2,4}\d{6,12}\b`)
	// Marketplace order-ID fallback.
	reOrderID = regexp.MustCompile(`(?i)\bOD\d{10,}\b`)

	reLongDigits  = regexp.MustCompile(`^\d{10,}$`)
	reIDNoise     = regexp.MustCompile(`[^A-Za-z0-9/\-]`)
	reTrailingSep = regexp.MustCompile(`[\s.,;]+$`)
)

var idDigitFixes = strings.NewReplacer("O", "0", "I", "1", "L", "1")

// InvoiceNumber extracts the document's invoice identifier. Strategies run
// in priority order: keyword-anchored same-line match, keyword-line
// continuation, near-end order number, generic code scan, order-ID fallback.
func (e *Extractor) InvoiceNumber(doc entity.ExtractedText) Candidate[string] {
	return runChain([]strategy[string]{
		{"invoice.keyword", func() (string, bool) { return e.invoiceFromKeywordLine(doc) }},
		{"invoice.next_line", func() (string, bool) { return e.invoiceFromNextLine(doc) }},
		{"invoice.order_no_tail", func() (string, bool) { return e.invoiceFromOrderNoTail(doc) }},
		{"invoice.generic_code", func() (string, bool) { return e.invoiceFromGenericCode(doc) }},
		{"invoice.order_id", func() (string, bool) { return e.invoiceFromOrderID(doc) }},
	})
}

func (e *Extractor) invoiceFromKeywordLine(doc entity.ExtractedText) (string, bool) {
	for _, line := range doc.Lines {
		m := reInvoiceKeyworded.FindStringSubmatch(line.Text)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if low := strings.ToLower(candidate); strings.HasSuffix(low, "number") {
			candidate = strings.TrimSpace(candidate[:len(candidate)-len("number")])
		} else if strings.HasSuffix(low, "to") {
			candidate = strings.TrimSpace(candidate[:len(candidate)-len("to")])
		}
		fields := strings.Fields(candidate)
		if len(fields) == 0 {
			continue
		}
		// only the first token after the keyword is the identifier
		candidate = reTrailingSep.ReplaceAllString(fields[0], "")

		if len(candidate) <= 4 {
			continue
		}
		hasLetterOrSlash := strings.ContainsFunc(candidate, func(r rune) bool {
			return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '/'
		})
		if !hasLetterOrSlash && !reLongDigits.MatchString(candidate) {
			continue
		}
		if id := NormalizeID(candidate, e.cfg.ReservedIDWords); id != "" {
			return id, true
		}
	}
	return "", false
}

func (e *Extractor) invoiceFromNextLine(doc entity.ExtractedText) (string, bool) {
	for i, line := range doc.Lines {
		if !strings.Contains(strings.ToLower(line.Text), "invoice number") || i+1 >= len(doc.Lines) {
			continue
		}
		next := strings.TrimSpace(doc.Lines[i+1].Text)
		if reBareCode.MatchString(next) {
			if id := NormalizeID(next, e.cfg.ReservedIDWords); id != "" {
				return id, true
			}
		}
	}
	return "", false
}

func (e *Extractor) invoiceFromOrderNoTail(doc entity.ExtractedText) (string, bool) {
	start := len(doc.Lines) - 10
	if start < 0 {
		start = 0
	}
	for _, line := range doc.Lines[start:] {
		if m := reOrderNoTail.FindStringSubmatch(line.Text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func (e *Extractor) invoiceFromGenericCode(doc entity.ExtractedText) (string, bool) {
	if m := reGenericCode.FindString(doc.Join()); m != "" {
		if id := NormalizeID(m, e.cfg.ReservedIDWords); id != "" {
			return id, true
		}
	}
	return "", false
}

func (e *Extractor) invoiceFromOrderID(doc entity.ExtractedText) (string, bool) {
	if m := reOrderID.FindString(doc.Join()); m != "" {
		return strings.ToUpper(m), true
	}
	return "", false
}

// NormalizeID cleans and standardizes an invoice identifier: uppercases,
// strips non-alphanumeric noise except / and -, repairs OCR letter/digit
// confusions, and rejects reserved words captured as identifiers. Returns
// "" when the candidate is not a usable identifier.
func NormalizeID(raw string, reserved []string) string {
	cleaned := strings.ToUpper(reIDNoise.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return ""
	}
	cleaned = idDigitFixes.Replace(cleaned)
	for _, w := range reserved {
		if cleaned == w || cleaned == idDigitFixes.Replace(w) {
			return ""
		}
	}
	return cleaned
}
