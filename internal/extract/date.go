package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/expensedesk/claims-engine/internal/entity"
	"github.com/expensedesk/claims-engine/internal/normalize"
)

var (
	// Month-name date pinned next to an "invoice" line: "05-Mar-2025".
	reMonthNameDate = regexp.MustCompile(`\d{1,2}[-/.]?[A-Za-z]{3,9}[-/.]?\d{4}`)
	// Global fallback shapes: numeric, "March 5, 2025", "5 March 2025".
	reGlobalDate = regexp.MustCompile(`(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})|([A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4})|(\d{1,2}\s+[A-Za-z]{3,9}\s+\d{4})`)
)

// DocumentDate extracts the document's date. Keyword-anchored lines are
// tried first (combined with the following line to capture continuations),
// then date shapes near "invoice" lines, and only then a global scan of the
// whole text.
func (e *Extractor) DocumentDate(doc entity.ExtractedText) Candidate[time.Time] {
	return runChain([]strategy[time.Time]{
		{"date.keyword", func() (time.Time, bool) { return e.dateFromKeywordLines(doc) }},
		{"date.invoice_line", func() (time.Time, bool) { return e.dateNearInvoiceLines(doc) }},
		{"date.global", func() (time.Time, bool) { return e.dateFromGlobalScan(doc) }},
	})
}

func (e *Extractor) dateFromKeywordLines(doc entity.ExtractedText) (time.Time, bool) {
	ref := e.Clock()
	for i, line := range doc.Lines {
		low := strings.ToLower(line.Text)
		if !containsAny(low, e.cfg.DateKeywords) {
			continue
		}
		combined := strings.TrimSpace(line.Text)
		if i+1 < len(doc.Lines) {
			combined += " " + strings.TrimSpace(doc.Lines[i+1].Text)
		}
		if dt, ok := e.parseAnyDate(combined, ref); ok {
			return dt, true
		}
	}
	return time.Time{}, false
}

func (e *Extractor) dateNearInvoiceLines(doc entity.ExtractedText) (time.Time, bool) {
	ref := e.Clock()
	for i, line := range doc.Lines {
		if !strings.Contains(strings.ToLower(line.Text), "invoice") || i+1 >= len(doc.Lines) {
			continue
		}
		m := reMonthNameDate.FindString(line.Text)
		if m == "" {
			m = reMonthNameDate.FindString(doc.Lines[i+1].Text)
		}
		if m == "" {
			continue
		}
		if dt, ok := normalize.ParseDateAt(m, ref); ok {
			return dt, true
		}
	}
	return time.Time{}, false
}

func (e *Extractor) dateFromGlobalScan(doc entity.ExtractedText) (time.Time, bool) {
	ref := e.Clock()
	text := strings.Join(strings.Fields(doc.Join()), " ")
	for _, m := range reGlobalDate.FindAllStringSubmatch(text, -1) {
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			if dt, ok := normalize.ParseDateAt(group, ref); ok {
				return dt, true
			}
		}
	}
	return time.Time{}, false
}

// parseAnyDate tries the whole phrase first, then every date-shaped
// substring inside it.
func (e *Extractor) parseAnyDate(s string, ref time.Time) (time.Time, bool) {
	if dt, ok := normalize.ParseDateAt(s, ref); ok {
		return dt, true
	}
	for _, m := range reGlobalDate.FindAllStringSubmatch(s, -1) {
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			if dt, ok := normalize.ParseDateAt(group, ref); ok {
				return dt, true
			}
		}
	}
	return time.Time{}, false
}
