package extract

import (
	"strings"

	"github.com/expensedesk/claims-engine/internal/entity"
)

// vendorAcceptScore is the minimum score for the weighted pick; below it the
// extractor falls back to the first non-noise line.
const vendorAcceptScore = 50.0

// Vendor extracts the vendor name with a top-of-document bias: only the
// first VendorScanLines lines are scored. Confidence, position, digit
// density, vendor-category keywords and invoice/date shapes all weigh in;
// a weak best score falls back to the first usable line.
func (e *Extractor) Vendor(doc entity.ExtractedText) Candidate[string] {
	return runChain([]strategy[string]{
		{"vendor.scored", func() (string, bool) { return e.vendorScored(doc) }},
		{"vendor.first_line", func() (string, bool) { return e.vendorFirstUsableLine(doc) }},
	})
}

func (e *Extractor) vendorScored(doc entity.ExtractedText) (string, bool) {
	topN := e.cfg.VendorScanLines
	if topN > len(doc.Lines) {
		topN = len(doc.Lines)
	}

	bestScore := 0.0
	bestText := ""
	for i, line := range doc.Lines[:topN] {
		text := strings.TrimSpace(line.Text)
		if e.isNoise(text) {
			continue
		}
		low := strings.ToLower(text)

		score := float64(line.Confidence) * 10
		score += float64(e.cfg.VendorScanLines-i) * 5
		if digitDensity(text) > 0.5 {
			score -= 40
		}
		if containsAny(low, e.cfg.VendorKeywords) {
			score += 50
		}
		if containsAny(low, e.cfg.InvoiceKeywords) || reDateShape.MatchString(low) {
			score -= 60
		}

		if bestText == "" || score > bestScore {
			bestScore = score
			bestText = text
		}
	}

	if bestText == "" || bestScore < vendorAcceptScore {
		return "", false
	}
	return bestText, true
}

func (e *Extractor) vendorFirstUsableLine(doc entity.ExtractedText) (string, bool) {
	limit := 5
	if limit > len(doc.Lines) {
		limit = len(doc.Lines)
	}
	for _, line := range doc.Lines[:limit] {
		text := strings.TrimSpace(line.Text)
		if !e.isNoise(text) && len(text) > 5 {
			return text, true
		}
	}
	return "", false
}
