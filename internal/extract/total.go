package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/expensedesk/claims-engine/internal/entity"
	"github.com/expensedesk/claims-engine/internal/normalize"
)

// Keyword-anchored total patterns. The amount is always the last capture
// group. Matched values below the keyword floor are ignored, which filters
// out serial numbers and quantities caught near total keywords.
var totalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bGrand\s*Total\s*[₹Rs INR.]*([0-9]+\.[0-9]+|[0-9]+)`),
	regexp.MustCompile(`(?i)\bTotal\s*Due\s*[₹Rs INR.]*([0-9]+\.[0-9]+|[0-9]+)`),
	regexp.MustCompile(`(?i)\bDue\s*(?:Amount)?\s*[₹Rs INR.]*([0-9]+\.[0-9]+|[0-9]+)`),
	regexp.MustCompile(`(?i)\bTotal\s*(?:Amount|Payable|Bill)\s*[₹Rs INR.]*([0-9]+\.[0-9]+|[0-9]+)`),
	regexp.MustCompile(`(?i)\b(?:Invoice|Net)\s*(?:Total|Amount)\s*[₹Rs INR.]*([0-9]+\.[0-9]+|[0-9]+)`),
	regexp.MustCompile(`(?i)\b(?:Payment|Paid|VISA|Card|Cash|UPI)\s*[A-Za-z]*\s*[₹Rs INR.]*([0-9]+\.[0-9]+|[0-9]+)`),
	regexp.MustCompile(`(?i)\bTotal[\s:A-Za-z]*[₹RsINR]*\.?([0-9]+\.[0-9]+|[0-9]+)`),
}

var (
	keywordTotalFloor = decimal.NewFromInt(50)
	lineTotalCeiling  = decimal.NewFromInt(50000)
	reNumericToken    = regexp.MustCompile(`[0-9]+\.[0-9]+|[0-9]+`)
)

var lineTotalKeywords = []string{"total", "due", "payable", "amount"}

// TotalAmount extracts the document's total. Strategies in priority order:
// keyword-anchored patterns, keyword-line largest token, reverse proximity
// search over the document tail, and the largest plausible amount in the
// bottom third.
func (e *Extractor) TotalAmount(doc entity.ExtractedText) Candidate[decimal.Decimal] {
	return runChain([]strategy[decimal.Decimal]{
		{"total.keyword", func() (decimal.Decimal, bool) { return e.totalFromKeywordPatterns(doc) }},
		{"total.line", func() (decimal.Decimal, bool) { return e.totalFromKeywordLines(doc) }},
		{"total.proximity", func() (decimal.Decimal, bool) { return e.totalFromTailProximity(doc) }},
		{"total.bottom_third", func() (decimal.Decimal, bool) { return e.totalFromBottomThird(doc) }},
	})
}

func (e *Extractor) totalFromKeywordPatterns(doc entity.ExtractedText) (decimal.Decimal, bool) {
	text := strings.ReplaceAll(doc.Join(), ",", "")
	for _, pat := range totalPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, ok := normalize.ParseAmount(m[len(m)-1])
		if ok && v.GreaterThan(keywordTotalFloor) {
			return v, true
		}
	}
	return decimal.Decimal{}, false
}

func (e *Extractor) totalFromKeywordLines(doc entity.ExtractedText) (decimal.Decimal, bool) {
	best := decimal.Decimal{}
	found := false
	for _, line := range doc.Lines {
		text := strings.ReplaceAll(line.Text, ",", "")
		if strings.TrimSpace(text) == "" || e.isAddressLine(text) {
			continue
		}
		if !containsAny(strings.ToLower(text), lineTotalKeywords) {
			continue
		}
		for _, tok := range reNumericToken.FindAllString(text, -1) {
			v, ok := normalize.ParseAmount(tok)
			if !ok || !v.GreaterThan(keywordTotalFloor) || !v.LessThan(lineTotalCeiling) {
				continue
			}
			if !found || v.GreaterThan(best) {
				best = v
				found = true
			}
		}
	}
	return best, found
}

// totalFromTailProximity walks the last TailScanLines lines in reverse,
// looking at each line plus the two after it. A "hard" line contains a
// total keyword and none of the tax/discount/fee qualifiers and returns
// immediately; otherwise the largest plausible amount seen wins.
func (e *Extractor) totalFromTailProximity(doc entity.ExtractedText) (decimal.Decimal, bool) {
	start := len(doc.Lines) - e.cfg.TailScanLines
	if start < 0 {
		start = 0
	}

	best := decimal.Decimal{}
	found := false
	for i := len(doc.Lines) - 1; i >= start; i-- {
		low := strings.ToLower(doc.Lines[i].Text)
		hard := containsAny(low, e.cfg.TotalKeywords) && !containsAny(low, e.cfg.TotalExclusions)

		end := i + 3
		if end > len(doc.Lines) {
			end = len(doc.Lines)
		}
		parts := make([]string, 0, 3)
		for _, l := range doc.Lines[i:end] {
			parts = append(parts, l.Text)
		}

		amounts := normalize.FindPlausibleAmounts(strings.Join(parts, " "))
		if len(amounts) == 0 {
			continue
		}
		localMax := amounts[0]
		for _, a := range amounts[1:] {
			if a.GreaterThan(localMax) {
				localMax = a
			}
		}
		if hard {
			return localMax, true
		}
		if !found || localMax.GreaterThan(best) {
			best = localMax
			found = true
		}
	}
	return best, found
}

func (e *Extractor) totalFromBottomThird(doc entity.ExtractedText) (decimal.Decimal, bool) {
	text := doc.Join()
	bottom := text[len(text)*2/3:]

	best := decimal.Decimal{}
	found := false
	for _, a := range normalize.FindPlausibleAmounts(bottom) {
		if !found || a.GreaterThan(best) {
			best = a
			found = true
		}
	}
	return best, found
}
