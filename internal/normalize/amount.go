// Package normalize converts raw recognized tokens into canonical typed
// values. Both normalizers are total: they report "not found" instead of
// returning errors, so noisy OCR input can never abort an extraction.
package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/expensedesk/claims-engine/constants"
)

var (
	// Thousands grouping with a decimal tail: "1,234.56" / "12,345.6789".
	reCommaGrouped = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*\.\d{1,4}$`)
	// European grouping: "1.234,56" treats '.' as thousands and ',' as decimal.
	reDotGrouped = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})*,\d{1,4}$`)

	reNonNumeric = regexp.MustCompile(`[^0-9.\-]`)

	// Numeric tokens with optional grouping/decimal separators, as they
	// appear inside free text. A leading currency marker is tolerated.
	reAmountToken = regexp.MustCompile(`[0-9]{1,3}(?:[.,][0-9]{2,3})*(?:[.,][0-9]{1,4})|[0-9]+(?:[.,][0-9]{1,4})?`)
)

var currencyStripper = strings.NewReplacer(
	"₹", "", "$", "", "€", "", "£", "",
	"Rs.", "", "rs.", "", "RS.", "", "Rs", "", "INR", "",
)

// ocrDigitFixes repairs letter/digit confusions in numeric context. Applied
// only after separator disambiguation so alphanumeric identifiers elsewhere
// are never touched.
var ocrDigitFixes = strings.NewReplacer(
	"O", "0", "o", "0",
	"I", "1", "l", "1",
)

// ParseAmount converts a raw numeric token (currency symbols, thousands
// separators, OCR digit confusions) into a canonical decimal value. The
// second return is false when no numeric value can be recovered.
func ParseAmount(token string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(currencyStripper.Replace(token))
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}

	switch {
	case reCommaGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case reDotGrouped.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Count(s, ",") == 1 && strings.Count(s, ".") == 0:
		// A lone comma with at most two trailing digits is a decimal point.
		if tail := s[strings.IndexByte(s, ',')+1:]; len(tail) <= 2 {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}

	s = ocrDigitFixes.Replace(s)
	s = reNonNumeric.ReplaceAllString(s, "")
	s = collapseDecimalPoints(s)
	s = strings.Trim(s, ".")
	if s == "" || s == "-" {
		return decimal.Decimal{}, false
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

// collapseDecimalPoints keeps the first decimal point and concatenates the
// remaining digit groups: "1.234.56" -> "1.23456".
func collapseDecimalPoints(s string) string {
	first := strings.IndexByte(s, '.')
	if first == -1 || strings.Count(s, ".") == 1 {
		return s
	}
	rest := strings.ReplaceAll(s[first+1:], ".", "")
	return s[:first+1] + rest
}

// PlausibleAmount reports whether v lies in the monetary plausibility window
// and does not look like a printed 4-digit year.
func PlausibleAmount(v decimal.Decimal) bool {
	if v.LessThan(constants.MinPlausibleAmount) || v.GreaterThan(constants.MaxPlausibleAmount) {
		return false
	}
	yearMin := decimal.NewFromInt(constants.YearLikeMin)
	yearMax := decimal.NewFromInt(constants.YearLikeMax)
	if v.GreaterThanOrEqual(yearMin) && v.LessThanOrEqual(yearMax) {
		return false
	}
	return true
}

// FindPlausibleAmounts scans free text for numeric tokens and returns every
// value passing the plausibility filter, in order of appearance.
func FindPlausibleAmounts(text string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, tok := range reAmountToken.FindAllString(text, -1) {
		v, ok := ParseAmount(tok)
		if !ok || !PlausibleAmount(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
