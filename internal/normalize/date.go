package normalize

import (
	"regexp"
	"strings"
	"time"
)

// CanonicalDateLayout is the wire form for normalized dates (day-month-year).
const CanonicalDateLayout = "02-01-2006"

// PastYearWindow / FutureYearWindow bound plausible document years relative
// to the reference year. Anything outside is treated as not-a-date, which
// rejects amount-like or ID-like numeric strings.
const (
	PastYearWindow   = 6
	FutureYearWindow = 1
)

// dateLayouts are tried in order. Day-first forms come before month-first
// so ambiguous numeric dates resolve day-first, matching the documents this
// engine targets. Layouts with "06" get two-digit-year expansion applied
// after parsing.
var dateLayouts = []string{
	"2/1/2006", "2/1/06",
	"2-1-2006", "2-1-06",
	"2.1.2006", "2.1.06",
	"2 1 2006", "2 1 06",
	"1/2/2006", "1/2/06",
	"1-2-2006", "1-2-06",
	"1.2.2006", "1.2.06",
	"2006/1/2", "2006-1-2", "2006.1.2", "2006 1 2",
	"2 Jan 2006", "2 January 2006",
	"Jan 2 2006", "January 2 2006",
	"Jan 2, 2006", "January 2, 2006",
	"2-Jan-2006", "2-Jan-06", "2-January-2006",
	"Jan-2-2006", "Jan-2-06",
	"2/Jan/2006", "2.Jan.2006",
	"2006 Jan 2", "2006-Jan-2",
	"02012006", "20060102",
}

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	reDateSeparatorNoise = regexp.MustCompile(`[\s:;,]+`)
	// "<Month name> <day>[, <year>]" with an optional time in between.
	reMonthDayFreetext = regexp.MustCompile(`(?i)([A-Za-z]{3,9})\s+(\d{1,2})[\s,]*(?:\d{1,2}:\d{2}\s*(?:AM|PM|a\.m\.|p\.m\.)?)?\s*(\d{4})?`)
)

// ParseDate converts a raw date phrase into a canonical date, using the
// current time as the plausibility reference.
func ParseDate(s string) (time.Time, bool) {
	return ParseDateAt(s, time.Now())
}

// ParseDateAt is ParseDate with an explicit reference time for the
// plausibility window.
func ParseDateAt(s string, ref time.Time) (time.Time, bool) {
	cleaned := strings.TrimSpace(reDateSeparatorNoise.ReplaceAllString(s, " "))
	if cleaned == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		dt, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		if strings.Contains(layout, "06") && !strings.Contains(layout, "2006") {
			dt = expandTwoDigitYear(dt)
		}
		if plausibleYear(dt, ref) {
			return midnightUTC(dt), true
		}
	}

	// Free-text "<Month name> <day>[, <year>]"; year defaults to the
	// reference year when absent.
	if m := reMonthDayFreetext.FindStringSubmatch(cleaned); m != nil {
		month, ok := monthsByPrefix[strings.ToLower(m[1])[:3]]
		if ok {
			day := atoiSafe(m[2])
			year := ref.Year()
			if m[3] != "" {
				year = atoiSafe(m[3])
			}
			if day >= 1 && day <= 31 {
				dt := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
				// reject normalized overflow like Feb 30
				if dt.Day() == day && plausibleYear(dt, ref) {
					return dt, true
				}
			}
		}
	}

	return time.Time{}, false
}

// expandTwoDigitYear applies the >50 -> 1900s, <=50 -> 2000s rule,
// overriding Go's own 69/68 pivot.
func expandTwoDigitYear(dt time.Time) time.Time {
	yy := dt.Year() % 100
	year := 2000 + yy
	if yy > 50 {
		year = 1900 + yy
	}
	return time.Date(year, dt.Month(), dt.Day(), 0, 0, 0, 0, time.UTC)
}

func plausibleYear(dt time.Time, ref time.Time) bool {
	return dt.Year() >= ref.Year()-PastYearWindow && dt.Year() <= ref.Year()+FutureYearWindow
}

func midnightUTC(dt time.Time) time.Time {
	return time.Date(dt.Year(), dt.Month(), dt.Day(), 0, 0, 0, 0, time.UTC)
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// FormatDate renders a normalized date in the canonical day-month-year form.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(CanonicalDateLayout)
}

// SameDate reports whether two normalized dates fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
