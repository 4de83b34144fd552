package constants

import "strings"

// SubType is the canonical voucher sub-type.
type SubType string

const (
	DailyExpense      SubType = "Daily_Expense"
	IndividualExpense SubType = "Individual_Expense"
)

var allSubTypes = []SubType{
	DailyExpense,
	IndividualExpense,
}

// SubTypeStrings returns the sub-types as plain strings, for schemas and enums.
func SubTypeStrings() []string {
	result := make([]string, len(allSubTypes))
	for i, st := range allSubTypes {
		result[i] = string(st)
	}
	return result
}

// CanonicalSubType maps free-form caller input onto a canonical sub-type.
func CanonicalSubType(input string) (SubType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	synonyms := map[string]SubType{
		"daily":               DailyExpense,
		"daily_expense":       DailyExpense,
		"daily_expenses":      DailyExpense,
		"individual":          IndividualExpense,
		"individual_expense":  IndividualExpense,
		"individual_expenses": IndividualExpense,
	}
	if st, ok := synonyms[normalized]; ok {
		return st, true
	}
	for _, st := range allSubTypes {
		if normalized == strings.ToLower(string(st)) {
			return st, true
		}
	}
	return "", false
}
