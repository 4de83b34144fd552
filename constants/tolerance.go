package constants

import "github.com/shopspring/decimal"

// AmountTolerance is the fixed window for amount-equality decisions, in
// currency units. Two amounts match when their absolute difference is at
// most this value (inclusive). Shared by the soft-duplicate check and the
// known-value mismatch check.
var AmountTolerance = decimal.NewFromInt(5)

// Amount plausibility bounds used by the extractors: candidate monetary
// values outside [MinPlausibleAmount, MaxPlausibleAmount] are discarded, as
// are values inside the 4-digit year window [YearLikeMin, YearLikeMax].
var (
	MinPlausibleAmount = decimal.NewFromInt(1)
	MaxPlausibleAmount = decimal.NewFromInt(500000)
)

const (
	YearLikeMin = 1990
	YearLikeMax = 2050
)
