package constants

// ClaimStatus is the terminal disposition for an evaluated claim unit.
type ClaimStatus string

// Stable values (store these exact strings in responses and records).
// Evaluation precedence is fixed: the first matching condition wins,
// in the declaration order below.
const (
	StatusInvalidAttachment     ClaimStatus = "INVALID_ATTACHMENT"
	StatusDuplicateClaim        ClaimStatus = "DUPLICATE_CLAIM"
	StatusDailyLimitExceeded    ClaimStatus = "DAILY_LIMIT_EXCEEDED"
	StatusVoucherAmountExceeded ClaimStatus = "VOUCHER_AMOUNT_EXCEEDED"
	StatusMismatchedValue       ClaimStatus = "MISMATCHED_VALUE"
	StatusClaimTotalMismatch    ClaimStatus = "CLAIM_TOTAL_MISMATCH"
	StatusNewClaim              ClaimStatus = "NEW_CLAIM"
)
