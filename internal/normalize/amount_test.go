package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountSeparators(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"comma grouped", "1,234.56", "1234.56"},
		{"comma grouped large", "12,34,567", "1234567"},
		{"european dot grouped", "1.234,56", "1234.56"},
		{"lone comma decimal", "1234,56", "1234.56"},
		{"lone comma thousands", "2,500", "2500"},
		{"plain integer", "450", "450"},
		{"plain decimal", "89.90", "89.9"},
		{"rupee symbol", "₹1,250.00", "1250"},
		{"rs prefix", "Rs. 640", "640"},
		{"inr prefix", "INR 1200.50", "1200.5"},
		{"dollar", "$42.75", "42.75"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.token)
			require.True(t, ok)
			want, err := decimal.NewFromString(tt.want)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %s want %s", got, want)
		})
	}
}

func TestParseAmountOCRDigitFixes(t *testing.T) {
	got, ok := ParseAmount("1O5.5O")
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("105.50")))

	got, ok = ParseAmount("I20.00")
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("120")))
}

func TestParseAmountMultipleDecimalPoints(t *testing.T) {
	// A second decimal point is OCR noise; digit groups after the first
	// point concatenate.
	got, ok := ParseAmount("1.234.56")
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.RequireFromString("1.23456")))
}

func TestParseAmountUnrecoverable(t *testing.T) {
	for _, token := range []string{"", "   ", "...", "-", "₹"} {
		_, ok := ParseAmount(token)
		assert.False(t, ok, "token %q", token)
	}
}

func TestPlausibleAmount(t *testing.T) {
	assert.True(t, PlausibleAmount(decimal.RequireFromString("450")))
	assert.True(t, PlausibleAmount(decimal.RequireFromString("1")))
	assert.True(t, PlausibleAmount(decimal.RequireFromString("500000")))

	assert.False(t, PlausibleAmount(decimal.RequireFromString("0.5")))
	assert.False(t, PlausibleAmount(decimal.RequireFromString("500001")))

	// year-like values are excluded even though they sit in range
	assert.False(t, PlausibleAmount(decimal.RequireFromString("2024")))
	assert.False(t, PlausibleAmount(decimal.RequireFromString("1990")))
	assert.False(t, PlausibleAmount(decimal.RequireFromString("2050")))
	assert.True(t, PlausibleAmount(decimal.RequireFromString("1989")))
	assert.True(t, PlausibleAmount(decimal.RequireFromString("2051")))
}

func TestFindPlausibleAmounts(t *testing.T) {
	amounts := FindPlausibleAmounts("Subtotal 450.00 GST 2024 Grand Total 472.50")
	require.Len(t, amounts, 2)
	assert.True(t, amounts[0].Equal(decimal.RequireFromString("450")))
	assert.True(t, amounts[1].Equal(decimal.RequireFromString("472.50")))
}
