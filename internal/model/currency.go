package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of fractional digits kept for amounts and balances.
const CurrencyPlaces = 2

// Currency quantizes d to two decimals, rounding half away from zero.
func Currency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// ParseCurrency parses a decimal string such as "-12.5" or "1,005.56" into a
// quantized amount.
func ParseCurrency(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return Currency(d), nil
}
