package utils

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// DefaultTokenDecimals is used when the explorer reports decimals that
// cannot be parsed as a non-negative integer.
const DefaultTokenDecimals int32 = 1

// ParseRawAmount parses an integer amount in the token's smallest unit.
func ParseRawAmount(raw string) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty amount")
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer amount %q", raw)
	}
	return amount, nil
}

// NormalizeAmount converts a raw amount to whole units.
// Example: amount=1000000, decimals=6 => 1
func NormalizeAmount(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// ParseDecimals reads the decimals field of an explorer token descriptor,
// which may come as a string or a number. Strings are read as base 10.
func ParseDecimals(v any) int32 {
	switch t := v.(type) {
	case nil:
		return DefaultTokenDecimals
	case string:
		d, err := strconv.ParseInt(strings.TrimSpace(t), 10, 32)
		if err != nil || d < 0 {
			return DefaultTokenDecimals
		}
		return int32(d)
	}
	d, err := cast.ToInt64E(v)
	if err != nil || d < 0 || d > math.MaxInt32 {
		return DefaultTokenDecimals
	}
	return int32(d)
}

// ParsePriceUSD parses a DEX price string. Only empty or malformed prices
// are reported as not found; a listed zero is a price.
func ParsePriceUSD(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}

// FormatFixed renders d rounded half-away-from-zero to places decimals.
func FormatFixed(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
