package port

import (
	"context"

	"github.com/shopspring/decimal"
)

// TokenPriceService resolves USD prices for token contracts.
type TokenPriceService interface {
	// GetPriceUSD returns the USD price of a contract. found is false when
	// no trading pair or price is listed; err is set only when the price
	// source could not be queried.
	GetPriceUSD(ctx context.Context, contractAddress string) (price decimal.Decimal, found bool, err error)

	// GetNativePriceUSD prices the native coin through its wrapped contract.
	GetNativePriceUSD(ctx context.Context) (price decimal.Decimal, found bool, err error)
}
