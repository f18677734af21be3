package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// NativeContractAddress is the sentinel stored in place of a contract
// address for the chain's native coin.
const NativeContractAddress = "Native"

// TokenInfo holds a token descriptor as returned by the explorer token list.
type TokenInfo struct {
	Address  string `json:"contractAddress"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// TokenHolding is one priced row of a wallet portfolio.
type TokenHolding struct {
	Name            string           `json:"name"`
	Symbol          string           `json:"symbol"`
	ContractAddress string           `json:"contractAddress"`
	Decimals        int32            `json:"decimals"`
	RawBalance      *big.Int         `json:"rawBalance"`
	Balance         decimal.Decimal  `json:"balance"`
	PriceUSD        *decimal.Decimal `json:"priceUSD,omitempty"`
	ValueUSD        *decimal.Decimal `json:"valueUSD,omitempty"`
}

// IsNative reports whether the holding is the chain's native coin.
func (h TokenHolding) IsNative() bool {
	return h.ContractAddress == NativeContractAddress
}

// HasPrice reports whether a USD price was found for the holding.
func (h TokenHolding) HasPrice() bool {
	return h.PriceUSD != nil
}
