package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is an address read from a wallets file.
type Wallet struct {
	Address string
}

// PortfolioResult is the aggregated holdings of one wallet. Holdings keep
// the native coin first, then tokens in explorer order.
type PortfolioResult struct {
	WalletAddress     string           `json:"walletAddress"`
	Network           string           `json:"network"`
	Holdings          []TokenHolding   `json:"holdings"`
	TotalValueUSD     decimal.Decimal  `json:"totalValueUSD"`
	MissingPriceCount int              `json:"missingPriceCount"`
	TotalIsLowerBound bool             `json:"totalIsLowerBound"`
	Errors            []PortfolioError `json:"errors,omitempty"`
	FetchedAt         time.Time        `json:"fetchedAt"`
}

// Aborted reports whether the pipeline stopped before any token was
// processed, e.g. because the address was rejected by the explorer.
func (p *PortfolioResult) Aborted() bool {
	if len(p.Holdings) > 0 {
		return false
	}
	for _, e := range p.Errors {
		if e.Stage == StageTokenList {
			return true
		}
	}
	return false
}
