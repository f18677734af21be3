package port

import (
	"context"

	"token_portfolio/internal/domain/entity"
)

// PortfolioService defines the interface for fetching wallet portfolio information.
type PortfolioService interface {
	// GetPortfolio returns the priced holdings of a wallet. Results are
	// memoized per address. The error is non-nil only when the pipeline
	// aborted; the returned result then still carries the user-facing message.
	GetPortfolio(ctx context.Context, walletAddress string) (*entity.PortfolioResult, error)

	// InvalidateCache drops the memoized result for an address.
	InvalidateCache(walletAddress string) bool

	// CachedAddresses lists the addresses currently memoized.
	CachedAddresses() []string

	// Network returns the network the service queries.
	Network() entity.NetworkDefinition
}
