package port

import (
	"context"

	"token_portfolio/internal/domain/entity"
)

// ExplorerClient defines the calls made to a Blockscout/Etherscan-style
// explorer "account" module.
type ExplorerClient interface {
	// GetNativeBalance returns the raw native-coin balance of a wallet.
	GetNativeBalance(ctx context.Context, walletAddress string) (string, error)

	// GetTokenList returns the tokens a wallet holds, in explorer order.
	GetTokenList(ctx context.Context, walletAddress string) ([]entity.TokenInfo, error)

	// GetTokenBalance returns the raw balance of one token for a wallet.
	GetTokenBalance(ctx context.Context, contractAddress string, walletAddress string) (string, error)
}

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all available network definitions as a slice.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByName returns a network definition by its identifier or name.
	GetNetworkDefinitionByName(nameOrIdentifier string) (entity.NetworkDefinition, bool)
}
