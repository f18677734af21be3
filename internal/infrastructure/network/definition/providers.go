package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"token_portfolio/internal/app/port"
	"token_portfolio/internal/domain/entity"
	"token_portfolio/internal/infrastructure/configloader"
)

// NetworkDefinitionProvider provides network definitions.
type NetworkDefinitionProvider struct {
	logger         port.Logger
	allNetworkDefs map[string]entity.NetworkDefinition
}

// Predefined network definitions. Every explorer exposes the Blockscout
// account API, which is the only one with action=tokenlist.
var ( //nolint:gochecknoglobals // Global for definitions
	PulseChain = entity.NetworkDefinition{
		ChainID:                   369,
		Name:                      "PulseChain",
		Identifier:                "pulsechain",
		NativeName:                "Pulse",
		NativeSymbol:              "PLS",
		Decimals:                  18,
		ExplorerAPIURL:            "https://scan.pulsechain.com/api",
		BlockExplorerURL:          "https://scan.pulsechain.com",
		WrappedNativeTokenAddress: "0xA1077a294dDE1B09bB078844df40758a5D0f9a27", // WPLS
	}
	Ethereum = entity.NetworkDefinition{
		ChainID:                   1,
		Name:                      "Ethereum Mainnet",
		Identifier:                "ethereum",
		NativeName:                "Ether",
		NativeSymbol:              "ETH",
		Decimals:                  18,
		ExplorerAPIURL:            "https://eth.blockscout.com/api",
		BlockExplorerURL:          "https://eth.blockscout.com",
		WrappedNativeTokenAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH
	}
	Gnosis = entity.NetworkDefinition{
		ChainID:                   100,
		Name:                      "Gnosis Chain",
		Identifier:                "gnosis",
		NativeName:                "xDAI",
		NativeSymbol:              "XDAI",
		Decimals:                  18,
		ExplorerAPIURL:            "https://gnosis.blockscout.com/api",
		BlockExplorerURL:          "https://gnosis.blockscout.com",
		WrappedNativeTokenAddress: "0xe91D153E0b41518A2Ce8Dd3D7944Fa863463a97d", // WXDAI
	}
	Base = entity.NetworkDefinition{
		ChainID:                   8453,
		Name:                      "Base Mainnet",
		Identifier:                "base",
		NativeName:                "Ether",
		NativeSymbol:              "ETH",
		Decimals:                  18,
		ExplorerAPIURL:            "https://base.blockscout.com/api",
		BlockExplorerURL:          "https://base.blockscout.com",
		WrappedNativeTokenAddress: "0x4200000000000000000000000000000000000006", // WETH on Base
	}
)

var allKnownDefinitions = map[string]entity.NetworkDefinition{
	PulseChain.Identifier: PulseChain,
	Ethereum.Identifier:   Ethereum,
	Gnosis.Identifier:     Gnosis,
	Base.Identifier:       Base,
}

// NewNetworkDefinitionProvider creates a new NetworkDefinitionProvider.
func NewNetworkDefinitionProvider(log port.Logger) *NetworkDefinitionProvider {
	defs := make(map[string]entity.NetworkDefinition, len(allKnownDefinitions))
	for id, def := range allKnownDefinitions {
		defs[id] = def
	}
	return &NetworkDefinitionProvider{logger: log, allNetworkDefs: defs}
}

// GetAllNetworkDefinitions returns every known definition ordered by chain ID.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defs := make([]entity.NetworkDefinition, 0, len(p.allNetworkDefs))
	for _, def := range p.allNetworkDefs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ChainID < defs[j].ChainID })
	return defs
}

// GetNetworkDefinitionByName looks a definition up by identifier or display name.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(nameOrIdentifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	key := strings.ToLower(strings.TrimSpace(nameOrIdentifier))
	if def, ok := p.allNetworkDefs[key]; ok {
		return def, true
	}
	for _, def := range p.allNetworkDefs {
		if strings.EqualFold(def.Name, key) {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// Resolve returns the definition selected by cfg with its overrides applied.
func (p *NetworkDefinitionProvider) Resolve(cfg configloader.NetworkConfig) (entity.NetworkDefinition, error) {
	def, ok := p.GetNetworkDefinitionByName(cfg.Identifier)
	if !ok {
		return entity.NetworkDefinition{}, fmt.Errorf("unknown network %q", cfg.Identifier)
	}
	if cfg.ExplorerAPIURL != "" {
		p.logger.Info("Explorer API URL overridden by configuration", "network", def.Identifier, "url", cfg.ExplorerAPIURL)
		def.ExplorerAPIURL = cfg.ExplorerAPIURL
	}
	if cfg.WrappedNativeTokenAddress != "" {
		def.WrappedNativeTokenAddress = cfg.WrappedNativeTokenAddress
	}
	if def.WrappedNativeTokenAddress == "" {
		p.logger.Warn("WrappedNativeTokenAddress is not defined, native coin will not be priced", "network", def.Identifier)
	}
	return def, nil
}
