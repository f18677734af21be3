package entity

// NetworkDefinition describes a chain whose explorer speaks the
// Blockscout/Etherscan "account" API.
type NetworkDefinition struct {
	ChainID                   uint64 `json:"chainId" yaml:"chainId"`
	Name                      string `json:"name" yaml:"name"`
	Identifier                string `json:"identifier" yaml:"identifier"`
	NativeName                string `json:"nativeName" yaml:"nativeName"`
	NativeSymbol              string `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals                  int32  `json:"decimals" yaml:"decimals"`
	ExplorerAPIURL            string `json:"explorerApiUrl" yaml:"explorerApiUrl"`
	BlockExplorerURL          string `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	WrappedNativeTokenAddress string `json:"wrappedNativeTokenAddress" yaml:"wrappedNativeTokenAddress"`
}
