package entity

// Pipeline stages a PortfolioError can originate from.
const (
	StageNativeBalance = "native_balance"
	StageTokenList     = "token_list"
	StageTokenBalance  = "token_balance"
	StagePrice         = "price"
)

// PortfolioError is a user-visible message about a step of the pipeline
// that failed for one wallet.
type PortfolioError struct {
	WalletAddress   string `json:"walletAddress"`
	TokenSymbol     string `json:"tokenSymbol,omitempty"`
	ContractAddress string `json:"contractAddress,omitempty"`
	Stage           string `json:"stage"`
	Message         string `json:"message"`
}
