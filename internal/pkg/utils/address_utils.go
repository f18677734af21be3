package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress returns the key under which a wallet is memoized.
// Hex addresses are lower-cased so that checksummed and plain forms share
// an entry; anything else is only trimmed, since the explorer is the one
// that decides what a valid address is.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if common.IsHexAddress(address) {
		return strings.ToLower(common.HexToAddress(address).Hex())
	}
	return address
}

// IsHexAddress reports whether s looks like a 20-byte hex address.
func IsHexAddress(s string) bool {
	return common.IsHexAddress(strings.TrimSpace(s))
}
