package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"token_portfolio/internal/app/port"
	"token_portfolio/internal/client"
	"token_portfolio/internal/domain/entity"
	dex_types "token_portfolio/internal/entity"
	"token_portfolio/internal/pkg/metrics"
	"token_portfolio/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// cachedPrice is stored in the price cache. Misses are cached too, so a
// token without pairs is not looked up again for every wallet holding it.
type cachedPrice struct {
	price decimal.Decimal
	found bool
}

// tokenPriceServiceImpl implements port.TokenPriceService on top of DEX Screener.
type tokenPriceServiceImpl struct {
	dexscreenerClient client.DEXScreenerClient
	network           entity.NetworkDefinition
	logger            port.Logger
	prices            *cache.Cache
}

// NewTokenPriceService creates a new instance of tokenPriceServiceImpl.
// A zero cacheTTL disables the price cache.
func NewTokenPriceService(
	dsc client.DEXScreenerClient,
	network entity.NetworkDefinition,
	l port.Logger,
	cacheTTL time.Duration,
) port.TokenPriceService {
	s := &tokenPriceServiceImpl{
		dexscreenerClient: dsc,
		network:           network,
		logger:            l,
	}
	if cacheTTL > 0 {
		s.prices = cache.New(cacheTTL, 2*cacheTTL)
	}
	l.Info("TokenPriceService initialized", "network", network.Identifier, "cacheTTL", cacheTTL.String())
	return s
}

// GetPriceUSD implements port.TokenPriceService. The price is the priceUsd
// of the first pair DEX Screener lists for the contract.
func (s *tokenPriceServiceImpl) GetPriceUSD(ctx context.Context, contractAddress string) (decimal.Decimal, bool, error) {
	key := strings.ToLower(strings.TrimSpace(contractAddress))
	if key == "" {
		return decimal.Zero, false, fmt.Errorf("contract address cannot be empty")
	}

	if s.prices != nil {
		if v, ok := s.prices.Get(key); ok {
			metrics.PriceLookups.WithLabelValues("cached").Inc()
			p := v.(cachedPrice)
			return p.price, p.found, nil
		}
	}

	pairs, err := s.dexscreenerClient.GetTokenPairs(ctx, contractAddress)
	if err != nil {
		metrics.PriceLookups.WithLabelValues("error").Inc()
		s.logger.Warn("Failed to fetch pairs from DEX Screener", "tokenAddress", contractAddress, "error", err)
		return decimal.Zero, false, fmt.Errorf("price lookup for %s: %w", contractAddress, err)
	}

	price, found := firstPairPrice(pairs)
	if found {
		metrics.PriceLookups.WithLabelValues("found").Inc()
		s.logger.Debug("Price found", "tokenAddress", contractAddress, "priceUSD", price.String(), "pairAddress", pairs[0].PairAddress)
	} else {
		metrics.PriceLookups.WithLabelValues("missing").Inc()
		s.logger.Debug("No usable price listed", "tokenAddress", contractAddress, "pairCount", len(pairs))
	}

	if s.prices != nil {
		s.prices.SetDefault(key, cachedPrice{price: price, found: found})
	}
	return price, found, nil
}

// GetNativePriceUSD implements port.TokenPriceService.
func (s *tokenPriceServiceImpl) GetNativePriceUSD(ctx context.Context) (decimal.Decimal, bool, error) {
	wrapped := s.network.WrappedNativeTokenAddress
	if wrapped == "" {
		s.logger.Warn("No wrapped native contract configured, native coin stays unpriced",
			"network", s.network.Identifier, "nativeSymbol", s.network.NativeSymbol)
		return decimal.Zero, false, nil
	}
	return s.GetPriceUSD(ctx, wrapped)
}

// firstPairPrice takes the first pair as authoritative. Later pairs are
// not consulted even if the first one carries no usable price.
func firstPairPrice(pairs []dex_types.PairData) (decimal.Decimal, bool) {
	if len(pairs) == 0 || pairs[0].PriceUsd == nil {
		return decimal.Zero, false
	}
	return utils.ParsePriceUSD(*pairs[0].PriceUsd)
}
