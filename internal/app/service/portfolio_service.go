package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"token_portfolio/internal/app/port"
	"token_portfolio/internal/client"
	"token_portfolio/internal/domain/entity"
	"token_portfolio/internal/pkg/metrics"
	"token_portfolio/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// InvalidAddressMessage is shown when the explorer does not recognise a wallet.
const InvalidAddressMessage = "Please, enter a valid address."

// ErrEmptyAddress is returned for a blank wallet address.
var ErrEmptyAddress = errors.New("wallet address is empty")

// PortfolioServiceOptions tunes caching and upstream pressure.
type PortfolioServiceOptions struct {
	// CacheTTL of zero keeps memoized portfolios until invalidated.
	CacheTTL              time.Duration
	CacheCleanupInterval  time.Duration
	MaxConcurrentRequests int
	RateLimit             float64
	BurstLimit            int
	PipelineTimeout       time.Duration
}

var _ port.PortfolioService = (*PortfolioServiceImpl)(nil)

// PortfolioServiceImpl implements port.PortfolioService.
type PortfolioServiceImpl struct {
	explorer      port.ExplorerClient
	tokenPriceSvc port.TokenPriceService
	network       entity.NetworkDefinition
	logger        port.Logger
	opts          PortfolioServiceOptions

	memo     *cache.Cache
	inflight singleflight.Group
	limiter  *rate.Limiter
}

// NewPortfolioService creates a new instance of PortfolioServiceImpl.
func NewPortfolioService(
	explorer port.ExplorerClient,
	tps port.TokenPriceService,
	network entity.NetworkDefinition,
	l port.Logger,
	opts PortfolioServiceOptions,
) *PortfolioServiceImpl {
	if opts.MaxConcurrentRequests <= 0 {
		opts.MaxConcurrentRequests = 1
	}
	if opts.BurstLimit <= 0 {
		opts.BurstLimit = opts.MaxConcurrentRequests
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	return &PortfolioServiceImpl{
		explorer:      explorer,
		tokenPriceSvc: tps,
		network:       network,
		logger:        l,
		opts:          opts,
		memo:          cache.New(ttl, opts.CacheCleanupInterval),
		limiter:       rate.NewLimiter(limit, opts.BurstLimit),
	}
}

// Network implements port.PortfolioService.
func (s *PortfolioServiceImpl) Network() entity.NetworkDefinition {
	return s.network
}

// GetPortfolio implements port.PortfolioService. The returned result is
// shared with the cache and later callers and must not be modified.
func (s *PortfolioServiceImpl) GetPortfolio(ctx context.Context, walletAddress string) (*entity.PortfolioResult, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	key := utils.NormalizeAddress(walletAddress)
	if key == "" {
		return abortedResult(walletAddress, s.network.Identifier, InvalidAddressMessage), ErrEmptyAddress
	}

	if v, ok := s.memo.Get(key); ok {
		metrics.PortfolioCacheLookups.WithLabelValues("hit").Inc()
		s.logger.Debug("Portfolio served from cache", "address", walletAddress)
		return v.(*entity.PortfolioResult), nil
	}
	metrics.PortfolioCacheLookups.WithLabelValues("miss").Inc()

	type outcome struct {
		result *entity.PortfolioResult
		err    error
	}
	// The shared fetch outlives any single caller; PipelineTimeout bounds it.
	ch := s.inflight.DoChan(key, func() (any, error) {
		if v, ok := s.memo.Get(key); ok {
			return outcome{result: v.(*entity.PortfolioResult)}, nil
		}
		result, complete, err := s.fetchPortfolio(context.WithoutCancel(ctx), walletAddress)
		if err == nil && complete {
			s.memo.SetDefault(key, result)
		}
		return outcome{result: result, err: err}, nil
	})

	select {
	case r := <-ch:
		out := r.Val.(outcome)
		return out.result, out.err
	case <-ctx.Done():
		err := ctx.Err()
		s.logger.Debug("Caller left before the portfolio was ready", "address", walletAddress, "error", err)
		return abortedResult(walletAddress, s.network.Identifier, fmt.Sprintf("Failed to fetch portfolio: %v", err)), err
	}
}

// InvalidateCache implements port.PortfolioService.
func (s *PortfolioServiceImpl) InvalidateCache(walletAddress string) bool {
	key := utils.NormalizeAddress(walletAddress)
	if _, found := s.memo.Get(key); !found {
		return false
	}
	s.memo.Delete(key)
	s.logger.Info("Portfolio cache entry dropped", "address", key)
	return true
}

// CachedAddresses implements port.PortfolioService.
func (s *PortfolioServiceImpl) CachedAddresses() []string {
	addresses := lo.Keys(s.memo.Items())
	sort.Strings(addresses)
	return addresses
}

type tokenOutcome struct {
	holding *entity.TokenHolding
	errs    []entity.PortfolioError
}

// fetchPortfolio runs the uncached pipeline. The native coin and the token
// list are fetched side by side; tokens are then resolved concurrently and
// joined back in explorer order. The bool is false when the pipeline
// deadline expired before every call finished.
func (s *PortfolioServiceImpl) fetchPortfolio(ctx context.Context, walletAddress string) (*entity.PortfolioResult, bool, error) {
	start := time.Now()
	defer func() { metrics.PipelineDuration.Observe(time.Since(start).Seconds()) }()

	if s.opts.PipelineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.PipelineTimeout)
		defer cancel()
	}

	s.logger.Info("Fetching portfolio", "address", walletAddress, "network", s.network.Identifier)

	var (
		native    tokenOutcome
		tokens    []entity.TokenInfo
		tokensErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		native = s.fetchNative(ctx, walletAddress)
		return nil
	})
	g.Go(func() error {
		if tokensErr = s.limiter.Wait(ctx); tokensErr != nil {
			return nil
		}
		tokens, tokensErr = s.explorer.GetTokenList(ctx, walletAddress)
		return nil
	})
	_ = g.Wait()

	if tokensErr != nil {
		message := InvalidAddressMessage
		if !errors.Is(tokensErr, client.ErrInvalidAddress) {
			message = fmt.Sprintf("Failed to fetch token list: %v", tokensErr)
		}
		s.logger.Warn("Token list unavailable, aborting portfolio", "address", walletAddress, "error", tokensErr)
		return abortedResult(walletAddress, s.network.Identifier, message), false,
			fmt.Errorf("token list for %s: %w", walletAddress, tokensErr)
	}

	outcomes := make([]tokenOutcome, len(tokens))
	tg := new(errgroup.Group)
	tg.SetLimit(s.opts.MaxConcurrentRequests)
	for i, token := range tokens {
		tg.Go(func() error {
			outcomes[i] = s.fetchToken(ctx, walletAddress, token)
			return nil
		})
	}
	_ = tg.Wait()

	result := &entity.PortfolioResult{
		WalletAddress: walletAddress,
		Network:       s.network.Identifier,
		Holdings:      make([]entity.TokenHolding, 0, len(tokens)+1),
		TotalValueUSD: decimal.Zero,
		FetchedAt:     time.Now().UTC(),
	}
	for _, o := range append([]tokenOutcome{native}, outcomes...) {
		if o.holding != nil {
			result.Holdings = append(result.Holdings, *o.holding)
		}
		result.Errors = append(result.Errors, o.errs...)
	}
	summarize(result)

	s.logger.Info("Portfolio fetched",
		"address", walletAddress,
		"holdings", len(result.Holdings),
		"totalValueUSD", result.TotalValueUSD.String(),
		"missingPrices", result.MissingPriceCount,
		"errors", len(result.Errors))

	if err := ctx.Err(); err != nil {
		s.logger.Warn("Portfolio pipeline deadline expired, result will not be cached", "address", walletAddress, "error", err)
		return result, false, nil
	}
	return result, true, nil
}

func (s *PortfolioServiceImpl) fetchNative(ctx context.Context, walletAddress string) tokenOutcome {
	fail := func(stage string, err error) tokenOutcome {
		s.logger.Warn("Native balance unavailable", "address", walletAddress, "stage", stage, "error", err)
		return tokenOutcome{errs: []entity.PortfolioError{{
			WalletAddress:   walletAddress,
			TokenSymbol:     s.network.NativeSymbol,
			ContractAddress: entity.NativeContractAddress,
			Stage:           stage,
			Message:         fmt.Sprintf("Failed to fetch %s balance: %v", s.network.NativeSymbol, err),
		}}}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fail(entity.StageNativeBalance, err)
	}
	raw, err := s.explorer.GetNativeBalance(ctx, walletAddress)
	if err != nil {
		return fail(entity.StageNativeBalance, err)
	}
	amount, err := utils.ParseRawAmount(raw)
	if err != nil {
		return fail(entity.StageNativeBalance, err)
	}

	holding := &entity.TokenHolding{
		Name:            s.network.NativeName,
		Symbol:          s.network.NativeSymbol,
		ContractAddress: entity.NativeContractAddress,
		Decimals:        s.network.Decimals,
		RawBalance:      amount,
		Balance:         utils.NormalizeAmount(amount, s.network.Decimals),
	}
	out := tokenOutcome{holding: holding}

	if err := s.limiter.Wait(ctx); err != nil {
		out.errs = append(out.errs, s.priceError(walletAddress, holding, err))
		return out
	}
	price, found, err := s.tokenPriceSvc.GetNativePriceUSD(ctx)
	if err != nil {
		out.errs = append(out.errs, s.priceError(walletAddress, holding, err))
	} else if found {
		holding.PriceUSD = &price
	}
	return out
}

func (s *PortfolioServiceImpl) fetchToken(ctx context.Context, walletAddress string, token entity.TokenInfo) tokenOutcome {
	fail := func(err error) tokenOutcome {
		s.logger.Warn("Token balance unavailable, skipping token",
			"address", walletAddress, "token", token.Symbol, "contract", token.Address, "error", err)
		return tokenOutcome{errs: []entity.PortfolioError{{
			WalletAddress:   walletAddress,
			TokenSymbol:     token.Symbol,
			ContractAddress: token.Address,
			Stage:           entity.StageTokenBalance,
			Message:         fmt.Sprintf("Failed to fetch balance for %s: %v", token.Symbol, err),
		}}}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fail(err)
	}
	raw, err := s.explorer.GetTokenBalance(ctx, token.Address, walletAddress)
	if err != nil {
		return fail(err)
	}
	amount, err := utils.ParseRawAmount(raw)
	if err != nil {
		return fail(err)
	}

	holding := &entity.TokenHolding{
		Name:            token.Name,
		Symbol:          token.Symbol,
		ContractAddress: token.Address,
		Decimals:        token.Decimals,
		RawBalance:      amount,
		Balance:         utils.NormalizeAmount(amount, token.Decimals),
	}
	out := tokenOutcome{holding: holding}

	if err := s.limiter.Wait(ctx); err != nil {
		out.errs = append(out.errs, s.priceError(walletAddress, holding, err))
		return out
	}
	price, found, err := s.tokenPriceSvc.GetPriceUSD(ctx, token.Address)
	if err != nil {
		out.errs = append(out.errs, s.priceError(walletAddress, holding, err))
	} else if found {
		holding.PriceUSD = &price
	}
	return out
}

func (s *PortfolioServiceImpl) priceError(walletAddress string, h *entity.TokenHolding, err error) entity.PortfolioError {
	s.logger.Warn("Price lookup failed, token stays unpriced",
		"address", walletAddress, "token", h.Symbol, "contract", h.ContractAddress, "error", err)
	return entity.PortfolioError{
		WalletAddress:   walletAddress,
		TokenSymbol:     h.Symbol,
		ContractAddress: h.ContractAddress,
		Stage:           entity.StagePrice,
		Message:         fmt.Sprintf("Failed to fetch price for %s: %v", h.Symbol, err),
	}
}

// summarize fills in per-holding values and the total. Unpriced holdings
// are left out of the total and counted instead.
func summarize(result *entity.PortfolioResult) {
	total := decimal.Zero
	missing := 0
	for i := range result.Holdings {
		h := &result.Holdings[i]
		if !h.HasPrice() {
			missing++
			continue
		}
		value := h.Balance.Mul(*h.PriceUSD)
		h.ValueUSD = &value
		total = total.Add(value)
	}
	result.TotalValueUSD = total
	result.MissingPriceCount = missing
	result.TotalIsLowerBound = missing > 0
}

func abortedResult(walletAddress, network, message string) *entity.PortfolioResult {
	return &entity.PortfolioResult{
		WalletAddress: walletAddress,
		Network:       network,
		Holdings:      []entity.TokenHolding{},
		TotalValueUSD: decimal.Zero,
		Errors: []entity.PortfolioError{{
			WalletAddress: walletAddress,
			Stage:         entity.StageTokenList,
			Message:       message,
		}},
		FetchedAt: time.Now().UTC(),
	}
}
