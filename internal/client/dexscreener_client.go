package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"token_portfolio/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const dexScreenerAPIName = "dexscreener"

// DEXScreenerClient defines the interface for interacting with the DEX Screener API.
type DEXScreenerClient interface {
	// GetTokenPairs returns the pairs listed for a token, in API order.
	GetTokenPairs(ctx context.Context, tokenAddress string) ([]entity.PairData, error)
}

// dexScreenerClientImpl is the implementation of DEXScreenerClient.
type dexScreenerClientImpl struct {
	baseURL string
	http    *requester
	logger  *zap.Logger
}

// NewDEXScreenerClient creates a new instance of dexScreenerClientImpl.
func NewDEXScreenerClient(baseURL string, opts RequestOptions, logger *zap.Logger) DEXScreenerClient {
	named := logger.Named("DEXScreenerClient")
	return &dexScreenerClientImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newRequester(dexScreenerAPIName, opts, named),
		logger:  named,
	}
}

// GetTokenPairs implements the DEXScreenerClient interface.
func (c *dexScreenerClientImpl) GetTokenPairs(ctx context.Context, tokenAddress string) ([]entity.PairData, error) {
	tokenAddress = strings.TrimSpace(tokenAddress)
	if tokenAddress == "" {
		return nil, fmt.Errorf("tokenAddress cannot be empty")
	}

	requestURL := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, url.PathEscape(tokenAddress))
	resp, err := c.http.get(ctx, "tokens", requestURL)
	if err != nil {
		return nil, err
	}
	if resp.status != fasthttp.StatusOK {
		return nil, c.http.statusError(requestURL, resp)
	}

	var pairs entity.DEXTokenPairs
	if err := json.Unmarshal(resp.body, &pairs); err != nil {
		c.logger.Error("Failed to unmarshal DEX Screener response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", truncate(resp.body)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal DEX Screener response from %s: %w", requestURL, err)
	}

	if len(pairs.Pairs) == 0 {
		c.logger.Debug("DEX Screener lists no pairs for token", zap.String("tokenAddress", tokenAddress))
	}
	return pairs.Pairs, nil
}
