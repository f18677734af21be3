package client

import (
	"context"
	"fmt"
	"strings"

	"token_portfolio/internal/app/port"
	"token_portfolio/internal/domain/entity"
	"token_portfolio/internal/pkg/utils"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const explorerAPIName = "explorer"

// explorerClientImpl talks to the account module of a Blockscout-style
// explorer. The shape of "result" depends on the action, so responses are
// read with gjson rather than decoded into fixed structs.
type explorerClientImpl struct {
	baseURL string
	http    *requester
	logger  *zap.Logger
}

// NewExplorerClient creates a client for the explorer API at baseURL
// (e.g. https://scan.pulsechain.com/api).
func NewExplorerClient(baseURL string, opts RequestOptions, logger *zap.Logger) port.ExplorerClient {
	named := logger.Named("ExplorerClient")
	return &explorerClientImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newRequester(explorerAPIName, opts, named),
		logger:  named,
	}
}

func (c *explorerClientImpl) accountURL(action string, params ...string) string {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	args.Add("module", "account")
	args.Add("action", action)
	for i := 0; i+1 < len(params); i += 2 {
		args.Add(params[i], params[i+1])
	}
	return c.baseURL + "?" + args.String()
}

// fetchResult performs the request and returns the "result" value.
// Missing results are returned as ok=false together with the explorer's
// message, if any.
func (c *explorerClientImpl) fetchResult(ctx context.Context, action, requestURL string) (result gjson.Result, message string, ok bool, err error) {
	resp, err := c.http.get(ctx, action, requestURL)
	if err != nil {
		return gjson.Result{}, "", false, err
	}
	if resp.status != fasthttp.StatusOK {
		return gjson.Result{}, "", false, c.http.statusError(requestURL, resp)
	}
	if !gjson.ValidBytes(resp.body) {
		return gjson.Result{}, "", false, fmt.Errorf("malformed JSON from %s: %q", requestURL, truncate(resp.body))
	}

	result = gjson.GetBytes(resp.body, "result")
	message = gjson.GetBytes(resp.body, "message").String()
	if !result.Exists() || result.Type == gjson.Null {
		return result, message, false, nil
	}
	return result, message, true, nil
}

// GetNativeBalance implements port.ExplorerClient.
func (c *explorerClientImpl) GetNativeBalance(ctx context.Context, walletAddress string) (string, error) {
	requestURL := c.accountURL("balance", "address", walletAddress)
	result, message, ok, err := c.fetchResult(ctx, "balance", requestURL)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("native balance for %s: %w (%s)", walletAddress, ErrMissingResult, message)
	}
	return result.String(), nil
}

// GetTokenList implements port.ExplorerClient.
func (c *explorerClientImpl) GetTokenList(ctx context.Context, walletAddress string) ([]entity.TokenInfo, error) {
	requestURL := c.accountURL("tokenlist", "address", walletAddress)
	result, message, ok, err := c.fetchResult(ctx, "tokenlist", requestURL)
	if err != nil {
		return nil, err
	}
	if !ok || !result.IsArray() {
		c.logger.Info("Explorer returned no token list", zap.String("address", walletAddress), zap.String("message", message))
		return nil, fmt.Errorf("token list for %q: %w", walletAddress, ErrInvalidAddress)
	}

	items := result.Array()
	tokens := make([]entity.TokenInfo, 0, len(items))
	for _, item := range items {
		decimals := item.Get("decimals")
		var rawDecimals any = ""
		if decimals.Exists() {
			rawDecimals = decimals.Value()
		}
		tokens = append(tokens, entity.TokenInfo{
			Address:  item.Get("contractAddress").String(),
			Name:     item.Get("name").String(),
			Symbol:   item.Get("symbol").String(),
			Decimals: utils.ParseDecimals(rawDecimals),
		})
	}

	c.logger.Debug("Token list fetched", zap.String("address", walletAddress), zap.Int("tokenCount", len(tokens)))
	return tokens, nil
}

// GetTokenBalance implements port.ExplorerClient.
func (c *explorerClientImpl) GetTokenBalance(ctx context.Context, contractAddress string, walletAddress string) (string, error) {
	requestURL := c.accountURL("tokenbalance", "contractaddress", contractAddress, "address", walletAddress)
	result, message, ok, err := c.fetchResult(ctx, "tokenbalance", requestURL)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("token balance of %s for %s: %w (%s)", contractAddress, walletAddress, ErrMissingResult, message)
	}
	return result.String(), nil
}
