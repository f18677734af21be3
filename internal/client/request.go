package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"token_portfolio/internal/pkg/metrics"

	"github.com/cenkalti/backoff/v5"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const maxLoggedBodyBytes = 512

// RequestOptions tunes a requester.
type RequestOptions struct {
	Timeout              time.Duration
	MaxRetries           int
	RetryInitialInterval time.Duration
	MaxConnsPerHost      int
	UserAgent            string
}

// requester performs GET requests with fasthttp. HTTP 429 answers are
// retried with exponential backoff; everything else is returned as is.
type requester struct {
	client *fasthttp.Client
	api    string
	opts   RequestOptions
	logger *zap.Logger
}

type response struct {
	status int
	body   []byte
}

var errRateLimited = errors.New("rate limited")

func newRequester(api string, opts RequestOptions, logger *zap.Logger) *requester {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryInitialInterval <= 0 {
		opts.RetryInitialInterval = 500 * time.Millisecond
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "token-portfolio/1.0"
	}
	return &requester{
		client: &fasthttp.Client{
			Name:            opts.UserAgent,
			MaxConnsPerHost: opts.MaxConnsPerHost,
		},
		api:    api,
		opts:   opts,
		logger: logger,
	}
}

func (r *requester) get(ctx context.Context, action, requestURL string) (response, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.opts.RetryInitialInterval

	attempt := 0
	operation := func() (response, error) {
		attempt++
		resp, err := r.do(ctx, action, requestURL)
		if err != nil {
			return response{}, backoff.Permanent(err)
		}
		if resp.status == fasthttp.StatusTooManyRequests && attempt <= r.opts.MaxRetries {
			r.logger.Warn("Upstream rate limited the request, backing off",
				zap.String("url", requestURL), zap.Int("attempt", attempt))
			return resp, errRateLimited
		}
		return resp, nil
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.opts.MaxRetries+1)),
	)
	if errors.Is(err, errRateLimited) {
		return resp, nil
	}
	return resp, err
}

func (r *requester) do(ctx context.Context, action, requestURL string) (response, error) {
	if err := ctx.Err(); err != nil {
		return response{}, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	r.logger.Debug("Requesting upstream", zap.String("api", r.api), zap.String("url", requestURL))

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = r.client.DoDeadline(req, resp, deadline)
	} else {
		err = r.client.DoTimeout(req, resp, r.opts.Timeout)
	}
	metrics.UpstreamDuration.WithLabelValues(r.api, action).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(r.api, action, "transport_error").Inc()
		r.logger.Error("Failed to execute upstream request", zap.String("url", requestURL), zap.Error(err))
		return response{}, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	out := response{
		status: resp.StatusCode(),
		body:   append([]byte(nil), resp.Body()...),
	}
	if out.status != fasthttp.StatusOK {
		metrics.UpstreamRequests.WithLabelValues(r.api, action, "bad_status").Inc()
		r.logger.Error("Upstream request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", out.status),
			zap.ByteString("responseBody", truncate(out.body)))
	} else {
		metrics.UpstreamRequests.WithLabelValues(r.api, action, "ok").Inc()
	}
	return out, nil
}

func (r *requester) statusError(requestURL string, resp response) error {
	return &UpstreamStatusError{
		API:        r.api,
		URL:        requestURL,
		StatusCode: resp.status,
		Body:       string(truncate(resp.body)),
	}
}

func truncate(body []byte) []byte {
	if len(body) > maxLoggedBodyBytes {
		return body[:maxLoggedBodyBytes]
	}
	return body
}
