package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newExplorerServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)
	return server
}

func testOptions() RequestOptions {
	return RequestOptions{Timeout: 2 * time.Second, MaxRetries: 2, RetryInitialInterval: time.Millisecond}
}

func TestGetNativeBalance(t *testing.T) {
	server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("module") != "account" || q.Get("action") != "balance" || q.Get("address") != "0xabc" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"message":"OK","result":"2000000000000000000","status":"1"}`))
	})

	c := NewExplorerClient(server.URL, testOptions(), zap.NewNop())
	got, err := c.GetNativeBalance(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2000000000000000000" {
		t.Errorf("balance = %q", got)
	}
}

func TestGetNativeBalanceNullResult(t *testing.T) {
	server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Invalid address hash","result":null,"status":"0"}`))
	})

	c := NewExplorerClient(server.URL, testOptions(), zap.NewNop())
	_, err := c.GetNativeBalance(context.Background(), "nope")
	if !errors.Is(err, ErrMissingResult) {
		t.Fatalf("expected ErrMissingResult, got %v", err)
	}
}

func TestGetNativeBalanceBadStatus(t *testing.T) {
	server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := NewExplorerClient(server.URL, testOptions(), zap.NewNop())
	_, err := c.GetNativeBalance(context.Background(), "0xabc")
	var statusErr *UpstreamStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected UpstreamStatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", statusErr.StatusCode)
	}
}

func TestGetNativeBalanceTransportError(t *testing.T) {
	server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := server.URL
	server.Close()

	c := NewExplorerClient(url, testOptions(), zap.NewNop())
	if _, err := c.GetNativeBalance(context.Background(), "0xabc"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestGetTokenList(t *testing.T) {
	server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "tokenlist" {
			t.Errorf("unexpected action %q", r.URL.Query().Get("action"))
		}
		w.Write([]byte(`{"message":"OK","status":"1","result":[
			{"balance":"1000000","contractAddress":"0xusdc","decimals":"6","name":"USD Coin","symbol":"USDC","type":"ERC-20"},
			{"balance":"5","contractAddress":"0xnft","decimals":"","name":"Some NFT","symbol":"NFT","type":"ERC-721"},
			{"balance":"7","contractAddress":"0xnum","decimals":9,"name":"Numeric","symbol":"NUM","type":"ERC-20"},
			{"balance":"7","contractAddress":"0xnodec","name":"No Decimals","symbol":"NOD","type":"ERC-20"}
		]}`))
	})

	c := NewExplorerClient(server.URL, testOptions(), zap.NewNop())
	tokens, err := c.GetTokenList(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 4 {
		t.Fatalf("got %d tokens, want 4", len(tokens))
	}

	want := []struct {
		address  string
		symbol   string
		decimals int32
	}{
		{"0xusdc", "USDC", 6},
		{"0xnft", "NFT", 1},
		{"0xnum", "NUM", 9},
		{"0xnodec", "NOD", 1},
	}
	for i, w := range want {
		if tokens[i].Address != w.address || tokens[i].Symbol != w.symbol || tokens[i].Decimals != w.decimals {
			t.Errorf("tokens[%d] = %+v, want %+v", i, tokens[i], w)
		}
	}
	if tokens[0].Name != "USD Coin" {
		t.Errorf("tokens[0].Name = %q", tokens[0].Name)
	}
}

func TestGetTokenListEmptyIsValid(t *testing.T) {
	server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"No tokens found","result":[],"status":"0"}`))
	})

	c := NewExplorerClient(server.URL, testOptions(), zap.NewNop())
	tokens, err := c.GetTokenList(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("got %d tokens, want 0", len(tokens))
	}
}

func TestGetTokenListInvalidAddress(t *testing.T) {
	bodies := []string{
		`{"message":"Invalid address format","status":"0"}`,
		`{"message":"Invalid address format","result":null,"status":"0"}`,
		`{"message":"weird","result":"not a list","status":"0"}`,
	}
	for _, body := range bodies {
		server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})

		c := NewExplorerClient(server.URL, testOptions(), zap.NewNop())
		if _, err := c.GetTokenList(context.Background(), "bogus"); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("body %s: expected ErrInvalidAddress, got %v", body, err)
		}
	}
}

func TestGetTokenListMalformedJSON(t *testing.T) {
	server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	})

	c := NewExplorerClient(server.URL, testOptions(), zap.NewNop())
	_, err := c.GetTokenList(context.Background(), "0xabc")
	if err == nil || errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestGetTokenBalance(t *testing.T) {
	server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "tokenbalance" || q.Get("contractaddress") != "0xusdc" || q.Get("address") != "0xabc" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"message":"OK","result":"1000000","status":"1"}`))
	})

	c := NewExplorerClient(server.URL, testOptions(), zap.NewNop())
	got, err := c.GetTokenBalance(context.Background(), "0xusdc", "0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1000000" {
		t.Errorf("balance = %q", got)
	}
}

func TestRetriesOnTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"result":"42"}`))
	})

	c := NewExplorerClient(server.URL, testOptions(), zap.NewNop())
	got, err := c.GetTokenBalance(context.Background(), "0xusdc", "0xabc")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if got != "42" {
		t.Errorf("balance = %q", got)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	c := NewExplorerClient(server.URL, testOptions(), zap.NewNop())
	_, err := c.GetTokenBalance(context.Background(), "0xusdc", "0xabc")
	var statusErr *UpstreamStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 status error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3 (1 + 2 retries)", calls.Load())
	}
}

func TestNoRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := newExplorerServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	c := NewExplorerClient(server.URL, testOptions(), zap.NewNop())
	if _, err := c.GetTokenBalance(context.Background(), "0xusdc", "0xabc"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
