package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"token_portfolio/internal/app/service"
	"token_portfolio/internal/client"
	"token_portfolio/internal/domain/entity"
	"token_portfolio/internal/infrastructure/configloader"
	networkdefinition "token_portfolio/internal/infrastructure/network/definition"
	"token_portfolio/internal/pkg/logger"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const goodAddress = "0x1111111111111111111111111111111111111111"

type fakePortfolioService struct {
	results     map[string]*entity.PortfolioResult
	errs        map[string]error
	invalidated []string
}

func (f *fakePortfolioService) GetPortfolio(ctx context.Context, walletAddress string) (*entity.PortfolioResult, error) {
	if err := f.errs[walletAddress]; err != nil {
		return f.results[walletAddress], err
	}
	return f.results[walletAddress], nil
}

func (f *fakePortfolioService) InvalidateCache(walletAddress string) bool {
	if _, ok := f.results[walletAddress]; !ok {
		return false
	}
	f.invalidated = append(f.invalidated, walletAddress)
	return true
}

func (f *fakePortfolioService) CachedAddresses() []string {
	return []string{goodAddress}
}

func (f *fakePortfolioService) Network() entity.NetworkDefinition {
	return entity.NetworkDefinition{Identifier: "pulsechain", Name: "PulseChain", NativeSymbol: "PLS"}
}

func abortedWith(message string) *entity.PortfolioResult {
	return &entity.PortfolioResult{
		Holdings:      []entity.TokenHolding{},
		TotalValueUSD: decimal.Zero,
		Errors:        []entity.PortfolioError{{Stage: entity.StageTokenList, Message: message}},
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakePortfolioService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	value := decimal.RequireFromString("0.0001")
	price := decimal.RequireFromString("0.00005")
	svc := &fakePortfolioService{
		results: map[string]*entity.PortfolioResult{
			goodAddress: {
				WalletAddress: goodAddress,
				Network:       "pulsechain",
				Holdings: []entity.TokenHolding{{
					Name:            "PulseChain",
					Symbol:          "PLS",
					ContractAddress: entity.NativeContractAddress,
					Decimals:        18,
					Balance:         decimal.NewFromInt(2),
					PriceUSD:        &price,
					ValueUSD:        &value,
				}},
				TotalValueUSD: value,
			},
			"bogus":    abortedWith(service.InvalidAddressMessage),
			"0xdown":   abortedWith("Failed to fetch token list: 503"),
			"<script>": abortedWith(service.InvalidAddressMessage),
		},
		errs: map[string]error{
			"bogus":    fmt.Errorf("token list: %w", client.ErrInvalidAddress),
			"0xdown":   &client.UpstreamStatusError{API: "explorer", StatusCode: 503},
			"<script>": fmt.Errorf("token list: %w", client.ErrInvalidAddress),
		},
	}

	page, err := NewPageHandler(svc, logger.Nop())
	if err != nil {
		t.Fatalf("NewPageHandler: %v", err)
	}
	router := SetupRouter(Handlers{
		Portfolio: NewPortfolioHandler(svc, logger.Nop()),
		Network:   NewNetworkHandler(networkdefinition.NewNetworkDefinitionProvider(logger.Nop()), svc),
		Page:      page,
	}, configloader.SwaggerConfig{}, zap.NewNop())
	return router, svc
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetPortfolioHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodGet, "/api/v1/portfolios/"+goodAddress)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("missing request ID header")
	}

	var resp struct {
		Data struct {
			Rows  []map[string]string `json:"rows"`
			Total string              `json:"total"`
		} `json:"data"`
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Rows) != 1 {
		t.Fatalf("rows = %v", resp.Data.Rows)
	}
	row := resp.Data.Rows[0]
	if row["Symbol"] != "PLS" || row["Balance"] != "2.0000" || row["Balance USD"] != "0.00" || row["Contract Address"] != "Native" {
		t.Errorf("row = %v", row)
	}
	if resp.Data.Total != "0.00" {
		t.Errorf("total = %q", resp.Data.Total)
	}
	if resp.StatusMessage != "Portfolio retrieved successfully." {
		t.Errorf("status_message = %q", resp.StatusMessage)
	}
}

func TestGetPortfolioHandlerErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		address    string
		wantStatus int
		wantMsg    string
	}{
		{"bogus", http.StatusUnprocessableEntity, service.InvalidAddressMessage},
		{"0xdown", http.StatusBadGateway, "Failed to fetch token list: 503"},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			w := serve(router, http.MethodGet, "/api/v1/portfolios/"+tt.address)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp APIPortfolioResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.StatusMessage != tt.wantMsg || resp.Data != nil {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestExportPortfolioHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodGet, "/api/v1/portfolios/"+goodAddress+"/export.xlsx")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if w.Header().Get("Content-Type") != xlsxContentType {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "portfolio-"+goodAddress+".xlsx") {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	f.Close()

	if w := serve(router, http.MethodGet, "/api/v1/portfolios/bogus/export.xlsx"); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid address export status = %d", w.Code)
	}
}

func TestInvalidateCacheHandler(t *testing.T) {
	router, svc := newTestRouter(t)

	if w := serve(router, http.MethodDelete, "/api/v1/portfolios/"+goodAddress+"/cache"); w.Code != http.StatusNoContent {
		t.Errorf("status = %d", w.Code)
	}
	if len(svc.invalidated) != 1 || svc.invalidated[0] != goodAddress {
		t.Errorf("invalidated = %v", svc.invalidated)
	}
	if w := serve(router, http.MethodDelete, "/api/v1/portfolios/0xnothing/cache"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestNetworksAndHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodGet, "/api/v1/networks")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var networks struct {
		Data   []entity.NetworkDefinition `json:"data"`
		Active string                     `json:"active"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &networks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if networks.Active != "pulsechain" || len(networks.Data) == 0 {
		t.Errorf("networks = %+v", networks)
	}

	w = serve(router, http.MethodGet, "/healthz")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"cachedWallets":1`) {
		t.Errorf("healthz = %d %s", w.Code, w.Body)
	}

	if w := serve(router, http.MethodGet, "/metrics"); w.Code != http.StatusOK {
		t.Errorf("metrics status = %d", w.Code)
	}
}

func TestIndexPage(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodGet, "/")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<form") {
		t.Fatalf("empty page = %d %s", w.Code, w.Body)
	}
	if strings.Contains(w.Body.String(), "<table>") {
		t.Error("no table expected before an address is submitted")
	}

	w = serve(router, http.MethodGet, "/?address="+goodAddress)
	body := w.Body.String()
	for _, want := range []string{"<table>", "Contract Address", "PLS", "2.0000", "Total Balance USD: $0.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	w = serve(router, http.MethodGet, "/?address=bogus")
	body = w.Body.String()
	if !strings.Contains(body, service.InvalidAddressMessage) || strings.Contains(body, "<table>") {
		t.Errorf("invalid address page:\n%s", body)
	}

	w = serve(router, http.MethodGet, "/?address=%3Cscript%3E")
	if strings.Contains(w.Body.String(), "<script>") {
		t.Error("address must be escaped")
	}
}

func TestIndexPageRenderFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &PageHandler{
		portfolioService: &fakePortfolioService{},
		logger:           logger.Nop(),
		tpl:              pongo2.Must(pongo2.FromString("<p>partial</p>{{ address() }}")),
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h.IndexHandler(c)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "partial") {
		t.Errorf("partial page leaked to the client: %q", w.Body.String())
	}
}
