package restapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"token_portfolio/internal/app/port"
	"token_portfolio/internal/app/service"
	"token_portfolio/internal/client"
	"token_portfolio/internal/domain/entity"
	"token_portfolio/internal/infrastructure/presenter"
	"token_portfolio/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PortfolioData is the payload of a portfolio lookup.
type PortfolioData struct {
	WalletAddress     string                `json:"walletAddress"`
	Network           string                `json:"network"`
	Holdings          []entity.TokenHolding `json:"holdings"`
	Rows              []presenter.Row       `json:"rows"`
	TotalValueUSD     decimal.Decimal       `json:"totalValueUSD"`
	Total             string                `json:"total"`
	MissingPriceCount int                   `json:"missingPriceCount"`
	TotalIsLowerBound bool                  `json:"totalIsLowerBound"`
	FetchedAt         time.Time             `json:"fetchedAt"`
}

// APIPortfolioResponse is the envelope of the portfolio endpoints.
type APIPortfolioResponse struct {
	Data          *PortfolioData          `json:"data,omitempty"`
	Errors        []entity.PortfolioError `json:"errors,omitempty"`
	StatusMessage string                  `json:"status_message"`
}

// PortfolioHandler handles the portfolio HTTP endpoints.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	logger           port.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(ps port.PortfolioService, l port.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: ps,
		logger:           l,
	}
}

// statusForError maps an aborted lookup to an HTTP status.
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, client.ErrInvalidAddress), errors.Is(err, service.ErrEmptyAddress):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// GetPortfolioHandler returns the priced holdings of one wallet.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	walletAddress := c.Param("walletAddress")

	result, err := h.portfolioService.GetPortfolio(c.Request.Context(), walletAddress)
	status := statusForError(err)
	if err != nil {
		h.logger.Warn("Portfolio lookup aborted", "address", walletAddress, "status", status, "error", err)
		c.JSON(status, APIPortfolioResponse{
			Errors:        result.Errors,
			StatusMessage: firstMessage(result, "Failed to retrieve portfolio."),
		})
		return
	}

	table := presenter.NewTable(result)
	response := APIPortfolioResponse{
		Data: &PortfolioData{
			WalletAddress:     result.WalletAddress,
			Network:           result.Network,
			Holdings:          result.Holdings,
			Rows:              table.Rows,
			TotalValueUSD:     result.TotalValueUSD,
			Total:             table.Total,
			MissingPriceCount: result.MissingPriceCount,
			TotalIsLowerBound: result.TotalIsLowerBound,
			FetchedAt:         result.FetchedAt,
		},
		Errors: result.Errors,
	}

	switch {
	case len(result.Errors) > 0:
		response.StatusMessage = "Portfolio retrieved. Some tokens encountered errors."
	case result.TotalIsLowerBound:
		response.StatusMessage = "Portfolio retrieved. Some prices are not available."
	default:
		response.StatusMessage = "Portfolio retrieved successfully."
	}

	c.JSON(http.StatusOK, response)
}

// ExportPortfolioHandler returns the holdings table as an XLSX workbook.
func (h *PortfolioHandler) ExportPortfolioHandler(c *gin.Context) {
	walletAddress := c.Param("walletAddress")

	result, err := h.portfolioService.GetPortfolio(c.Request.Context(), walletAddress)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, APIPortfolioResponse{
			Errors:        result.Errors,
			StatusMessage: firstMessage(result, "Failed to retrieve portfolio."),
		})
		return
	}

	var buf bytes.Buffer
	if err := presenter.WriteXLSX(&buf, presenter.NewTable(result)); err != nil {
		h.logger.Error("Failed to render workbook", "address", walletAddress, "error", err)
		c.JSON(http.StatusInternalServerError, APIPortfolioResponse{StatusMessage: "Failed to render workbook."})
		return
	}

	filename := fmt.Sprintf("portfolio-%s.xlsx", utils.NormalizeAddress(walletAddress))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// InvalidateCacheHandler drops the memoized portfolio of a wallet.
func (h *PortfolioHandler) InvalidateCacheHandler(c *gin.Context) {
	walletAddress := c.Param("walletAddress")
	if !h.portfolioService.InvalidateCache(walletAddress) {
		c.JSON(http.StatusNotFound, gin.H{"status_message": "No cached portfolio for this address."})
		return
	}
	c.Status(http.StatusNoContent)
}

func firstMessage(result *entity.PortfolioResult, fallback string) string {
	if result != nil && len(result.Errors) > 0 {
		return result.Errors[0].Message
	}
	return fallback
}
