package restapi

import (
	"net/http"

	"token_portfolio/internal/app/port"

	"github.com/gin-gonic/gin"
)

// NetworkHandler serves the built-in network presets.
type NetworkHandler struct {
	provider         port.NetworkDefinitionProvider
	portfolioService port.PortfolioService
}

// NewNetworkHandler creates a new NetworkHandler.
func NewNetworkHandler(np port.NetworkDefinitionProvider, ps port.PortfolioService) *NetworkHandler {
	return &NetworkHandler{provider: np, portfolioService: ps}
}

// ListNetworksHandler lists every preset and marks the one being queried.
func (h *NetworkHandler) ListNetworksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":   h.provider.GetAllNetworkDefinitions(),
		"active": h.portfolioService.Network().Identifier,
	})
}

// HealthHandler reports liveness along with the memo cache size.
func (h *NetworkHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"network":       h.portfolioService.Network().Identifier,
		"cachedWallets": len(h.portfolioService.CachedAddresses()),
	})
}
