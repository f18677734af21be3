package restapi

import (
	"bytes"
	_ "embed"
	"net/http"
	"strings"

	"token_portfolio/internal/app/port"
	"token_portfolio/internal/infrastructure/presenter"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
)

//go:embed templates/portfolio.html
var portfolioPage string

// PageHandler renders the address form and, once an address is submitted,
// the holdings table.
type PageHandler struct {
	portfolioService port.PortfolioService
	logger           port.Logger
	tpl              *pongo2.Template
}

// NewPageHandler compiles the page template.
func NewPageHandler(ps port.PortfolioService, l port.Logger) (*PageHandler, error) {
	tpl, err := pongo2.FromString(portfolioPage)
	if err != nil {
		return nil, err
	}
	return &PageHandler{portfolioService: ps, logger: l, tpl: tpl}, nil
}

// IndexHandler handles GET /?address=...
func (h *PageHandler) IndexHandler(c *gin.Context) {
	address := strings.TrimSpace(c.Query("address"))
	network := h.portfolioService.Network()

	data := pongo2.Context{
		"address":      address,
		"network_name": network.Name,
		"native":       network.NativeSymbol,
		"columns":      presenter.Columns,
	}

	if address != "" {
		result, err := h.portfolioService.GetPortfolio(c.Request.Context(), address)
		table := presenter.NewTable(result)
		data["table"] = table
		data["total_label"] = table.TotalLabel()
		data["aborted"] = err != nil
		data["messages"] = table.Messages
	}

	var page bytes.Buffer
	if err := h.tpl.ExecuteWriter(data, &page); err != nil {
		h.logger.Error("Failed to render page", "error", err)
		c.String(http.StatusInternalServerError, "failed to render page")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page.Bytes())
}
