package restapi

import (
	"time"

	"token_portfolio/internal/infrastructure/configloader"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Portfolio *PortfolioHandler
	Network   *NetworkHandler
	Page      *PageHandler
}

// SetupRouter configures and returns the gin engine.
func SetupRouter(h Handlers, swagger configloader.SwaggerConfig, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log.Named("http")))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders:   []string{requestIDHeader, "Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/", h.Page.IndexHandler)
	router.GET("/healthz", h.Network.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/networks", h.Network.ListNetworksHandler)
		v1.GET("/portfolios/:walletAddress", h.Portfolio.GetPortfolioHandler)
		v1.GET("/portfolios/:walletAddress/export.xlsx", h.Portfolio.ExportPortfolioHandler)
		v1.DELETE("/portfolios/:walletAddress/cache", h.Portfolio.InvalidateCacheHandler)
	}

	if swagger.Enabled {
		router.StaticFile("/docs/swagger.yaml", swagger.SpecFile)
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.yaml")))
	}

	return router
}
