package main

import (
	"fmt"
	"time"

	"token_portfolio/internal/app/port"
	"token_portfolio/internal/app/service"
	"token_portfolio/internal/client"
	"token_portfolio/internal/domain/entity"
	"token_portfolio/internal/infrastructure/configloader"
	networkdefinition "token_portfolio/internal/infrastructure/network/definition"
	"token_portfolio/internal/pkg/logger"
	"token_portfolio/internal/pkg/metrics"

	"go.uber.org/zap"
)

// application holds the wired services shared by the CLI commands.
type application struct {
	cfg       *configloader.Config
	zapLogger *zap.Logger
	appLogger port.Logger
	networks  *networkdefinition.NetworkDefinitionProvider
	network   entity.NetworkDefinition
	portfolio *service.PortfolioServiceImpl
}

func newApplication(configPath string, logToStderr bool) (*application, error) {
	cfg, err := configloader.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	zapLogger := logger.Init(logger.Options{
		Level:       cfg.Logging.Level,
		File:        cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		Development: cfg.Logging.Development,
		Stderr:      logToStderr,
	})
	metrics.MustRegisterMetrics()

	appLogger := logger.NewSlogAdapter()
	appLogger.Info("Configuration loaded", "path", configPath, "network", cfg.Network.Identifier, "logLevel", cfg.Logging.Level)

	networks := networkdefinition.NewNetworkDefinitionProvider(appLogger)
	network, err := networks.Resolve(cfg.Network)
	if err != nil {
		return nil, err
	}

	requestOptions := func(timeoutMillis int64) client.RequestOptions {
		return client.RequestOptions{
			Timeout:              time.Duration(timeoutMillis) * time.Millisecond,
			MaxRetries:           cfg.HTTPClient.MaxRetries,
			RetryInitialInterval: time.Duration(cfg.HTTPClient.RetryInitialIntervalMillis) * time.Millisecond,
			MaxConnsPerHost:      cfg.HTTPClient.MaxConnsPerHost,
		}
	}

	explorer := client.NewExplorerClient(network.ExplorerAPIURL, requestOptions(cfg.Explorer.RequestTimeoutMillis), zapLogger)
	dexscreener := client.NewDEXScreenerClient(cfg.DEXScreener.BaseURL, requestOptions(cfg.DEXScreener.RequestTimeoutMillis), zapLogger)

	tokenPriceService := service.NewTokenPriceService(
		dexscreener,
		network,
		appLogger,
		time.Duration(cfg.TokenPriceSvc.CacheTTLSeconds)*time.Second,
	)

	portfolioService := service.NewPortfolioService(explorer, tokenPriceService, network, appLogger, service.PortfolioServiceOptions{
		CacheTTL:              time.Duration(cfg.PortfolioSvc.CacheTTLMinutes) * time.Minute,
		CacheCleanupInterval:  time.Duration(cfg.PortfolioSvc.CacheCleanupIntervalMinutes) * time.Minute,
		MaxConcurrentRequests: cfg.PortfolioSvc.MaxConcurrentRequests,
		RateLimit:             cfg.PortfolioSvc.RateLimit,
		BurstLimit:            cfg.PortfolioSvc.BurstLimit,
		PipelineTimeout:       time.Duration(cfg.PortfolioSvc.PipelineTimeoutMillis) * time.Millisecond,
	})
	appLogger.Info("PortfolioService initialized",
		"network", network.Name,
		"explorer", network.ExplorerAPIURL,
		"maxConcurrentRequests", cfg.PortfolioSvc.MaxConcurrentRequests)

	return &application{
		cfg:       cfg,
		zapLogger: zapLogger,
		appLogger: appLogger,
		networks:  networks,
		network:   network,
		portfolio: portfolioService,
	}, nil
}

func (a *application) close() {
	_ = a.zapLogger.Sync()
}
