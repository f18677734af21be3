package configloader

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations. Timeouts are in seconds.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"maxSizeMB"`
	MaxBackups  int    `yaml:"maxBackups"`
	Development bool   `yaml:"development"`
}

// NetworkConfig selects a built-in network preset and optionally overrides
// its explorer endpoint and wrapped-native contract.
type NetworkConfig struct {
	Identifier                string `yaml:"identifier"`
	ExplorerAPIURL            string `yaml:"explorerApiUrl"`
	WrappedNativeTokenAddress string `yaml:"wrappedNativeTokenAddress"`
}

// ExplorerConfig holds explorer API specific configurations.
type ExplorerConfig struct {
	RequestTimeoutMillis int64 `yaml:"requestTimeoutMillis"`
}

// DEXScreenerConfig holds DEXScreener API specific configurations.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// HTTPClientConfig is shared by the outbound API clients. A negative
// MaxRetries disables retries on HTTP 429.
type HTTPClientConfig struct {
	MaxRetries                 int   `yaml:"maxRetries"`
	RetryInitialIntervalMillis int64 `yaml:"retryInitialIntervalMillis"`
	MaxConnsPerHost            int   `yaml:"maxConnsPerHost"`
}

// TokenPriceServiceConfig holds configuration for the TokenPriceService.
// A zero CacheTTLSeconds disables the price cache.
type TokenPriceServiceConfig struct {
	CacheTTLSeconds int `yaml:"cacheTTLSeconds"`
}

// PortfolioServiceConfig holds configuration for the PortfolioService.
// A zero CacheTTLMinutes keeps memoized portfolios for the process lifetime.
type PortfolioServiceConfig struct {
	CacheTTLMinutes             int     `yaml:"cacheTTLMinutes"`
	CacheCleanupIntervalMinutes int     `yaml:"cacheCleanupIntervalMinutes"`
	MaxConcurrentRequests       int     `yaml:"maxConcurrentRequests"`
	RateLimit                   float64 `yaml:"rateLimit"`
	BurstLimit                  int     `yaml:"burstLimit"`
	PipelineTimeoutMillis       int64   `yaml:"pipelineTimeoutMillis"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SpecFile string `yaml:"specFile"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig            `yaml:"server"`
	Logging       LoggingConfig           `yaml:"logging"`
	Network       NetworkConfig           `yaml:"network"`
	Explorer      ExplorerConfig          `yaml:"explorer"`
	DEXScreener   DEXScreenerConfig       `yaml:"dexScreener"`
	HTTPClient    HTTPClientConfig        `yaml:"httpClient"`
	TokenPriceSvc TokenPriceServiceConfig `yaml:"tokenPriceService"`
	PortfolioSvc  PortfolioServiceConfig  `yaml:"portfolioService"`
	Swagger       SwaggerConfig           `yaml:"swagger"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
// A missing file is not an error: every field has a default.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("EXPLORER_BASE_URL"); v != "" {
		cfg.Network.ExplorerAPIURL = v
	}
	if v := os.Getenv("NETWORK"); v != "" {
		cfg.Network.Identifier = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	cfg.Server.Port = strings.TrimPrefix(cfg.Server.Port, ":")
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 120
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSizeMB <= 0 {
		cfg.Logging.MaxSizeMB = 50
	}
	if cfg.Logging.MaxBackups <= 0 {
		cfg.Logging.MaxBackups = 3
	}

	if cfg.Network.Identifier == "" {
		cfg.Network.Identifier = "pulsechain"
	}

	if cfg.Explorer.RequestTimeoutMillis <= 0 {
		cfg.Explorer.RequestTimeoutMillis = 15000
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
	}
	if cfg.DEXScreener.RequestTimeoutMillis <= 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
	}

	switch {
	case cfg.HTTPClient.MaxRetries < 0:
		cfg.HTTPClient.MaxRetries = 0
	case cfg.HTTPClient.MaxRetries == 0:
		cfg.HTTPClient.MaxRetries = 2
	}
	if cfg.HTTPClient.RetryInitialIntervalMillis <= 0 {
		cfg.HTTPClient.RetryInitialIntervalMillis = 500
	}
	if cfg.HTTPClient.MaxConnsPerHost <= 0 {
		cfg.HTTPClient.MaxConnsPerHost = 32
	}

	if cfg.TokenPriceSvc.CacheTTLSeconds < 0 {
		cfg.TokenPriceSvc.CacheTTLSeconds = 0
	}

	if cfg.PortfolioSvc.CacheTTLMinutes < 0 {
		cfg.PortfolioSvc.CacheTTLMinutes = 0
	}
	if cfg.PortfolioSvc.CacheCleanupIntervalMinutes <= 0 {
		cfg.PortfolioSvc.CacheCleanupIntervalMinutes = 10
	}
	if cfg.PortfolioSvc.MaxConcurrentRequests <= 0 {
		cfg.PortfolioSvc.MaxConcurrentRequests = 8
	}
	if cfg.PortfolioSvc.RateLimit <= 0 {
		cfg.PortfolioSvc.RateLimit = 10
	}
	if cfg.PortfolioSvc.BurstLimit <= 0 {
		cfg.PortfolioSvc.BurstLimit = cfg.PortfolioSvc.MaxConcurrentRequests
	}
	if cfg.PortfolioSvc.PipelineTimeoutMillis <= 0 {
		cfg.PortfolioSvc.PipelineTimeoutMillis = 120000
	}

	if cfg.Swagger.SpecFile == "" {
		cfg.Swagger.SpecFile = "./docs/swagger.yaml"
	}
}

// Validate reports configuration that cannot work even with defaults applied.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.DEXScreener.BaseURL, "http://") && !strings.HasPrefix(c.DEXScreener.BaseURL, "https://") {
		return fmt.Errorf("dexScreener.baseURL must be an http(s) URL, got %q", c.DEXScreener.BaseURL)
	}
	if u := c.Network.ExplorerAPIURL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return fmt.Errorf("network.explorerApiUrl must be an http(s) URL, got %q", u)
	}
	return nil
}
