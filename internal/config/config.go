// Package config holds the shop service configuration.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/abgdnv/shopmate/pkg/config"
	"github.com/abgdnv/shopmate/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	GrpcServer config.GrpcServerConfig `koanf:"grpc"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Redis      config.RedisConfig      `koanf:"redis"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Catalog    CatalogConfig           `koanf:"catalog"`
	AI         AIConfig                `koanf:"ai"`
	Recommend  RecommendConfig         `koanf:"recommend"`
}

// CatalogConfig points at the product catalog API.
type CatalogConfig struct {
	BaseURL    string        `koanf:"baseUrl"`
	Timeout    time.Duration `koanf:"timeout"`
	RetryCount int           `koanf:"retryCount"`
}

// AIConfig configures the Gemini provider. An empty API key disables the AI path.
type AIConfig struct {
	BaseURL string        `koanf:"baseUrl"`
	Model   string        `koanf:"model"`
	APIKey  string        `koanf:"apiKey"`
	Timeout time.Duration `koanf:"timeout"`
}

// Enabled reports whether an API key is configured.
func (c *AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// RecommendConfig tunes the recommendation engine.
type RecommendConfig struct {
	Timeout           time.Duration `koanf:"timeout"`
	SupplementPartial bool          `koanf:"supplementPartial"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.GrpcServer.String())

	b.WriteString("\n--- External Services ---\n")
	b.WriteString(fmt.Sprintf("  catalog.baseUrl: %s\n", c.Catalog.BaseURL))
	b.WriteString(fmt.Sprintf("  catalog.timeout: %s\n", c.Catalog.Timeout))
	b.WriteString(fmt.Sprintf("  catalog.retryCount: %d\n", c.Catalog.RetryCount))
	b.WriteString(fmt.Sprintf("  ai.baseUrl: %s\n", c.AI.BaseURL))
	b.WriteString(fmt.Sprintf("  ai.model: %s\n", c.AI.Model))
	b.WriteString(fmt.Sprintf("  ai.apiKey: %s\n", config.Mask(c.AI.APIKey)))
	b.WriteString(fmt.Sprintf("  ai.timeout: %s\n", c.AI.Timeout))
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Redis.String())

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Telemetry.String())

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  recommend.timeout: %s\n", c.Recommend.Timeout))
	b.WriteString(fmt.Sprintf("  recommend.supplementPartial: %t\n", c.Recommend.SupplementPartial))
	b.WriteString(c.Shutdown.String())

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.GrpcServer,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.Telemetry,
		&c.Nats,
		&c.Redis,
		&c.Resilience,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	if err := validateBaseURL("catalog.baseUrl", c.Catalog.BaseURL); err != nil {
		return err
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be greater than 0")
	}
	if c.Catalog.RetryCount < 0 {
		return fmt.Errorf("catalog.retryCount must not be negative")
	}

	if c.AI.Enabled() {
		if err := validateBaseURL("ai.baseUrl", c.AI.BaseURL); err != nil {
			return err
		}
		if c.AI.Model == "" {
			return fmt.Errorf("ai.model is not configured")
		}
		if c.AI.Timeout <= 0 {
			return fmt.Errorf("ai.timeout must be greater than 0")
		}
	}

	if c.Recommend.Timeout < 0 {
		return fmt.Errorf("recommend.timeout must not be negative")
	}
	return nil
}

func validateBaseURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is not configured", key)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not a valid URL: %q", key, raw)
	}
	return nil
}
