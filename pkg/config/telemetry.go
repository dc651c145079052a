package config

import "time"

// TelemetryConfig configures trace export. Disabled telemetry skips the exporter settings.
type TelemetryConfig struct {
	Enabled bool         `koanf:"enabled"`
	Traces  TracesConfig `koanf:"traces"`
}

type TracesConfig struct {
	OtlpHttp OtlpHttpConfig `koanf:"otlphttp"`
}

type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint" validate:"required,hostname_port"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

func (c *TelemetryConfig) String() string {
	return describe("Telemetry",
		"enabled", c.Enabled,
		"traces.otlphttp.endpoint", c.Traces.OtlpHttp.Endpoint,
		"traces.otlphttp.insecure", c.Traces.OtlpHttp.Insecure,
		"traces.otlphttp.timeout", c.Traces.OtlpHttp.Timeout,
	)
}

func (c *TelemetryConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validateSection("telemetry", c)
}
