package config

import "time"

// NATSConfig configures the JetStream connection order events are published on.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Stream  string        `koanf:"stream" validate:"required,alphanum"`
}

func (c *NATSConfig) String() string {
	return describe("NATS", "enabled", c.Enabled, "url", c.Url, "timeout", c.Timeout, "stream", c.Stream)
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validateSection("nats", c)
}
