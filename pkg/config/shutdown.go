package config

import "time"

const defaultShutdownTimeout = 15 * time.Second

// ShutdownConfig bounds how long in-flight requests may take once a stop signal arrives.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
}

func (c *ShutdownConfig) String() string {
	return describe("Shutdown", "timeout", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if err := validateSection("shutdown", c); err != nil {
		return err
	}
	if c.Timeout == 0 {
		c.Timeout = defaultShutdownTimeout
	}
	return nil
}
