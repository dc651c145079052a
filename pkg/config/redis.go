package config

import (
	"fmt"
	"time"
)

// RedisConfig configures the catalog cache. URL takes precedence over Address.
type RedisConfig struct {
	Enabled  bool          `koanf:"enabled"`
	URL      string        `koanf:"url" validate:"omitempty,url"`
	Address  string        `koanf:"address" validate:"omitempty,hostname_port"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db" validate:"gte=0"`
	TTL      time.Duration `koanf:"ttl" validate:"gt=0"`
	Timeout  time.Duration `koanf:"timeout" validate:"gt=0"`
}

func (c *RedisConfig) String() string {
	url := ""
	if c.URL != "" {
		url = Mask(c.URL)
	}
	return describe("Redis",
		"enabled", c.Enabled,
		"url", url,
		"address", c.Address,
		"password", Mask(c.Password),
		"db", c.DB,
		"ttl", c.TTL,
		"timeout", c.Timeout,
	)
}

func (c *RedisConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.URL == "" && c.Address == "" {
		return fmt.Errorf("redis url or address is required")
	}
	return validateSection("redis", c)
}
