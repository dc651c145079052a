package config

import (
	"fmt"
	"time"
)

// ResilienceConfig guards outbound HTTP calls to flaky upstreams (the AI provider).
type ResilienceConfig struct {
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

type RetryConfig struct {
	Count       int           `koanf:"count" validate:"gte=0"`
	WaitTime    time.Duration `koanf:"waittime" validate:"required_unless=Count 0"`
	MaxWaitTime time.Duration `koanf:"maxwaittime" validate:"gtefield=WaitTime"`
}

type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures" validate:"gt=0"`
	ErrorRatePercent    int           `koanf:"errorratepercent" validate:"gte=0,lte=100"`
	HalfOpenRequests    uint32        `koanf:"halfopenrequests"`
	OpenTimeout         time.Duration `koanf:"opentimeout" validate:"gt=0"`
}

func (c *ResilienceConfig) String() string {
	return describe("Retry",
		"count", c.Retry.Count,
		"waittime", c.Retry.WaitTime,
		"maxwaittime", c.Retry.MaxWaitTime,
	) + describe("Circuit Breaker",
		"consecutivefailures", c.CircuitBreaker.ConsecutiveFailures,
		"errorratepercent", c.CircuitBreaker.ErrorRatePercent,
		"halfopenrequests", c.CircuitBreaker.HalfOpenRequests,
		"opentimeout", c.CircuitBreaker.OpenTimeout,
	)
}

// Validate defaults the half-open probe count to one request.
func (c *ResilienceConfig) Validate() error {
	if err := validateSection("resilience", c); err != nil {
		return err
	}
	if c.Retry.WaitTime < 0 {
		return fmt.Errorf("invalid resilience configuration: retry.waittime must not be negative")
	}
	if c.CircuitBreaker.HalfOpenRequests == 0 {
		c.CircuitBreaker.HalfOpenRequests = 1
	}
	return nil
}
