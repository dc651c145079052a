package config

import "time"

// HTTPConfig configures the public HTTP listener.
type HTTPConfig struct {
	Port           int          `koanf:"port" validate:"min=1,max=65535"`
	MaxHeaderBytes int          `koanf:"maxHeaderBytes" validate:"gte=0"`
	Timeout        HTTPTimeouts `koanf:"timeout"`
}

type HTTPTimeouts struct {
	Read       time.Duration `koanf:"read" validate:"gt=0"`
	Write      time.Duration `koanf:"write" validate:"gt=0"`
	Idle       time.Duration `koanf:"idle" validate:"gt=0"`
	ReadHeader time.Duration `koanf:"readHeader" validate:"gt=0"`
}

func (c *HTTPConfig) String() string {
	return describe("HTTP Server",
		"port", c.Port,
		"maxHeaderBytes", c.MaxHeaderBytes,
		"timeout.read", c.Timeout.Read,
		"timeout.write", c.Timeout.Write,
		"timeout.idle", c.Timeout.Idle,
		"timeout.readHeader", c.Timeout.ReadHeader,
	)
}

func (c *HTTPConfig) Validate() error {
	return validateSection("server", c)
}
