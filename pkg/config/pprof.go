package config

const defaultPProfAddr = "localhost:6060"

type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr" validate:"required,hostname_port"`
}

func (c *PProfConfig) String() string {
	return describe("PProf", "enabled", c.Enabled, "address", c.Addr)
}

// Validate falls back to a loopback address when pprof is enabled without one.
func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		c.Addr = defaultPProfAddr
	}
	return validateSection("pprof", c)
}
