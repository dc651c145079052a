package config

import "strings"

type LogConfig struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

func (c *LogConfig) String() string {
	return describe("Log", "level", c.Level)
}

// Validate lower-cases the level; empty means info.
func (c *LogConfig) Validate() error {
	c.Level = strings.ToLower(c.Level)
	return validateSection("log", c)
}
