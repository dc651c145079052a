package config

// GrpcServerConfig configures the gRPC listener that serves health checks.
type GrpcServerConfig struct {
	Enabled           bool   `koanf:"enabled"`
	Port              string `koanf:"port" validate:"required,numeric"`
	ReflectionEnabled bool   `koanf:"reflection"`
}

func (c *GrpcServerConfig) String() string {
	return describe("gRPC Server", "enabled", c.Enabled, "port", c.Port, "reflection", c.ReflectionEnabled)
}

func (c *GrpcServerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validateSection("grpc", c)
}
