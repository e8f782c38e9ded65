package config

import (
	"time"

	"gitlab.com/camfleet.net/internal/tcp/defs"
)

// ControllerConfig collects the controller process configuration.
type ControllerConfig struct {
	DiscoveryPort         int
	HTTPPort              int
	MaxConcurrentDispatch int
	DialTimeout           time.Duration
	IOTimeout             time.Duration
	PostgresConfig        *PostgresConfig
	JwtConfig             *JwtConfig
}

func NewControllerConfig() *ControllerConfig {
	return &ControllerConfig{
		DiscoveryPort:         getIntEnv("DISCOVERY_PORT", defs.DefaultDiscoveryPort),
		HTTPPort:              getIntEnv("HTTP_PORT", 8080),
		MaxConcurrentDispatch: getIntEnv("MAX_CONCURRENT_DISPATCH", 16),
		DialTimeout:           getSecondsEnv("DIAL_TIMEOUT_SEC", defs.DialTimeout),
		IOTimeout:             getSecondsEnv("IO_TIMEOUT_SEC", defs.IOTimeout),
		PostgresConfig:        NewPostgresConfig(),
		JwtConfig:             NewJwtConfig(),
	}
}
