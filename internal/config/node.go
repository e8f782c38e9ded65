package config

import (
	"time"

	"gitlab.com/camfleet.net/internal/tcp/defs"
)

// NodeConfig collects the node process configuration. Controller host
// and ports come from the command line; the rest from the environment.
type NodeConfig struct {
	ImageDir          string
	CaptureBinary     string
	CaptureTimeout    time.Duration
	HeartbeatInterval time.Duration
	Registration      RetryPolicy
	AwsConfig         *AwsConfig
}

func NewNodeConfig() *NodeConfig {
	return &NodeConfig{
		ImageDir:          getEnv("IMAGE_DIR", "."),
		CaptureBinary:     getEnv("CAPTURE_BINARY", "libcamera-still"),
		CaptureTimeout:    getSecondsEnv("CAPTURE_TIMEOUT_SEC", 15*time.Second),
		HeartbeatInterval: getSecondsEnv("HEARTBEAT_INTERVAL_SEC", defs.HeartbeatInterval),
		Registration:      NewRegistrationRetryPolicy(),
		AwsConfig:         NewAwsConfig(),
	}
}
