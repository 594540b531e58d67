package config

import "time"

// DaemonConfig holds planner daemon configuration
type DaemonConfig struct {
	// Unix socket path the gRPC server listens on
	SocketPath string `mapstructure:"socket_path" yaml:"socket_path" validate:"required"`

	// PID file guarding against a second daemon on the same socket
	PIDFile string `mapstructure:"pid_file" yaml:"pid_file" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required"`

	// Sustained planning requests per second accepted by the daemon
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gt=0"`

	// Burst of requests allowed above the sustained rate
	Burst int `mapstructure:"burst" yaml:"burst" validate:"min=1"`
}
