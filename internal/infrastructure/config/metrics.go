package config

import (
	"net"
	"strconv"
)

// MetricsConfig controls the Prometheus endpoint served by the daemon.
// Planner and mediator collectors are only registered when Enabled is set.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Host    string `mapstructure:"host" yaml:"host"`
	Port    int    `mapstructure:"port" yaml:"port" validate:"omitempty,min=1024,max=65535"`
	Path    string `mapstructure:"path" yaml:"path" validate:"omitempty,startswith=/"`
}

// Endpoint renders the scrape URL, e.g. http://localhost:9090/metrics
func (m MetricsConfig) Endpoint() string {
	return "http://" + net.JoinHostPort(m.Host, strconv.Itoa(m.Port)) + m.Path
}
