// Package config defines service configuration structures and loading hooks.
//
// Conventions follow the rest of the project:
// - New() builds a Config carrying defaults.
// - Load() layers defaults, an optional YAML file, and environment variables.
// - External errors are wrapped via this package's sentinel kinds.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BindHost and BindPort configure the HTTP listen address.
	BindHost string `koanf:"bind_host"`
	BindPort int    `koanf:"bind_port"`

	// StallSeconds is how long the no-response scenario holds a request
	// open before emitting its body. Kept configurable so tests can use a
	// short duration.
	StallSeconds int `koanf:"stall_seconds"`

	// BodyLogLimit caps how many bytes of a POST body are read for
	// diagnostic logging.
	BodyLogLimit int `koanf:"body_log_limit"`

	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `koanf:"shutdown_timeout_seconds"`
}

// New creates a Config carrying the defaults the original deployment used:
// bind on all interfaces, port 5000, ten-minute stall.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		BindHost:               "0.0.0.0",
		BindPort:               5000,
		StallSeconds:           600,
		BodyLogLimit:           64 * 1024,
		ShutdownTimeoutSeconds: 10,
	}
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindHost, strconv.Itoa(c.BindPort))
}

// StallDuration returns the stall as a time.Duration.
func (c *Config) StallDuration() time.Duration {
	return time.Duration(c.StallSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown bound as a time.Duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
