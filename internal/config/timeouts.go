package config

import (
	"os"
	"time"
)

// Timeouts holds the configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	HTTP   time.Duration // Per-request timeout for Hetzner Cloud, Robot and image factory calls
	Action time.Duration // Upper bound when waiting for Hetzner Cloud actions
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - TALHYBRID_TIMEOUT_HTTP (default: 30s)
//   - TALHYBRID_TIMEOUT_ACTION (default: 10m)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		HTTP:   parseDuration("TALHYBRID_TIMEOUT_HTTP", 30*time.Second),
		Action: parseDuration("TALHYBRID_TIMEOUT_ACTION", 10*time.Minute),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}
