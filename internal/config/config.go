// Package config handles repocheck configuration using Viper.
//
// Configuration sources (in priority order):
//  1. Command-line flags (bound by the commands)
//  2. Environment variables (REPOCHECK_*)
//  3. Config file (~/.config/repocheck/config.yaml)
//  4. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultTimeout bounds each external command and bootstrap fetch.
	DefaultTimeout = 120 * time.Second
	// DefaultRetries is the default number of bootstrap fetch retries.
	DefaultRetries = 2
)

// Config holds the repocheck configuration.
type Config struct {
	v *viper.Viper
}

// Load reads configuration from all sources.
func Load() *Config {
	v := viper.New()

	v.SetDefault("verify.timeout", DefaultTimeout.String())
	v.SetDefault("verify.retries", DefaultRetries)
	v.SetDefault("verify.strict", false)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")

	home, err := os.UserHomeDir()
	if err == nil {
		configDir := filepath.Join(home, ".config", "repocheck")
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("REPOCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; anything else is worth a warning.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}

	return &Config{v: v}
}

// Timeout returns the configured command timeout.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.v.GetString("verify.timeout"))
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Retries returns the configured bootstrap retry count.
func (c *Config) Retries() int {
	n := c.v.GetInt("verify.retries")
	if n < 0 {
		return 0
	}
	return n
}

// Strict returns whether strict mode is on by default.
func (c *Config) Strict() bool {
	return c.v.GetBool("verify.strict")
}

// TelemetryEnabled returns whether OTLP tracing is enabled.
func (c *Config) TelemetryEnabled() bool {
	return c.v.GetBool("telemetry.enabled")
}

// TelemetryEndpoint returns the OTLP endpoint override.
func (c *Config) TelemetryEndpoint() string {
	return c.v.GetString("telemetry.endpoint")
}

// GetString returns a configuration value as string.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}
