package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/spadequery/internal/config"
)

// ErrConfig marks failures caused by flags or configuration files.
var ErrConfig = errors.New("configuration error")

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPaths are .hcl/.yaml files or directories, applied in order.
	ConfigPaths []string
	// Overrides come from command-line flags and win over every file.
	Overrides *config.Overlay

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("%w: invalid log-format %q: must be 'text' or 'json'", ErrConfig, cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("%w: invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", ErrConfig, cfg.LogLevel)
	}

	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("%w: invalid healthcheck-port %d", ErrConfig, cfg.HealthcheckPort)
	}
	return &cfg, nil
}
