package config

import (
	"log/slog"
	"strings"
)

// ObservabilityConfig groups logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       string `env:"LOG_LEVEL"       envDefault:"info"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsPath    string `env:"METRICS_PATH"    envDefault:"/metrics"`
}

// Sanitize normalises the metrics path and log level.
func (c *ObservabilityConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.MetricsPath = strings.TrimSpace(c.MetricsPath)
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		c.MetricsPath = "/" + c.MetricsPath
	}
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c ObservabilityConfig) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
