package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - http.go: HTTP server configuration
//   - backend.go: ATS backend connection
//   - session.go: visitor sessions, persistence and login throttling
//   - ui.go: page sizes and route rules
//   - observability.go: logging and metrics
type AppConfig struct {
	// IsDev controls development mode behavior (template hot reloading).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	HTTP          HTTPConfig
	Backend       BackendConfig
	Session       SessionConfig
	Redis         RedisConfig `envPrefix:"REDIS_"`
	LoginLimit    LoginLimitConfig
	UI            UIConfig
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Backend.Sanitize()
	c.Session.Sanitize()
	c.LoginLimit.Sanitize()
	c.UI.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// Validate reports configuration that cannot be corrected by Sanitize.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.Backend.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Session.Store == SessionStoreRedis && strings.TrimSpace(c.Redis.URI) == "" &&
		!c.Redis.UseCluster && !c.Redis.UseSentinel {
		errs = append(errs, errors.New("SESSION_STORE=redis requires REDIS_URI"))
	}
	return errors.Join(errs...)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

func validateAbsoluteURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}
