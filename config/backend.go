package config

import (
	"strings"
	"time"
)

// BackendConfig points the web client at the ATS REST backend.
type BackendConfig struct {
	// URL is the backend origin, e.g. http://localhost:8081. Paths under /api are appended.
	URL string `env:"BACKEND_URL" envDefault:"http://localhost:8081"`

	// Timeout bounds a single backend request.
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`

	// ProxyEnabled forwards /api/* to the backend. Local development only.
	ProxyEnabled bool `env:"BACKEND_PROXY_ENABLED" envDefault:"false"`
}

// Sanitize trims the URL and clamps the timeout.
func (b *BackendConfig) Sanitize() {
	b.URL = strings.TrimRight(strings.TrimSpace(b.URL), "/")
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
}

// Validate requires an absolute backend URL.
func (b *BackendConfig) Validate() error {
	return validateAbsoluteURL("BACKEND_URL", b.URL)
}
