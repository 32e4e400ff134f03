package config

import (
	"log/slog"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Backend.URL != "http://localhost:8081" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Session.Store != SessionStoreMemory {
		t.Errorf("Session.Store = %q", cfg.Session.Store)
	}
	if cfg.Session.ResolveWait != 2*time.Second {
		t.Errorf("Session.ResolveWait = %v", cfg.Session.ResolveWait)
	}
	if cfg.UI.BrowsePageSize != 9 || cfg.UI.ManagePageSize != 100 {
		t.Errorf("page sizes = %d/%d", cfg.UI.BrowsePageSize, cfg.UI.ManagePageSize)
	}
	if cfg.Observability.MetricsPath != "/metrics" {
		t.Errorf("MetricsPath = %q", cfg.Observability.MetricsPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestParseFromEnvironment(t *testing.T) {
	var cfg AppConfig
	err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{
		"BACKEND_URL":           " https://ats.example.com/ ",
		"BACKEND_PROXY_ENABLED": "true",
		"SESSION_STORE":         "REDIS",
		"REDIS_URI":             "redis://cache:6379/2",
		"SESSION_IDLE_TTL":      "5s",
		"UI_BROWSE_PAGE_SIZE":   "1000",
		"LOGIN_RATE_PER_MINUTE": "0",
		"METRICS_PATH":          "internal/metrics",
		"LOG_LEVEL":             "DEBUG",
	}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.Backend.URL != "https://ats.example.com" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if !cfg.Backend.ProxyEnabled {
		t.Error("ProxyEnabled = false")
	}
	if cfg.Session.Store != SessionStoreRedis {
		t.Errorf("Session.Store = %q", cfg.Session.Store)
	}
	if cfg.Redis.URI != "redis://cache:6379/2" {
		t.Errorf("Redis.URI = %q", cfg.Redis.URI)
	}
	if cfg.Session.IdleTTL != time.Minute {
		t.Errorf("IdleTTL = %v, want clamp to 1m", cfg.Session.IdleTTL)
	}
	if cfg.UI.BrowsePageSize != 200 {
		t.Errorf("BrowsePageSize = %d, want clamp to 200", cfg.UI.BrowsePageSize)
	}
	if cfg.LoginLimit.PerMinute != 10 {
		t.Errorf("LoginLimit.PerMinute = %d", cfg.LoginLimit.PerMinute)
	}
	if cfg.Observability.MetricsPath != "/internal/metrics" {
		t.Errorf("MetricsPath = %q", cfg.Observability.MetricsPath)
	}
	if cfg.Observability.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v", cfg.Observability.Level())
	}
}

func TestSessionStoreFallsBackToMemory(t *testing.T) {
	s := SessionConfig{Store: "etcd"}
	s.Sanitize()
	if s.Store != SessionStoreMemory {
		t.Errorf("Store = %q, want memory", s.Store)
	}
	if s.CookieName != "ats_visitor" {
		t.Errorf("CookieName = %q", s.CookieName)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AppConfig
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  AppConfig{Backend: BackendConfig{URL: "http://backend:8080"}},
		},
		{
			name:    "relative backend",
			cfg:     AppConfig{Backend: BackendConfig{URL: "backend:8080/api"}},
			wantErr: true,
		},
		{
			name:    "ftp backend",
			cfg:     AppConfig{Backend: BackendConfig{URL: "ftp://backend"}},
			wantErr: true,
		},
		{
			name: "redis without uri",
			cfg: AppConfig{
				Backend: BackendConfig{URL: "http://backend"},
				Session: SessionConfig{Store: SessionStoreRedis},
			},
			wantErr: true,
		},
		{
			name: "redis cluster without uri",
			cfg: AppConfig{
				Backend: BackendConfig{URL: "http://backend"},
				Session: SessionConfig{Store: SessionStoreRedis},
				Redis:   RedisConfig{UseCluster: true, ClusterNodes: []string{"a:1"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPConfigSanitize(t *testing.T) {
	h := HTTPConfig{CompressionLevel: 42}
	h.Sanitize()
	if h.CompressionLevel != 9 {
		t.Errorf("CompressionLevel = %d", h.CompressionLevel)
	}
	if h.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", h.ShutdownTimeout)
	}
}

func TestDetectDevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	var cfg AppConfig
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Error("IsDev = false with NODE_ENV=development")
	}
}
