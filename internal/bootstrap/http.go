package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/minboot/ats-web/config"
	httpx "github.com/minboot/ats-web/internal/http"
	"github.com/minboot/ats-web/internal/observability/metrics"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Version  string
	Logger   *slog.Logger
	// ErrCh receives the listener error if the server stops unexpectedly.
	ErrCh chan<- error
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := httpx.NewRouter(BuildRouterServices(appCfg, cfg.Services, cfg.Version, logger))
	return startServer(logger, handler, appCfg.HTTP.Addr, cfg.ErrCh)
}

// BuildRouterServices maps configuration and services onto the router's dependencies.
func BuildRouterServices(cfg *config.AppConfig, services ServiceContainer, version string, logger *slog.Logger) httpx.RouterServices {
	rs := httpx.RouterServices{
		UI: &httpx.UIHandlers{
			T:              services.Renderer,
			Metrics:        services.Metrics,
			Limiter:        services.Limiter,
			BrowsePageSize: cfg.UI.BrowsePageSize,
			ManagePageSize: cfg.UI.ManagePageSize,
			IsDev:          cfg.IsDev,
			Logger:         logger,
		},
		Sessions: services.Sessions,
		Rules:    services.Rules,
		Visitor: httpx.VisitorConfig{
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.HTTP.CookieDomain,
			Secure:       cfg.HTTP.SecureCookies,
			TTL:          cfg.Session.TTL,
		},
		CSRF: httpx.CSRFConfig{
			CookieDomain: cfg.HTTP.CookieDomain,
			Secure:       cfg.HTTP.SecureCookies,
		},
		ResolveWait: cfg.Session.ResolveWait,
		Metrics:     services.Metrics,
		Compression: httpx.CompressionConfig{
			Level:    cfg.HTTP.CompressionLevel,
			Disabled: !cfg.HTTP.CompressionEnabled,
		},
		Proxy:  services.Proxy,
		Health: httpx.HealthHandlers{Started: time.Now(), Version: version},
		IsDev:  cfg.IsDev,
		Logger: logger,
	}
	if services.Registry != nil {
		rs.MetricsHandler = metrics.Handler(services.Registry)
		rs.MetricsPath = cfg.Observability.MetricsPath
	}
	return rs
}

func startServer(logger *slog.Logger, handler http.Handler, addr string, errCh chan<- error) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			if errCh != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	if err := cfg.Server.Shutdown(ctx); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
