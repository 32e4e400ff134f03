package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/minboot/ats-web/config"
	"github.com/minboot/ats-web/internal/adapters/memory"
	redisstore "github.com/minboot/ats-web/internal/adapters/redis"
	"github.com/minboot/ats-web/internal/guard"
	httpx "github.com/minboot/ats-web/internal/http"
	"github.com/minboot/ats-web/internal/observability/metrics"
	"github.com/minboot/ats-web/internal/ports"
	"github.com/minboot/ats-web/internal/security"
	"github.com/minboot/ats-web/internal/session"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions     *session.Manager
	SessionStore ports.SessionStore
	Rules        *guard.Rules
	Renderer     *httpx.TemplateRenderer
	Limiter      *httpx.LoginLimiter
	Proxy        http.Handler

	Registry *prometheus.Registry
	Metrics  *metrics.Collector
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	// RedisClient backs the session store when SESSION_STORE=redis.
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// BaseContext parents background session checks.
	BaseContext context.Context
}

// NewServices wires the session manager, route rules, renderer and observability.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry, collector := buildObservability(cfg.Observability)

	rules, err := buildRules(cfg.UI, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	renderer, err := httpx.NewTemplateRenderer(httpx.TemplateRendererConfig{
		TemplateFS: httpx.TemplateFS(cfg.IsDev, logger),
		Text:       security.NewTextRenderer(),
		Logger:     logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("load templates: %w", err)
	}

	store := newSessionStore(cfg.Session, deps.RedisClient, logger)
	sessions, err := session.NewManager(session.ManagerOptions{
		BackendURL:     cfg.Backend.URL,
		BackendTimeout: cfg.Backend.Timeout,
		Observer:       collector,
		Persist:        store,
		CheckTimeout:   cfg.Session.CheckTimeout,
		IdleTTL:        cfg.Session.IdleTTL,
		RecordTTL:      cfg.Session.TTL,
		Logger:         logger,
		Metrics:        collector,
		BaseContext:    deps.BaseContext,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create session manager: %w", err)
	}

	var proxy http.Handler
	if cfg.Backend.ProxyEnabled {
		target, err := httpx.ParseBackendURL(cfg.Backend.URL)
		if err != nil {
			return ServiceContainer{}, err
		}
		proxy, err = httpx.NewBackendProxy(httpx.BackendProxyConfig{
			Target:       target,
			CookieDomain: cfg.HTTP.CookieDomain,
			Timeout:      cfg.Backend.Timeout,
			Logger:       logger,
		})
		if err != nil {
			return ServiceContainer{}, err
		}
		logger.Info("backend proxy enabled", "target", target.Redacted())
	}

	return ServiceContainer{
		Sessions:     sessions,
		SessionStore: store,
		Rules:        rules,
		Renderer:     renderer,
		Limiter: httpx.NewLoginLimiter(httpx.LoginLimiterConfig{
			PerMinute: cfg.LoginLimit.PerMinute,
			Burst:     cfg.LoginLimit.Burst,
		}),
		Proxy:    proxy,
		Registry: registry,
		Metrics:  collector,
	}, nil
}

// buildObservability creates the metrics registry. The collector is nil when metrics are
// disabled; its methods are no-ops then.
func buildObservability(cfg config.ObservabilityConfig) (*prometheus.Registry, *metrics.Collector) {
	if !cfg.MetricsEnabled {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewCollector(reg)
}

func buildRules(cfg config.UIConfig, logger *slog.Logger) (*guard.Rules, error) {
	list := guard.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := guard.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		list = loaded
		logger.Info("route rules loaded", "file", cfg.RulesFile, "count", len(list))
	}
	rules, err := guard.NewRules(list)
	if err != nil {
		return nil, fmt.Errorf("compile route rules: %w", err)
	}
	return rules, nil
}

//nolint:ireturn // the store kind is chosen from configuration.
func newSessionStore(cfg config.SessionConfig, client redis.UniversalClient, logger *slog.Logger) ports.SessionStore {
	if cfg.Store == config.SessionStoreRedis && client != nil {
		logger.Info("visitor sessions persisted in redis")
		return redisstore.NewSessionStore(client)
	}
	if cfg.Store == config.SessionStoreRedis {
		logger.Warn("redis session store requested without a client; using memory")
	}
	return memory.NewSessionStore()
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Version  string
	Logger   *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// backgroundService describes a startable background component.
type backgroundService struct {
	name  string
	start func(context.Context)
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

func launchBackground(ctx context.Context, logger *slog.Logger, descriptor backgroundService) backgroundServiceHandle {
	done := make(chan struct{})
	go func() {
		defer close(done)
		descriptor.start(ctx)
	}()
	logger.InfoContext(ctx, "background service started", "service", descriptor.name)
	return backgroundServiceHandle{name: descriptor.name, done: done}
}

func buildBackgroundServices(services ServiceContainer) []backgroundService {
	var out []backgroundService
	if services.Sessions != nil {
		out = append(out, backgroundService{name: "visitor eviction", start: services.Sessions.Run})
	}
	if services.Limiter != nil {
		out = append(out, backgroundService{name: "login limiter sweep", start: services.Limiter.Run})
	}
	return out
}

// RunServicesWithShutdown starts the HTTP server and background sweepers and blocks
// until a shutdown signal is received or the server fails.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	serviceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Version:  cfg.Version,
		Logger:   logger,
		ErrCh:    errCh,
	})

	var backgrounds []backgroundServiceHandle
	for _, svc := range buildBackgroundServices(cfg.Services) {
		backgrounds = append(backgrounds, launchBackground(serviceCtx, logger, svc))
	}

	return waitForShutdown(shutdownConfig{
		ctx:             serviceCtx,
		cancel:          cancel,
		errCh:           errCh,
		httpServer:      server,
		shutdownTimeout: cfg.Config.HTTP.ShutdownTimeout,
		logger:          logger,
		backgrounds:     backgrounds,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx             context.Context
	cancel          context.CancelFunc
	errCh           <-chan error
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
	backgrounds     []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		return gracefulStop(cfg)
	case <-cfg.ctx.Done():
		cfg.logger.Info("context cancelled; shutting down services...")
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop drains the HTTP server first so in-flight requests can still use their
// sessions, then stops the sweepers.
func gracefulStop(cfg shutdownConfig) error {
	var stopErr error
	if cfg.httpServer != nil {
		timeout := cfg.shutdownTimeout
		if timeout <= 0 {
			timeout = shutdownWaitTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(cfg.ctx), timeout)
		defer cancel()
		stopErr = ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		})
	}

	cfg.cancel()
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}
	return stopErr
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
