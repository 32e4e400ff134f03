package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	atsweb "github.com/minboot/ats-web"
	"github.com/minboot/ats-web/internal/guard"
	"github.com/minboot/ats-web/internal/observability/metrics"
	"github.com/minboot/ats-web/internal/session"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	UI       *UIHandlers
	Sessions *session.Manager
	Rules    *guard.Rules

	Visitor     VisitorConfig
	CSRF        CSRFConfig
	ResolveWait time.Duration

	Metrics *metrics.Collector
	// MetricsHandler is served at MetricsPath when both are set.
	MetricsHandler http.Handler
	MetricsPath    string

	Compression CompressionConfig

	// Proxy, when set, receives every /api/ request.
	Proxy  http.Handler
	Health HealthHandlers

	IsDev  bool
	Logger *slog.Logger
}

// NewRouter wires the screens behind the visitor, CSRF and guard middleware.
// Static assets, health, metrics and the backend proxy bypass the guard.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := http.NewServeMux()
	registerScreenRoutes(app, services.UI)

	guarded := Guard(GuardConfig{
		Rules:       services.Rules,
		ResolveWait: services.ResolveWait,
		Pending:     http.HandlerFunc(services.UI.SessionPending),
		Metrics:     services.Metrics,
		Logger:      logger,
	})(app)
	withCSRF := CSRFProtection(services.CSRF)(guarded)
	appChain := Visitors(services.Sessions, services.Visitor, logger)(withCSRF)

	root := http.NewServeMux()
	root.Handle("GET /static/", staticHandler(services.IsDev))
	root.HandleFunc("GET /healthz", services.Health.Healthz)
	if services.MetricsHandler != nil && services.MetricsPath != "" {
		root.Handle("GET "+services.MetricsPath, services.MetricsHandler)
	}
	if services.Proxy != nil {
		root.Handle("/api/", services.Proxy)
	}
	root.Handle("/", appChain)

	var h http.Handler = root
	if compression := services.Compression; !compression.Disabled {
		if compression.Logger == nil {
			compression.Logger = logger
		}
		h = Compression(compression)(h)
	}
	return Recover(logger)(Logging(logger)(SecurityHeaders(h)))
}

func registerScreenRoutes(mux *http.ServeMux, h *UIHandlers) {
	mux.HandleFunc("GET /{$}", h.BrowseJobs)
	mux.HandleFunc("GET /jobs", h.BrowseJobs)
	mux.HandleFunc("GET /jobs/{id}", h.JobDetail)

	mux.HandleFunc("GET /jobs/new", h.NewJobForm)
	mux.HandleFunc("POST /jobs/new", h.SubmitJobForm)
	mux.HandleFunc("GET /jobs/{id}/edit", h.EditJobForm)
	mux.HandleFunc("POST /jobs/{id}/edit", h.SubmitJobForm)
	mux.HandleFunc("GET /jobs/manage", h.ManageJobs)
	mux.HandleFunc("POST /jobs/{id}/status", h.ChangeJobStatus)
	mux.HandleFunc("POST /jobs/{id}/delete", h.DeleteJob)

	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /signup", h.SignupPage)
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("GET /signup/email-check", h.EmailCheck)
	mux.HandleFunc("GET /reset-password", h.ResetPasswordPage)
	mux.HandleFunc("POST /reset-password", h.ResetPassword)

	mux.HandleFunc("GET /profile", h.Profile)
	mux.HandleFunc("POST /profile", h.UpdateProfile)
	mux.HandleFunc("GET /withdraw", h.WithdrawPage)
	mux.HandleFunc("POST /withdraw", h.Withdraw)
	mux.HandleFunc("POST /chatbot/ask", h.AskChatbot)

	mux.HandleFunc("GET /access-denied", h.AccessDenied)
	mux.HandleFunc("GET /session/pending", h.SessionPending)
}

// TemplateFS returns the page templates: from disk in dev mode for hot reloading,
// otherwise from the embedded copy.
func TemplateFS(isDev bool, logger *slog.Logger) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(atsweb.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		logger.Warn("embedded templates unavailable; falling back to disk", slog.Any("error", err))
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticHandler serves /static/* from disk in dev mode, otherwise from the embedded FS.
func staticHandler(isDev bool) http.Handler {
	var fsys http.FileSystem = http.Dir("frontend/static")
	if !isDev {
		if sub, err := fs.Sub(atsweb.StaticFS, "frontend/static"); err == nil {
			fsys = http.FS(sub)
		}
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(fsys)), isDev)
}

// staticWithCacheHeaders lets browsers cache assets briefly in production and never in dev.
func staticWithCacheHeaders(handler http.Handler, isDev bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		handler.ServeHTTP(w, r)
	})
}
