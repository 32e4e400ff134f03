package httpx

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/domain/model"
	"github.com/minboot/ats-web/internal/guard"
	"github.com/minboot/ats-web/internal/observability/metrics"
	"github.com/minboot/ats-web/internal/session"
)

const errMsgFixBelow = "Please fix the errors below."

// refreshTimeout bounds the session re-check after the backend rejects a session.
const refreshTimeout = 5 * time.Second

// UIHandlers serves browser-facing routes. Backend calls go through the visitor's own
// client so each browser uses its own backend session.
type UIHandlers struct {
	T       *TemplateRenderer
	Metrics *metrics.Collector
	Limiter *LoginLimiter

	BrowsePageSize int
	ManagePageSize int

	IsDev  bool // Development mode flag for enhanced error reporting
	Logger *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *UIHandlers) browsePageSize() int {
	if h.BrowsePageSize > 0 {
		return h.BrowsePageSize
	}
	return model.BrowsePageSize
}

func (h *UIHandlers) managePageSize() int {
	if h.ManagePageSize > 0 {
		return h.ManagePageSize
	}
	return model.ManagePageSize
}

// visitor returns the request's visitor. Routes are always mounted behind Visitors.
func visitor(r *http.Request) *session.Visitor {
	v, ok := VisitorFromContext(r.Context())
	if !ok {
		panic("httpx: visitor missing from request context")
	}
	return v
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// basePageData constructs the common page data map from the guard's session snapshot.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	snap := SnapshotFromContext(r.Context())
	data := map[string]any{
		"Title":           meta.Title,
		"PageTitle":       meta.PageTitle,
		"CurrentPage":     meta.CurrentPage,
		"IsAuthenticated": snap.Authenticated(),
		"SessionPending":  !snap.Resolved(),
		"CanManageJobs":   false,
		"CurrentPath":     r.URL.Path,
	}
	if token := GetCSRFToken(r); token != "" {
		data["CSRFToken"] = token
	}
	if snap.Authenticated() {
		data["User"] = snap.Identity
		data["CanManageJobs"] = snap.Identity.HasAnyRole(domainauth.RoleAdmin, domainauth.RoleRecruiter)
	}
	if msg := noticeText(r.URL.Query().Get("notice")); msg != "" {
		data["Notice"] = msg
	}
	return data
}

// renderPage renders a full page, or for htmx requests the content plus an updated title.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any) {
	h.renderPageStatus(w, r, http.StatusOK, data)
}

// renderPageStatus is renderPage with a non-200 status.
func (h *UIHandlers) renderPageStatus(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	w.Header().Set("Cache-Control", "no-store")
	if status != http.StatusOK {
		w = &statusWriter{ResponseWriter: w, status: status}
	}

	if !WantsPartial(r) {
		if err := h.T.RenderFull(w, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	title, _ := data["Title"].(string)
	// Include a <title> element so htmx updates document.title on partial swaps
	if _, err := w.Write([]byte(`<title>` + html.EscapeString(title) + `</title>`)); err != nil {
		h.logger().Error("failed to write partial document title", "error", err)
		return
	}
	page, _ := data["CurrentPage"].(string)
	if err := h.T.t.ExecuteTemplate(w, ContentTemplateFor(page), data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
	}
}

// renderFragment renders one named template for an htmx swap.
func (h *UIHandlers) renderFragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Cache-Control", "no-store")
	if err := h.T.RenderNamed(w, name, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "fragment "+name)
	}
}

// statusWriter writes a fixed status with the first body byte, after the renderer has set
// its headers.
type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (s *statusWriter) WriteHeader(code int) {
	if s.wrote {
		return
	}
	s.wrote = true
	if code == http.StatusOK {
		code = s.status
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusWriter) Write(b []byte) (int, error) {
	if !s.wrote {
		s.WriteHeader(s.status)
	}
	return s.ResponseWriter.Write(b)
}

// handleFailure applies the screen error policy to a failed backend call. It returns true
// when the response has been written; otherwise the caller shows UserMessage(err) inline.
func (h *UIHandlers) handleFailure(w http.ResponseWriter, r *http.Request, err error) bool {
	switch classifyFailure(err) {
	case failSilent:
		h.logger().DebugContext(r.Context(), "request abandoned", "path", r.URL.Path)
		return true
	case failLogin:
		v := visitor(r)
		// The backend no longer accepts the session; re-check so the store agrees before
		// the login page reads it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), refreshTimeout)
		v.Session.Refresh(ctx)
		cancel()
		redirect(w, r, guard.LoginURL(returnPath(r)))
		return true
	case failDeny:
		redirect(w, r, guard.AccessDeniedPath)
		return true
	default:
		h.logger().WarnContext(r.Context(), "backend call failed",
			"path", r.URL.Path, slog.Any("error", err))
		return false
	}
}

// triggerToast sends a standardized HX-Trigger payload for toast notifications.
func triggerToast(w http.ResponseWriter, message, toastType string) {
	if w == nil || strings.TrimSpace(message) == "" {
		return
	}
	HTMX(w).Trigger("showToast", map[string]any{
		"message": message,
		"type":    strings.TrimSpace(toastType),
	})
}

// pathID parses a numeric path parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// optionalID parses an optional numeric form or query value.
func optionalID(raw string) *int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := w.Write([]byte(`<pre class="template-error">` +
			html.EscapeString(context+": "+err.Error()) + `</pre>`)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
