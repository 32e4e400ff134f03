package httpx

import (
	"net/http"
	"time"
)

// AccessDenied explains that the signed-in visitor lacks the role for a page.
func (h *UIHandlers) AccessDenied(w http.ResponseWriter, r *http.Request) {
	data := NewTemplateData(r, PageMeta{Title: "Access denied", PageTitle: "Access denied", CurrentPage: PageAccessDenied}).
		With("Message", MsgAccessDenied).
		Build()
	h.renderPageStatus(w, r, http.StatusForbidden, data)
}

// SessionPending renders the neutral waiting page shown while the session check is still
// running. The page reloads the requested path shortly.
func (h *UIHandlers) SessionPending(w http.ResponseWriter, r *http.Request) {
	from := returnPath(r)
	if r.URL.Path == "/session/pending" {
		from = safeRedirectPath(r.URL.Query().Get("from"))
	}
	data := NewTemplateData(r, PageMeta{Title: "One moment", PageTitle: "Checking your session", CurrentPage: PageSessionPending}).
		With("From", orHome(from)).
		With("RefreshSeconds", 1).
		Build()
	w.Header().Set("Retry-After", "1")
	h.renderPageStatus(w, r, http.StatusAccepted, data)
}

// HealthHandlers serves the liveness endpoint.
type HealthHandlers struct {
	Started time.Time
	Version string
}

// Healthz reports liveness. It does not call the backend.
func (h HealthHandlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.Version != "" {
		body["version"] = h.Version
	}
	if !h.Started.IsZero() {
		body["uptime_seconds"] = int64(time.Since(h.Started).Seconds())
	}
	WriteJSON(w, http.StatusOK, body)
}
