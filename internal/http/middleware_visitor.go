package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/minboot/ats-web/internal/session"
)

// VisitorConfig configures the visitor cookie.
type VisitorConfig struct {
	CookieName   string
	CookieDomain string
	Secure       bool
	TTL          time.Duration
}

// Visitors resolves the visitor for each request from its cookie and attaches it to the
// request context. A new cookie is issued when the visitor is new or was forgotten.
func Visitors(m *session.Manager, cfg VisitorConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "ats_visitor"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				id = c.Value
			}
			v, issued, err := m.Visitor(r.Context(), id)
			if err != nil {
				logger.ErrorContext(r.Context(), "resolve visitor failed", slog.Any("error", err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if issued {
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    v.ID,
					Path:     "/",
					Domain:   cfg.CookieDomain,
					HttpOnly: true,
					Secure:   cfg.Secure || isSecureRequest(r),
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(cfg.TTL.Seconds()),
				})
			}
			if info := requestInfoFrom(r.Context()); info != nil {
				info.visitorID = v.ID
			}
			next.ServeHTTP(w, r.WithContext(SetVisitorInContext(r.Context(), v)))
		})
	}
}
