package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/minboot/ats-web/internal/guard"
	"github.com/minboot/ats-web/internal/observability/metrics"
)

const defaultResolveWait = 2 * time.Second

// GuardConfig configures the route guard middleware.
type GuardConfig struct {
	Rules *guard.Rules
	// ResolveWait is how long a protected request waits for a pending session check
	// before the visitor is shown the waiting page.
	ResolveWait time.Duration
	// Pending renders the waiting page. A bare 202 is written when nil.
	Pending http.Handler
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Guard applies the route rules to every request. Only a Render decision reaches next;
// the snapshot the decision was made on is placed in the request context.
func Guard(cfg GuardConfig) func(http.Handler) http.Handler {
	if cfg.ResolveWait <= 0 {
		cfg.ResolveWait = defaultResolveWait
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, ok := VisitorFromContext(r.Context())
			if !ok {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			snap := v.Session.Current()
			decision := guard.Decision{Outcome: guard.RedirectHome, Location: guard.HomePath}
			if rule, matched := cfg.Rules.Match(r.URL.Path); matched {
				if rule.Access != guard.AccessPublic && !snap.Resolved() {
					snap = v.Session.WaitResolved(r.Context(), cfg.ResolveWait)
				}
				decision = guard.Decide(snap, rule, returnPath(r))
			}

			cfg.Metrics.RecordGuardDecision(decision.Outcome.String())
			if info := requestInfoFrom(r.Context()); info != nil {
				info.outcome = decision.Outcome.String()
			}

			switch decision.Outcome {
			case guard.Render:
				next.ServeHTTP(w, r.WithContext(setSnapshotInContext(r.Context(), snap)))
			case guard.Wait:
				writePending(w, r, cfg.Pending)
			default:
				if decision.Outcome == guard.Deny {
					cfg.Logger.InfoContext(r.Context(), "access denied",
						"visitor_id", v.ID, "path", r.URL.Path)
				}
				redirect(w, r, decision.Location)
			}
		})
	}
}

// returnPath is where a successful login should land. Form posts return to the page the
// form was on, since the post target itself cannot be navigated to.
func returnPath(r *http.Request) string {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return requestedPath(r)
	}
	if current := safeRedirectFromURL(r.Header.Get("Hx-Current-Url")); current != "" {
		return current
	}
	return safeRedirectFromURL(r.Header.Get("Referer"))
}

func writePending(w http.ResponseWriter, r *http.Request, pending http.Handler) {
	w.Header().Set("Cache-Control", "no-store")
	if IsHTMX(r) {
		HTMX(w).Trigger("session-pending", nil)
		w.Header().Set("Hx-Reswap", "none")
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if pending == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	pending.ServeHTTP(w, r)
}
