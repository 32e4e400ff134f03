package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"
)

// BackendProxyConfig configures the /api/ pass-through to the backend.
type BackendProxyConfig struct {
	Target *url.URL
	// CookieDomain replaces the Domain attribute of backend cookies. Empty makes them
	// host-only cookies of this server.
	CookieDomain string
	Timeout      time.Duration
	Logger       *slog.Logger
}

// NewBackendProxy forwards requests unchanged to the backend and rewrites the domain of
// the cookies it sets, so a browser talking to this server keeps the backend session.
func NewBackendProxy(cfg BackendProxyConfig) (http.Handler, error) {
	if cfg.Target == nil || cfg.Target.Scheme == "" || cfg.Target.Host == "" {
		return nil, errors.New("backend proxy: target must be an absolute URL")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Timeout > 0 {
		transport.ResponseHeaderTimeout = cfg.Timeout
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(cfg.Target)
			pr.SetXForwarded()
		},
		Transport: transport,
		ModifyResponse: func(resp *http.Response) error {
			rewriteCookieDomain(resp.Header, cfg.CookieDomain)
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.WarnContext(r.Context(), "backend proxy failed",
				"path", r.URL.Path, slog.Any("error", err))
			WriteJSON(w, http.StatusBadGateway, map[string]string{
				"error":   "transport",
				"message": MsgTryAgainLater,
			})
		},
	}
	return rp, nil
}

func rewriteCookieDomain(h http.Header, domain string) {
	lines := h.Values("Set-Cookie")
	if len(lines) == 0 {
		return
	}
	h.Del("Set-Cookie")
	for _, line := range lines {
		c, err := http.ParseSetCookie(line)
		if err != nil {
			// Pass through what cannot be parsed rather than dropping the session.
			h.Add("Set-Cookie", line)
			continue
		}
		c.Domain = domain
		if v := c.String(); v != "" {
			h.Add("Set-Cookie", v)
		} else {
			h.Add("Set-Cookie", line)
		}
	}
}

// ParseBackendURL validates a backend base URL from configuration.
func ParseBackendURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("backend url %q: missing host", raw)
	}
	return u, nil
}
