package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/minboot/ats-web/internal/guard"
	"github.com/minboot/ats-web/internal/observability/metrics"
	"github.com/minboot/ats-web/internal/security"
	"github.com/minboot/ats-web/internal/session"
	"github.com/minboot/ats-web/internal/testutil"
)

// RequireTemplateRenderer creates a TemplateRenderer for tests, skipping the test if templates are not available.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Text:       security.NewTextRenderer(),
		Now:        func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local) },
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
		return nil
	}
	return tr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testApp is the full router in front of a fake backend.
type testApp struct {
	ATS      *testutil.FakeATS
	Sessions *session.Manager
	Registry *prometheus.Registry
	Metrics  *metrics.Collector
	Server   *httptest.Server
}

func newTestApp(t *testing.T, opts ...func(*RouterServices)) *testApp {
	t.Helper()
	tr := RequireTemplateRenderer(t)
	ats := testutil.NewFakeATS(t)

	reg := prometheus.NewRegistry()
	m := metrics.NewCollector(reg)
	mgr, err := session.NewManager(session.ManagerOptions{
		BackendURL:     ats.URL(),
		BackendTimeout: 5 * time.Second,
		CheckTimeout:   5 * time.Second,
		Observer:       m,
		Metrics:        m,
		Logger:         discardLogger(),
	})
	require.NoError(t, err)

	services := RouterServices{
		UI: &UIHandlers{
			T:       tr,
			Metrics: m,
			Limiter: NewLoginLimiter(LoginLimiterConfig{PerMinute: 60, Burst: 10}),
			Logger:  discardLogger(),
		},
		Sessions:    mgr,
		Rules:       guard.MustDefault(),
		ResolveWait: 2 * time.Second,
		Metrics:     m,
		Health:      HealthHandlers{Version: "test"},
		Logger:      discardLogger(),
	}
	for _, o := range opts {
		o(&services)
	}

	srv := httptest.NewServer(NewRouter(services))
	t.Cleanup(srv.Close)
	return &testApp{ATS: ats, Sessions: mgr, Registry: reg, Metrics: m, Server: srv}
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t      *testing.T
	base   *url.URL
	client *http.Client
}

func (a *testApp) newBrowser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	base, err := url.Parse(a.Server.URL)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: base,
		client: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	Status int
	Header http.Header
	Body   string
}

func (b *browser) do(req *http.Request) page {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{Status: resp.StatusCode, Header: resp.Header, Body: string(body)}
}

func (b *browser) request(method, path string, body io.Reader, headers map[string]string) *http.Request {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base.String()+path, body)
	require.NoError(b.t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func (b *browser) get(path string) page {
	b.t.Helper()
	return b.do(b.request(http.MethodGet, path, nil, nil))
}

// htmxGet issues a request the way htmx does for a swap into target.
func (b *browser) htmxGet(path, target string) page {
	b.t.Helper()
	return b.do(b.request(http.MethodGet, path, nil, map[string]string{
		"HX-Request": "true",
		"HX-Target":  target,
	}))
}

// csrf returns the token cookie, fetching the home page first when none is held yet.
func (b *browser) csrf() string {
	b.t.Helper()
	for _, c := range b.client.Jar.Cookies(b.base) {
		if c.Name == DefaultCSRFCookieName {
			return c.Value
		}
	}
	b.get("/")
	for _, c := range b.client.Jar.Cookies(b.base) {
		if c.Name == DefaultCSRFCookieName {
			return c.Value
		}
	}
	b.t.Fatal("no csrf cookie issued")
	return ""
}

func (b *browser) post(path string, form url.Values) page {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set(DefaultCSRFCookieName, b.csrf())
	req := b.request(http.MethodPost, path, strings.NewReader(form.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	return b.do(req)
}

func (b *browser) htmxPost(path string, form url.Values, currentURL string) page {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	req := b.request(http.MethodPost, path, strings.NewReader(form.Encode()), map[string]string{
		"Content-Type":        "application/x-www-form-urlencoded",
		"HX-Request":          "true",
		"HX-Current-URL":      b.base.String() + currentURL,
		DefaultCSRFHeaderName: b.csrf(),
	})
	return b.do(req)
}

func (b *browser) login(email string) {
	b.t.Helper()
	b.loginWith(email, testutil.FixturePassword)
}

func (b *browser) loginWith(email, password string) {
	b.t.Helper()
	p := b.post("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(b.t, http.StatusSeeOther, p.Status, p.Body)
}

// counter returns the summed value of a counter family in the app's registry.
func (a *testApp) counter(t *testing.T, name string) float64 {
	t.Helper()
	families, err := a.Registry.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
