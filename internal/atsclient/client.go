// Package atsclient is the HTTP client for the ATS REST backend.
//
// A Client owns one cookie jar, so it represents one backend session. Every call carries
// the jar's cookies, sends JSON by default, and reports non-2xx responses as
// *apperrors.AppError without acting on them: callers decide whether to redirect.
package atsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	apperrors "github.com/minboot/ats-web/internal/errors"
)

const (
	contentTypeJSON  = "application/json"
	maxErrorBodySize = 4 << 10
	defaultTimeout   = 10 * time.Second
)

// RequestObserver receives one observation per backend call.
type RequestObserver interface {
	ObserveBackendRequest(endpoint, method string, status int, d time.Duration, err error)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// Jar holds the backend session cookies. A fresh jar is created when nil.
	Jar http.CookieJar
	// Transport is shared across visitors; http.DefaultTransport when nil.
	Transport http.RoundTripper
	Timeout   time.Duration
	Logger    *slog.Logger
	Observer  RequestObserver
}

// Client issues semantic calls against the backend.
type Client struct {
	base     *url.URL
	http     *http.Client
	jar      http.CookieJar
	logger   *slog.Logger
	observer RequestObserver
}

// NewJar returns an empty cookie jar using the public suffix list.
func NewJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// New creates a Client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", opts.BaseURL)
	}

	jar := opts.Jar
	if jar == nil {
		j, jerr := NewJar()
		if jerr != nil {
			return nil, fmt.Errorf("create cookie jar: %w", jerr)
		}
		jar = j
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base: base,
		jar:  jar,
		http: &http.Client{
			Transport: opts.Transport,
			Jar:       jar,
			Timeout:   timeout,
			// The backend answers unauthenticated calls with a redirect to its own login
			// page; surface that instead of following it.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger:   logger.With("component", "atsclient"),
		observer: opts.Observer,
	}, nil
}

// BaseURL returns a copy of the backend base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Jar returns the cookie jar holding the backend session.
func (c *Client) Jar() http.CookieJar { return c.jar }

// RequestOption adjusts a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	query       url.Values
	contentType string
	endpoint    string
}

// WithQuery sets query parameters.
func WithQuery(q url.Values) RequestOption {
	return func(rc *requestConfig) { rc.query = q }
}

// WithContentType overrides the default JSON content type.
func WithContentType(ct string) RequestOption {
	return func(rc *requestConfig) { rc.contentType = ct }
}

// WithEndpoint names the call for metrics and logs.
func WithEndpoint(name string) RequestOption {
	return func(rc *requestConfig) { rc.endpoint = name }
}

// Get issues a GET and decodes the JSON response into out (if non-nil).
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts)
}

// Post issues a POST with body encoded as JSON unless a content type override is given
// and body is an io.Reader.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts)
}

// Put issues a PUT.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPut, path, body, out, opts)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opts)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, opts []RequestOption) error {
	rc := requestConfig{contentType: contentTypeJSON}
	for _, opt := range opts {
		opt(&rc)
	}
	if rc.endpoint == "" {
		rc.endpoint = method + " " + path
	}

	req, err := c.newRequest(ctx, method, path, body, rc)
	if err != nil {
		return err
	}

	start := time.Now()
	status, err := c.send(req, out)
	elapsed := time.Since(start)

	if c.observer != nil {
		c.observer.ObserveBackendRequest(rc.endpoint, method, status, elapsed, err)
	}
	if err != nil && !apperrors.IsCanceled(err) {
		c.logger.DebugContext(ctx, "backend call failed",
			"endpoint", rc.endpoint,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			slog.Any("error", err),
		)
	}
	return err
}

func (c *Client) newRequest(
	ctx context.Context,
	method, path string,
	body any,
	rc requestConfig,
) (*http.Request, error) {
	u := c.base.JoinPath(path)
	if len(rc.query) > 0 {
		u.RawQuery = rc.query.Encode()
	}

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("Content-Type", rc.contentType)
	return req, nil
}

func (c *Client) send(req *http.Request, out any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, apperrors.FromTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return resp.StatusCode, responseError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return resp.StatusCode, nil
		}
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return resp.StatusCode, apperrors.FromTransport(ctxErr)
		}
		return resp.StatusCode, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode backend response")
	}
	return resp.StatusCode, nil
}

// responseError converts a non-2xx response into an AppError carrying the backend message.
func responseError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		// Redirects point at the backend's login page.
		e := apperrors.Unauthorized("session is not authenticated")
		e.Status = resp.StatusCode
		return e
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	return apperrors.FromStatus(resp.StatusCode, backendMessage(raw))
}

// backendMessage extracts a user-facing message from an error body. JSON bodies use
// "message" (or "error"); anything else is used as plain text.
func backendMessage(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	if strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}
