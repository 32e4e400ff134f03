package atsclient

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
)

// SessionJar is a cookie jar that can be emptied and exported.
// net/http/cookiejar has neither operation, so Reset swaps in a fresh jar.
type SessionJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

// NewSessionJar returns an empty SessionJar.
func NewSessionJar() (*SessionJar, error) {
	j, err := NewJar()
	if err != nil {
		return nil, err
	}
	return &SessionJar{jar: j}, nil
}

// SetCookies implements http.CookieJar.
func (s *SessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.RLock()
	j := s.jar
	s.mu.RUnlock()
	j.SetCookies(u, cookies)
}

// Cookies implements http.CookieJar.
func (s *SessionJar) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	j := s.jar
	s.mu.RUnlock()
	return j.Cookies(u)
}

// Reset drops every cookie.
func (s *SessionJar) Reset() {
	j, err := NewJar()
	if err != nil {
		// cookiejar.New only fails on invalid options; keep the old jar rather than nil.
		return
	}
	s.mu.Lock()
	s.jar = j
	s.mu.Unlock()
}

// Export returns the cookies that would be sent to u.
func (s *SessionJar) Export(u *url.URL) []domainauth.StoredCookie {
	cookies := s.Cookies(u)
	out := make([]domainauth.StoredCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, domainauth.StoredCookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// Import restores previously exported cookies for u.
func (s *SessionJar) Import(u *url.URL, stored []domainauth.StoredCookie) {
	if len(stored) == 0 {
		return
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	s.SetCookies(u, cookies)
}

// ClearSession drops the backend session cookies held by the client.
// It is a no-op unless the client was built with a *SessionJar.
func (c *Client) ClearSession() {
	if sj, ok := c.jar.(*SessionJar); ok {
		sj.Reset()
	}
}

// ExportSession returns the backend cookies for persistence.
func (c *Client) ExportSession() []domainauth.StoredCookie {
	if sj, ok := c.jar.(*SessionJar); ok {
		return sj.Export(c.base)
	}
	return nil
}
