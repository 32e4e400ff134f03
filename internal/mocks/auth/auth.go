package auth

// Package auth contains simple hand-written test doubles for session ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/domain/model"
	apperrors "github.com/minboot/ats-web/internal/errors"
	"github.com/minboot/ats-web/internal/ports"
)

// Ensure compile-time conformance to ports.
var _ ports.AuthBackend = (*FakeBackend)(nil)

// FakeBackend simulates the backend auth endpoints.
// Function fields override the default behavior; counters record calls.
type FakeBackend struct {
	MeFunc     func(ctx context.Context) (domainauth.Identity, error)
	LoginFunc  func(ctx context.Context, creds model.Credentials) (domainauth.Identity, error)
	LogoutFunc func(ctx context.Context) error

	// Users maps email to password and identity for the default Login.
	Users map[string]FakeUser

	mu          sync.Mutex
	current     *domainauth.Identity
	meCalls     int
	loginCalls  int
	logoutCalls int
	clears      int
}

// FakeUser is an account known to FakeBackend.
type FakeUser struct {
	Password string
	Identity domainauth.Identity
}

// NewFakeBackend creates a FakeBackend with one recruiter account.
func NewFakeBackend() *FakeBackend {
	companyID := int64(7)
	return &FakeBackend{
		Users: map[string]FakeUser{
			"recruiter@example.com": {
				Password: "secret",
				Identity: domainauth.Identity{
					ID:          3,
					Email:       "recruiter@example.com",
					Name:        "Kim Recruiter",
					CompanyID:   &companyID,
					CompanyName: "Acme",
					Roles:       []domainauth.Role{domainauth.RoleRecruiter},
				},
			},
		},
	}
}

func (f *FakeBackend) Me(ctx context.Context) (domainauth.Identity, error) {
	f.mu.Lock()
	f.meCalls++
	cur := f.current
	fn := f.MeFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if cur == nil {
		return domainauth.Identity{}, apperrors.Unauthorized("not authenticated")
	}
	return *cur, nil
}

func (f *FakeBackend) Login(ctx context.Context, creds model.Credentials) (domainauth.Identity, error) {
	f.mu.Lock()
	f.loginCalls++
	fn := f.LoginFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, creds)
	}
	u, ok := f.Users[creds.Email]
	if !ok || u.Password != creds.Password {
		return domainauth.Identity{}, apperrors.Unauthorized("bad credentials")
	}
	f.mu.Lock()
	id := u.Identity
	f.current = &id
	f.mu.Unlock()
	return id, nil
}

func (f *FakeBackend) Logout(ctx context.Context) error {
	f.mu.Lock()
	f.logoutCalls++
	fn := f.LogoutFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	f.mu.Lock()
	f.current = nil
	f.mu.Unlock()
	return nil
}

// ClearSession forgets the logged-in user, like dropping the session cookie.
func (f *FakeBackend) ClearSession() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.current = nil
}

// SetCurrent makes Me report id (nil for anonymous).
func (f *FakeBackend) SetCurrent(id *domainauth.Identity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = id
}

// Calls returns the number of Me, Login and Logout calls so far.
func (f *FakeBackend) Calls() (me, login, logout int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meCalls, f.loginCalls, f.logoutCalls
}

// Clears returns how often ClearSession was called.
func (f *FakeBackend) Clears() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clears
}
