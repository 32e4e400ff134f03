package ports

// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters and internal/atsclient.

import (
	"context"
	"errors"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/domain/model"
)

// AuthBackend is the part of the backend API a visitor session depends on.
type AuthBackend interface {
	// Me performs the session check.
	Me(ctx context.Context) (domainauth.Identity, error)
	// Login authenticates with credentials and returns the principal.
	Login(ctx context.Context, creds model.Credentials) (domainauth.Identity, error)
	// Logout ends the backend session.
	Logout(ctx context.Context) error
	// ClearSession forgets any locally held backend credentials.
	ClearSession()
}

// SessionStore persists visitor records so backend sessions survive a restart.
type SessionStore interface {
	Save(ctx context.Context, rec domainauth.Record) error
	Get(ctx context.Context, id string) (domainauth.Record, error)
	Delete(ctx context.Context, id string) error
}

// SessionPurger removes every persisted visitor record.
type SessionPurger interface {
	Purge(ctx context.Context) (int, error)
}

// ErrSessionNotFound is returned by SessionStore.Get when no live record exists.
var ErrSessionNotFound = errors.New("session not found")
