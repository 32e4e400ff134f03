// Package session owns per-visitor authentication state.
//
// A Store is the single writer of one visitor's session snapshot. Login and logout are
// user intents and always commit, in completion order. Session checks (Initialize and
// Refresh) only commit when no login or logout was issued while they were in flight, so a
// slow check can never overwrite a newer result.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/domain/model"
	apperrors "github.com/minboot/ats-web/internal/errors"
	"github.com/minboot/ats-web/internal/ports"
)

const defaultCheckTimeout = 10 * time.Second

// StoreOptions configures a Store.
type StoreOptions struct {
	Backend ports.AuthBackend
	Logger  *slog.Logger
	// CheckTimeout bounds a single session check.
	CheckTimeout time.Duration
	// OnCommit is called after every committed write, outside the lock.
	OnCommit func(domainauth.Snapshot)
}

// Store holds one visitor's session snapshot.
type Store struct {
	backend      ports.AuthBackend
	logger       *slog.Logger
	checkTimeout time.Duration
	onCommit     func(domainauth.Snapshot)

	mu    sync.Mutex
	snap  domainauth.Snapshot
	epoch uint64 // bumped when a login or logout is issued

	initOnce     sync.Once
	resolved     chan struct{}
	resolvedOnce sync.Once
}

// NewStore returns an unresolved Store.
func NewStore(opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.CheckTimeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &Store{
		backend:      opts.Backend,
		logger:       logger,
		checkTimeout: timeout,
		onCommit:     opts.OnCommit,
		resolved:     make(chan struct{}),
	}
}

// Current returns the current snapshot without touching the network.
func (s *Store) Current() domainauth.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Resolved is closed once the session first leaves the unresolved state.
func (s *Store) Resolved() <-chan struct{} { return s.resolved }

// Initialize performs the first session check. Only the first call does any work.
// The store is resolved when it returns, even if the check panics or ctx is cancelled.
func (s *Store) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		defer s.ensureResolved()
		s.check(ctx, "initialize")
	})
}

// Refresh re-runs the session check and returns the resulting snapshot.
func (s *Store) Refresh(ctx context.Context) domainauth.Snapshot {
	return s.check(ctx, "refresh")
}

// Login authenticates with the backend. On success the identity replaces the current one
// and is returned. On failure the session becomes anonymous and the error is returned;
// apperrors.IsUnauthorized distinguishes wrong credentials from transport failures.
func (s *Store) Login(ctx context.Context, creds model.Credentials) (domainauth.Identity, error) {
	s.issue()

	id, err := s.backend.Login(ctx, creds)
	if err != nil {
		s.backend.ClearSession()
		s.commit(domainauth.StateAnonymous, nil)
		return domainauth.Identity{}, fmt.Errorf("login: %w", err)
	}
	s.commit(domainauth.StateAuthenticated, &id)
	return id, nil
}

// Logout ends the backend session and clears the local identity.
// A backend failure is logged; the local session is cleared regardless.
func (s *Store) Logout(ctx context.Context) domainauth.Snapshot {
	s.issue()

	if err := s.backend.Logout(ctx); err != nil {
		s.logger.WarnContext(ctx, "backend logout failed; clearing local session anyway", slog.Any("error", err))
	}
	s.backend.ClearSession()
	return s.commit(domainauth.StateAnonymous, nil)
}

func (s *Store) issue() {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
}

func (s *Store) check(ctx context.Context, op string) domainauth.Snapshot {
	s.mu.Lock()
	started := s.epoch
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	id, err := s.backend.Me(ctx)
	if err != nil {
		if !apperrors.IsUnauthorized(err) {
			s.logger.WarnContext(ctx, "session check failed", "op", op, slog.Any("error", err))
		}
		return s.commitIfCurrent(started, domainauth.StateAnonymous, nil, op)
	}
	return s.commitIfCurrent(started, domainauth.StateAuthenticated, &id, op)
}

func (s *Store) commitIfCurrent(
	started uint64,
	state domainauth.State,
	id *domainauth.Identity,
	op string,
) domainauth.Snapshot {
	s.mu.Lock()
	if s.epoch != started {
		snap := s.snap
		s.mu.Unlock()
		s.logger.Debug("discarding stale session check", "op", op, "version", snap.Version)
		return snap
	}
	snap := s.applyLocked(state, id)
	s.mu.Unlock()

	s.afterCommit(snap)
	return snap
}

func (s *Store) commit(state domainauth.State, id *domainauth.Identity) domainauth.Snapshot {
	s.mu.Lock()
	snap := s.applyLocked(state, id)
	s.mu.Unlock()

	s.afterCommit(snap)
	return snap
}

func (s *Store) applyLocked(state domainauth.State, id *domainauth.Identity) domainauth.Snapshot {
	if state != domainauth.StateAuthenticated {
		id = nil
	}
	s.snap = domainauth.Snapshot{State: state, Identity: id, Version: s.snap.Version + 1}
	return s.snap
}

func (s *Store) afterCommit(snap domainauth.Snapshot) {
	s.resolvedOnce.Do(func() { close(s.resolved) })
	if s.onCommit != nil {
		s.onCommit(snap)
	}
}

// ensureResolved forces an anonymous resolution if nothing has committed yet.
func (s *Store) ensureResolved() {
	s.mu.Lock()
	if s.snap.Resolved() {
		s.mu.Unlock()
		return
	}
	snap := s.applyLocked(domainauth.StateAnonymous, nil)
	s.mu.Unlock()

	s.afterCommit(snap)
}

// WaitResolved blocks until the store is resolved, ctx is done or wait elapses, and
// returns the snapshot at that point.
func (s *Store) WaitResolved(ctx context.Context, wait time.Duration) domainauth.Snapshot {
	if snap := s.Current(); snap.Resolved() || wait <= 0 {
		return snap
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-s.resolved:
	case <-timer.C:
	case <-ctx.Done():
	}
	return s.Current()
}
