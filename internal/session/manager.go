package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/minboot/ats-web/internal/atsclient"
	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/ports"
)

const (
	defaultIdleTTL   = 30 * time.Minute
	defaultRecordTTL = 24 * time.Hour
	persistTimeout   = 3 * time.Second
)

// VisitorGauge receives the number of in-memory visitors.
type VisitorGauge interface {
	SetVisitors(n int)
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	BackendURL     string
	BackendTimeout time.Duration
	// Transport is shared by every visitor's client.
	Transport http.RoundTripper
	Observer  atsclient.RequestObserver

	// Persist stores backend cookies between restarts; nil disables persistence.
	Persist ports.SessionStore

	CheckTimeout time.Duration
	// IdleTTL evicts visitors from memory after this long without a request.
	IdleTTL time.Duration
	// RecordTTL is how long a persisted visitor record lives.
	RecordTTL time.Duration

	Logger  *slog.Logger
	Metrics VisitorGauge
	// BaseContext parents the background session checks; context.Background when nil.
	BaseContext context.Context
}

// Visitor is one browser's server-side state.
type Visitor struct {
	ID      string
	Client  *atsclient.Client
	Session *Store
	Search  *Sequencer

	lastSeen atomic.Int64

	// persistMu orders writes to the session store; persisted is the newest
	// snapshot version written. Forget sets it to forgotten.
	persistMu sync.Mutex
	persisted uint64
}

const forgotten = math.MaxUint64

func (v *Visitor) touch(now time.Time) { v.lastSeen.Store(now.UnixNano()) }

// Manager maps visitor ids to Visitors.
type Manager struct {
	opts   ManagerOptions
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*Visitor
}

// NewManager validates opts and returns an empty Manager.
func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.BackendURL == "" {
		return nil, errors.New("backend url is required")
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	if opts.RecordTTL <= 0 {
		opts.RecordTTL = defaultRecordTTL
	}
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		opts:     opts,
		logger:   logger.With("component", "session_manager"),
		now:      time.Now,
		visitors: make(map[string]*Visitor),
	}, nil
}

// Visitor returns the visitor for id, creating one when id is empty or unknown.
// Unknown ids are never adopted: a fresh id is issued unless a persisted record exists.
// The returned bool reports whether the caller must (re)issue the visitor cookie.
func (m *Manager) Visitor(ctx context.Context, id string) (*Visitor, bool, error) {
	if id != "" {
		if v := m.lookup(id); v != nil {
			return v, false, nil
		}
		if rec, ok := m.loadRecord(ctx, id); ok {
			v, err := m.adopt(rec)
			return v, false, err
		}
	}
	v, err := m.adopt(domainauth.Record{ID: uuid.NewString()})
	return v, true, err
}

func (m *Manager) lookup(id string) *Visitor {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visitors[id]
	if ok {
		v.touch(m.now())
	}
	return v
}

func (m *Manager) loadRecord(ctx context.Context, id string) (domainauth.Record, bool) {
	if m.opts.Persist == nil {
		return domainauth.Record{}, false
	}
	rec, err := m.opts.Persist.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ports.ErrSessionNotFound) {
			m.logger.WarnContext(ctx, "load visitor record failed", "visitor_id", id, slog.Any("error", err))
		}
		return domainauth.Record{}, false
	}
	return rec, true
}

// adopt builds a visitor from rec and starts its session check. If another request
// registered the same id first, that visitor wins.
func (m *Manager) adopt(rec domainauth.Record) (*Visitor, error) {
	jar, err := atsclient.NewSessionJar()
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	client, err := atsclient.New(atsclient.Options{
		BaseURL:   m.opts.BackendURL,
		Jar:       jar,
		Transport: m.opts.Transport,
		Timeout:   m.opts.BackendTimeout,
		Logger:    m.logger,
		Observer:  m.opts.Observer,
	})
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}
	jar.Import(client.BaseURL(), rec.Cookies)

	v := &Visitor{ID: rec.ID, Client: client, Search: &Sequencer{}}
	v.Session = NewStore(StoreOptions{
		Backend:      client,
		Logger:       m.logger.With("visitor_id", rec.ID),
		CheckTimeout: m.opts.CheckTimeout,
		OnCommit:     func(snap domainauth.Snapshot) { m.persist(v, snap) },
	})
	v.touch(m.now())

	m.mu.Lock()
	if existing, ok := m.visitors[rec.ID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.visitors[rec.ID] = v
	n := len(m.visitors)
	m.mu.Unlock()

	if m.opts.Metrics != nil {
		m.opts.Metrics.SetVisitors(n)
	}
	go v.Session.Initialize(m.opts.BaseContext)
	return v, nil
}

// persist saves the visitor's backend cookies, or deletes the record when there are none.
// Commits run concurrently; a snapshot older than the last one written is skipped so a
// slow login save cannot resurrect a record a later logout deleted.
func (m *Manager) persist(v *Visitor, snap domainauth.Snapshot) {
	if m.opts.Persist == nil {
		return
	}
	v.persistMu.Lock()
	defer v.persistMu.Unlock()
	if snap.Version <= v.persisted {
		m.logger.Debug("skipping stale visitor record write", "visitor_id", v.ID, "version", snap.Version)
		return
	}
	v.persisted = snap.Version

	ctx, cancel := context.WithTimeout(context.WithoutCancel(m.opts.BaseContext), persistTimeout)
	defer cancel()

	cookies := v.Client.ExportSession()
	var err error
	if len(cookies) == 0 {
		err = m.opts.Persist.Delete(ctx, v.ID)
	} else {
		err = m.opts.Persist.Save(ctx, domainauth.Record{
			ID:        v.ID,
			Cookies:   cookies,
			ExpiresAt: m.now().Add(m.opts.RecordTTL),
		})
	}
	if err != nil {
		m.logger.Warn("persist visitor record failed", "visitor_id", v.ID, slog.Any("error", err))
	}
}

// Forget drops a visitor from memory and persistence.
func (m *Manager) Forget(ctx context.Context, id string) {
	m.mu.Lock()
	v := m.visitors[id]
	delete(m.visitors, id)
	n := len(m.visitors)
	m.mu.Unlock()

	if v != nil {
		v.persistMu.Lock()
		v.persisted = forgotten
		defer v.persistMu.Unlock()
	}

	if m.opts.Metrics != nil {
		m.opts.Metrics.SetVisitors(n)
	}
	if m.opts.Persist != nil {
		if err := m.opts.Persist.Delete(ctx, id); err != nil {
			m.logger.WarnContext(ctx, "delete visitor record failed", "visitor_id", id, slog.Any("error", err))
		}
	}
}

// Len returns the number of visitors held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}

// Run evicts idle visitors from memory until ctx is done. Persisted records are kept so
// an evicted visitor is restored on its next request.
func (m *Manager) Run(ctx context.Context) {
	interval := m.opts.IdleTTL / 2
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.evictIdle(); n > 0 {
				m.logger.Debug("evicted idle visitors", "count", n)
			}
		}
	}
}

func (m *Manager) evictIdle() int {
	cutoff := m.now().Add(-m.opts.IdleTTL).UnixNano()

	m.mu.Lock()
	evicted := 0
	for id, v := range m.visitors {
		if v.lastSeen.Load() < cutoff {
			delete(m.visitors, id)
			evicted++
		}
	}
	n := len(m.visitors)
	m.mu.Unlock()

	if evicted > 0 && m.opts.Metrics != nil {
		m.opts.Metrics.SetVisitors(n)
	}
	return evicted
}
