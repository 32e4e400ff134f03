// Package memory provides process-local adapters used when no Redis is configured.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/ports"
)

// SessionStore keeps visitor records in a map. Records do not survive a restart.
type SessionStore struct {
	mu      sync.RWMutex
	records map[string]domainauth.Record
	now     func() time.Time
}

// NewSessionStore creates an empty in-memory store.
func NewSessionStore() *SessionStore {
	return &SessionStore{records: make(map[string]domainauth.Record), now: time.Now}
}

func (m *SessionStore) Save(_ context.Context, rec domainauth.Record) error {
	if rec.ID == "" {
		return errors.New("visitor ID cannot be empty")
	}
	if rec.Expired(m.now()) {
		return errors.New("visitor record is expired")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *SessionStore) Get(_ context.Context, id string) (domainauth.Record, error) {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return domainauth.Record{}, ports.ErrSessionNotFound
	}
	if rec.Expired(m.now()) {
		m.mu.Lock()
		delete(m.records, id)
		m.mu.Unlock()
		return domainauth.Record{}, ports.ErrSessionNotFound
	}
	return rec, nil
}

func (m *SessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

// Purge removes every record.
func (m *SessionStore) Purge(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.records)
	clear(m.records)
	return n, nil
}
