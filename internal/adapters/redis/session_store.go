package redis

// Package redis provides Redis-based adapters for ats-web.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/ports"
)

const defaultPrefix = "atsweb:visitor:"

// SessionStore is a Redis-based visitor record store for production use.
// It handles TTL semantics automatically based on the record's ExpiresAt.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithPrefix(client, defaultPrefix)
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) Save(ctx context.Context, rec domainauth.Record) error {
	if rec.ID == "" {
		return errors.New("visitor ID cannot be empty")
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return errors.New("visitor record is expired")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal visitor record: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+rec.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Record, error) {
	if id == "" {
		return domainauth.Record{}, ports.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Record{}, ports.ErrSessionNotFound
		}
		return domainauth.Record{}, fmt.Errorf("redis get: %w", err)
	}

	var rec domainauth.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domainauth.Record{}, fmt.Errorf("unmarshal visitor record: %w", err)
	}

	if rec.Expired(time.Now()) {
		if err := s.Delete(ctx, id); err != nil {
			return domainauth.Record{}, fmt.Errorf("cleanup expired visitor record: %w", err)
		}
		return domainauth.Record{}, ports.ErrSessionNotFound
	}
	return rec, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}

// Purge deletes every visitor record under the store's prefix.
func (s *SessionStore) Purge(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 200).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del: %w", err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
