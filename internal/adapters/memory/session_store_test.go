package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/ports"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	rec := domainauth.Record{ID: "v1", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	now = now.Add(2 * time.Hour)
	_, err = store.Get(ctx, "v1")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	assert.Error(t, store.Save(ctx, domainauth.Record{ID: "v2", ExpiresAt: now.Add(-time.Second)}))
	assert.Error(t, store.Save(ctx, domainauth.Record{}))
}

func TestSessionStore_DeleteAndPurge(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domainauth.Record{ID: "a"}))
	require.NoError(t, store.Save(ctx, domainauth.Record{ID: "b"}))

	require.NoError(t, store.Delete(ctx, "a"))
	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
