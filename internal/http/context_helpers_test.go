package httpx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
)

func TestSnapshotFromContext(t *testing.T) {
	ctx := context.Background()
	assert.False(t, SnapshotFromContext(ctx).Resolved())
	assert.Nil(t, IdentityFromContext(ctx))

	id := &domainauth.Identity{ID: 9, Email: "a@example.com"}
	ctx = setSnapshotInContext(ctx, domainauth.Snapshot{State: domainauth.StateAuthenticated, Identity: id, Version: 4})
	assert.Equal(t, uint64(4), SnapshotFromContext(ctx).Version)
	assert.Same(t, id, IdentityFromContext(ctx))

	anon := setSnapshotInContext(context.Background(), domainauth.Snapshot{State: domainauth.StateAnonymous})
	assert.Nil(t, IdentityFromContext(anon))
}

func TestVisitorFromContext_Missing(t *testing.T) {
	_, ok := VisitorFromContext(context.Background())
	assert.False(t, ok)
	assert.Equal(t, context.Background(), SetVisitorInContext(context.Background(), nil))
}
