package httpx

import (
	"context"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
	"github.com/minboot/ats-web/internal/session"
)

// Unexported context key types avoid collisions across packages.
type (
	visitorKey  struct{}
	snapshotKey struct{}
)

// SetVisitorInContext returns a child context carrying the visitor.
// If v is nil, the original ctx is returned unchanged.
func SetVisitorInContext(ctx context.Context, v *session.Visitor) context.Context {
	if v == nil {
		return ctx
	}
	return context.WithValue(ctx, visitorKey{}, v)
}

// VisitorFromContext returns the visitor attached by the Visitors middleware.
func VisitorFromContext(ctx context.Context) (*session.Visitor, bool) {
	v, ok := ctx.Value(visitorKey{}).(*session.Visitor)
	return v, ok && v != nil
}

// setSnapshotInContext records the session snapshot the guard decided on, so handlers and
// templates see the same state the decision was made with.
func setSnapshotInContext(ctx context.Context, snap domainauth.Snapshot) context.Context {
	return context.WithValue(ctx, snapshotKey{}, snap)
}

// SnapshotFromContext returns the guard's snapshot, or the visitor's current one.
func SnapshotFromContext(ctx context.Context) domainauth.Snapshot {
	if snap, ok := ctx.Value(snapshotKey{}).(domainauth.Snapshot); ok {
		return snap
	}
	if v, ok := VisitorFromContext(ctx); ok {
		return v.Session.Current()
	}
	return domainauth.Snapshot{}
}

// IdentityFromContext returns the signed-in identity, or nil.
func IdentityFromContext(ctx context.Context) *domainauth.Identity {
	snap := SnapshotFromContext(ctx)
	if !snap.Authenticated() {
		return nil
	}
	return snap.Identity
}
