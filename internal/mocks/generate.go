// Package mocks provides generated mock implementations of the ports used by ats-web.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockSessionStore(ctrl)
//	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for SessionStore interface from internal/ports package.
// This creates MockSessionStore with methods for all SessionStore interface methods:
// Save, Get, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/minboot/ats-web/internal/ports SessionStore
