package auth

// Package auth contains domain-level types for the visitor session and its roles.
// It is pure and free of framework/adapter concerns.

import (
	"slices"
	"time"
)

// Role represents a permission class granted by the backend.
// Keep string form so unknown tags survive a round trip.
type Role string

const (
	RoleAdmin       Role = "ROLE_ADMIN"
	RoleRecruiter   Role = "ROLE_RECRUITER"
	RoleInterviewer Role = "ROLE_INTERVIEWER"
	RoleManager     Role = "ROLE_MANAGER"
)

// Label returns a short display name for known roles and the raw tag otherwise.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleRecruiter:
		return "Recruiter"
	case RoleInterviewer:
		return "Interviewer"
	case RoleManager:
		return "Manager"
	default:
		return string(r)
	}
}

// Identity is the authenticated principal as reported by the backend.
type Identity struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	CompanyID   *int64 `json:"companyId"`
	CompanyName string `json:"companyName"`
	Roles       []Role `json:"roles"`
}

// HasAnyRole reports whether the identity holds at least one of the given roles.
// An empty set matches nothing; callers decide what "no roles required" means.
func (id Identity) HasAnyRole(accepted ...Role) bool {
	for _, r := range accepted {
		if slices.Contains(id.Roles, r) {
			return true
		}
	}
	return false
}

// HasCompany reports whether the identity is linked to a company.
func (id Identity) HasCompany() bool { return id.CompanyID != nil }

// State is the resolution state of a visitor session.
type State int

const (
	// StateUnresolved means the session check has not completed yet.
	StateUnresolved State = iota
	// StateAnonymous means the session check completed without an identity.
	StateAnonymous
	// StateAuthenticated means an identity is held.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable read of a visitor session.
// Identity is non-nil iff State is StateAuthenticated.
type Snapshot struct {
	State    State
	Identity *Identity
	Version  uint64
}

// Resolved reports whether the session check has completed.
func (s Snapshot) Resolved() bool { return s.State != StateUnresolved }

// Authenticated reports whether an identity is present.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Identity != nil
}

// StoredCookie is a backend cookie persisted for a visitor.
type StoredCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is what we persist per visitor so backend sessions survive a restart.
// ID is the opaque visitor identifier carried in the browser cookie.
type Record struct {
	ID        string         `json:"id"`
	Cookies   []StoredCookie `json:"cookies"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at now.
func (r Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}
