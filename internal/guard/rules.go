// Package guard decides, per navigation, whether a view renders or the visitor is sent
// elsewhere. The rule table is declarative data; Decide is a pure function over it.
package guard

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
)

// Access is the requirement a rule places on the session.
type Access string

const (
	AccessPublic        Access = "public"
	AccessAuthenticated Access = "authenticated"
	AccessRoles         Access = "roles"
)

// Valid reports whether a is a known access kind.
func (a Access) Valid() bool {
	switch a {
	case AccessPublic, AccessAuthenticated, AccessRoles:
		return true
	default:
		return false
	}
}

// Rule pairs a path pattern with its access requirement.
// Patterns use chi syntax: /jobs/{id} or /jobs/{id:[0-9]+}.
type Rule struct {
	Pattern string            `yaml:"pattern"`
	Access  Access            `yaml:"access"`
	Roles   []domainauth.Role `yaml:"roles,omitempty"`
}

// Validate checks that the rule is internally consistent.
func (r Rule) Validate() error {
	if !strings.HasPrefix(r.Pattern, "/") {
		return fmt.Errorf("pattern %q must start with /", r.Pattern)
	}
	if !r.Access.Valid() {
		return fmt.Errorf("pattern %q: unknown access %q", r.Pattern, r.Access)
	}
	if r.Access == AccessRoles && len(r.Roles) == 0 {
		return fmt.Errorf("pattern %q: roles access needs at least one role", r.Pattern)
	}
	if r.Access != AccessRoles && len(r.Roles) > 0 {
		return fmt.Errorf("pattern %q: roles are only allowed with %q access", r.Pattern, AccessRoles)
	}
	return nil
}

var jobManagers = []domainauth.Role{domainauth.RoleAdmin, domainauth.RoleRecruiter}

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	public := func(p string) Rule { return Rule{Pattern: p, Access: AccessPublic} }
	authed := func(p string) Rule { return Rule{Pattern: p, Access: AccessAuthenticated} }
	managers := func(p string) Rule {
		return Rule{Pattern: p, Access: AccessRoles, Roles: append([]domainauth.Role(nil), jobManagers...)}
	}

	return []Rule{
		public("/"),
		public("/login"),
		public("/signup"),
		public("/signup/email-check"),
		public("/reset-password"),
		public("/access-denied"),
		public("/session/pending"),
		public("/jobs"),
		public("/jobs/{id:[0-9]+}"),

		managers("/jobs/new"),
		managers("/jobs/{id:[0-9]+}/edit"),
		managers("/jobs/manage"),
		managers("/jobs/{id:[0-9]+}/status"),
		managers("/jobs/{id:[0-9]+}/delete"),

		authed("/profile"),
		authed("/withdraw"),
		authed("/chatbot/ask"),
		authed("/logout"),
	}
}

// ruleFile is the on-disk shape of a rule override.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rule table from path.
func LoadRules(path string) ([]Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(raw)
}

// ParseRules decodes a YAML rule table.
func ParseRules(raw []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, errors.New("rules file defines no rules")
	}
	return f.Rules, nil
}

// Rules is a compiled rule table.
type Rules struct {
	list   []Rule
	byPath map[string]int
	mux    *chi.Mux
}

// NewRules validates and compiles rules. Each pattern may appear once.
func NewRules(rules []Rule) (compiled *Rules, err error) {
	t := &Rules{
		list:   make([]Rule, 0, len(rules)),
		byPath: make(map[string]int, len(rules)),
		mux:    chi.NewMux(),
	}
	// chi panics on malformed patterns.
	defer func() {
		if p := recover(); p != nil {
			compiled, err = nil, fmt.Errorf("compile rules: %v", p)
		}
	}()

	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.byPath[r.Pattern]; dup {
			return nil, fmt.Errorf("duplicate rule for pattern %q", r.Pattern)
		}
		t.byPath[r.Pattern] = len(t.list)
		t.list = append(t.list, r)
		t.mux.Handle(r.Pattern, noop)
	}
	return t, nil
}

// MustDefault compiles DefaultRules and panics on error.
func MustDefault() *Rules {
	t, err := NewRules(DefaultRules())
	if err != nil {
		panic(err)
	}
	return t
}

// Match returns the one rule that applies to path.
// Static segments win over parameters, so /jobs/new never matches /jobs/{id}.
func (t *Rules) Match(path string) (Rule, bool) {
	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) {
		return Rule{}, false
	}
	i, ok := t.byPath[rctx.RoutePattern()]
	if !ok {
		return Rule{}, false
	}
	return t.list[i], true
}

// List returns a copy of the compiled rules in declaration order.
func (t *Rules) List() []Rule {
	out := make([]Rule, len(t.list))
	copy(out, t.list)
	return out
}
