package guard

import (
	"net/url"

	domainauth "github.com/minboot/ats-web/internal/domain/auth"
)

// Fixed navigation targets.
const (
	LoginPath        = "/login"
	AccessDeniedPath = "/access-denied"
	HomePath         = "/"
)

// Outcome is what the guard wants done with a navigation.
type Outcome int

const (
	Render Outcome = iota
	Wait
	RedirectLogin
	Deny
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect_login"
	case Deny:
		return "deny"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decision is the guard's answer. Location is set for the redirecting outcomes.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Redirects reports whether the decision navigates away from the requested path.
func (d Decision) Redirects() bool {
	return d.Outcome == RedirectLogin || d.Outcome == Deny || d.Outcome == RedirectHome
}

// Decide evaluates one rule against a session snapshot. requested is the path plus
// query the visitor asked for; it is carried to the login page so login can return there.
func Decide(snap domainauth.Snapshot, rule Rule, requested string) Decision {
	if rule.Access == AccessPublic {
		return Decision{Outcome: Render}
	}
	switch snap.State {
	case domainauth.StateAuthenticated:
	case domainauth.StateAnonymous:
		return Decision{Outcome: RedirectLogin, Location: LoginURL(requested)}
	default:
		return Decision{Outcome: Wait}
	}
	if rule.Access == AccessRoles && (snap.Identity == nil || !snap.Identity.HasAnyRole(rule.Roles...)) {
		return Decision{Outcome: Deny, Location: AccessDeniedPath}
	}
	return Decision{Outcome: Render}
}

// Decide matches path and evaluates its rule. Unmatched paths go home.
func (t *Rules) Decide(snap domainauth.Snapshot, path, rawQuery string) Decision {
	rule, ok := t.Match(path)
	if !ok {
		return Decision{Outcome: RedirectHome, Location: HomePath}
	}
	requested := path
	if rawQuery != "" {
		requested += "?" + rawQuery
	}
	return Decide(snap, rule, requested)
}

// LoginURL is the login page remembering where the visitor was headed.
func LoginURL(from string) string {
	if from == "" || from == HomePath {
		return LoginPath
	}
	return LoginPath + "?from=" + url.QueryEscape(from)
}
