// Package guard decides what a request for a guarded or public-only page
// should see, given the session's auth state.
package guard

import (
	"strings"

	"catalogconsole/internal/session"
)

type Decision int

const (
	Render Decision = iota
	ShowLoading
	RedirectLogin
	RedirectUnauthorized
	RedirectDashboard
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case ShowLoading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	case RedirectDashboard:
		return "redirect_dashboard"
	}
	return "unknown"
}

// RoleSet is an allow-list of role names. The empty set allows any role.
type RoleSet map[string]struct{}

func Roles(names ...string) RoleSet {
	rs := RoleSet{}
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			rs[n] = struct{}{}
		}
	}
	return rs
}

func (rs RoleSet) Allows(role string) bool {
	if len(rs) == 0 {
		return true
	}
	_, ok := rs[role]
	return ok
}

// Names lists the roles in the set, unordered.
func (rs RoleSet) Names() []string {
	out := make([]string, 0, len(rs))
	for n := range rs {
		out = append(out, n)
	}
	return out
}

// Protected gates a subtree on resolved + authenticated + allowed role.
func Protected(state session.AuthState, allowed RoleSet) Decision {
	switch {
	case !state.Resolved || state.Loading:
		return ShowLoading
	case !state.IsAuthenticated || state.User == nil:
		return RedirectLogin
	case !allowed.Allows(state.Role()):
		return RedirectUnauthorized
	}
	return Render
}

// PublicOnly sends an already signed-in dashboard user away from public pages.
// An empty dashboardRoles set never redirects.
func PublicOnly(state session.AuthState, dashboardRoles RoleSet) Decision {
	if !state.Resolved || !state.IsAuthenticated || len(dashboardRoles) == 0 {
		return Render
	}
	if dashboardRoles.Allows(state.Role()) {
		return RedirectDashboard
	}
	return Render
}
