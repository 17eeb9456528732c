package handlers

import (
	"github.com/gofiber/fiber/v2"

	"catalogconsole/internal/guard"
	applog "catalogconsole/internal/log"
	"catalogconsole/internal/session"
)

func authOf(c *fiber.Ctx) session.AuthState {
	if sess := sessionOf(c); sess != nil {
		return sess.Auth()
	}
	return session.AuthState{}
}

// RequireRoles gates a subtree on a resolved session whose role is in allowed.
func RequireRoles(allowed guard.RoleSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := authOf(c)
		switch guard.Protected(st, allowed) {
		case guard.ShowLoading:
			c.Status(fiber.StatusAccepted)
			return render(c, "loading", fiber.Map{"Next": c.OriginalURL()})
		case guard.RedirectLogin:
			return c.Redirect("/login")
		case guard.RedirectUnauthorized:
			applog.Security(c, "access.denied.admin", map[string]any{"role": st.Role()})
			return c.Redirect("/unauthorized")
		}
		return c.Next()
	}
}

// PublicOnly sends dashboard users who are already signed in to the dashboard.
func PublicOnly(dashboardRoles guard.RoleSet) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if guard.PublicOnly(authOf(c), dashboardRoles) == guard.RedirectDashboard {
			return c.Redirect(DashboardPrefix)
		}
		return c.Next()
	}
}

// RequirePermission gates a single route on the role policy.
func RequirePermission(perm guard.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := authOf(c).Role()
		if !guard.Can(role, perm) {
			applog.Security(c, "access.denied.role", map[string]any{"role": role, "permission": string(perm)})
			c.Status(fiber.StatusForbidden)
			return render(c, "unauthorized", nil)
		}
		return c.Next()
	}
}
