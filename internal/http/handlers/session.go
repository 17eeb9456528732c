package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"catalogconsole/internal/apiclient"
	"catalogconsole/internal/apperr"
	applog "catalogconsole/internal/log"
	"catalogconsole/internal/services"
	"catalogconsole/internal/session"
)

const (
	sidCookie = "sid"
	// DashboardPrefix is the protected subtree. Expired-session notices only show under it.
	DashboardPrefix = "/admin-dashboard"
)

func ensureSID(c *fiber.Ctx, secure bool) string {
	sid := c.Cookies(sidCookie)
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sidCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   secure,
		})
	}
	return sid
}

func clearSID(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   secure,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}

// Sessions attaches the browser session and resolves who-am-i on first sight.
func Sessions(auth *services.AuthService, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := ensureSID(c, secure)
		sess, err := auth.Sessions().Get(c.UserContext(), sid)
		if err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "load session")
		}
		st := auth.Resolve(c.UserContext(), sess)
		c.Locals("session", sess)
		if st.IsAuthenticated && st.User != nil {
			c.Locals("user", st.User)
		}
		return c.Next()
	}
}

func sessionOf(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals("session").(*session.Session)
	return sess
}

func isProtected(path string) bool {
	return path == DashboardPrefix || strings.HasPrefix(path, DashboardPrefix+"/")
}

// base carries what every resource handler needs.
type base struct {
	Auth    *services.AuthService
	Catalog *services.Catalog
}

// ctx carries the session's upstream credentials into API calls.
func (b base) ctx(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if sess := sessionOf(c); sess != nil {
		ctx = apiclient.WithCredentials(ctx, sess.Credentials())
	}
	return ctx
}

// authExpired handles a 401 from the API: the session is resolved again on
// the next request and, under the dashboard, the operator is told why.
func (b base) authExpired(c *fiber.Ctx, err error) bool {
	if !apperr.IsCode(err, apperr.CodeAuthExpired) {
		return false
	}
	if sess := sessionOf(c); sess != nil {
		b.Auth.Expire(c.UserContext(), sess)
	}
	applog.Security(c, "auth.expired", nil)
	if isProtected(c.Path()) {
		setFlash(c, flashError, apperr.MetadataFor(apperr.CodeAuthExpired).PublicMessage)
	}
	return true
}
