package handlers

import (
	"github.com/gofiber/fiber/v2"

	"catalogconsole/internal/apperr"
	"catalogconsole/internal/log"
	"catalogconsole/internal/services"
	"catalogconsole/internal/validate"
)

type AuthHandler struct {
	Auth         *services.AuthService
	SecureCookie bool
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": "", "Email": ""})
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx, email, msg string) error {
	c.Status(fiber.StatusUnauthorized)
	return render(c, "login", fiber.Map{"Err": msg, "Email": email})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sess := sessionOf(c)
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return h.loginFailed(c, email, "Enter a valid email address")
	}
	pass := c.FormValue("password")
	if !validate.Password(pass) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		return h.loginFailed(c, email, "Invalid email or password")
	}

	u, err := h.Auth.Login(c.UserContext(), sess, email, pass)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "code": string(codeOf(err))})
		msg := apperr.PublicMessage(err)
		if apperr.IsCode(err, apperr.CodeAuthExpired) {
			msg = "Invalid email or password"
		}
		return h.loginFailed(c, email, msg)
	}

	c.Locals("user", u)
	log.Audit(c, "auth.login.success", map[string]any{"email": email, "role": u.Role})
	setFlash(c, flashSuccess, "Welcome back, "+u.DisplayName())
	return c.Redirect(DashboardPrefix)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess := sessionOf(c)
	fields := map[string]any{}
	if u := sess.Auth().User; u != nil {
		fields["user"] = u.ID
	}
	if err := h.Auth.Logout(c.UserContext(), sess); err != nil {
		log.Error(c, "auth.logout.fail", err, nil)
		setFlash(c, flashError, apperr.PublicMessage(err))
		return c.Redirect(DashboardPrefix)
	}
	_ = h.Auth.Sessions().Destroy(c.UserContext(), sess.ID)
	clearSID(c, h.SecureCookie)
	log.Audit(c, "auth.logout", fields)
	return c.Redirect("/login")
}

func (h *AuthHandler) Unauthorized(c *fiber.Ctx) error {
	c.Status(fiber.StatusForbidden)
	return render(c, "unauthorized", nil)
}

func codeOf(err error) apperr.Code {
	if typed := apperr.As(err); typed != nil {
		return typed.Code()
	}
	return apperr.CodeInternal
}
