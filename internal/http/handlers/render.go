package handlers

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	flashSuccess = "flash_success"
	flashError   = "flash_error"
)

// setFlash queues a one-shot notice for the next rendered page.
func setFlash(c *fiber.Ctx, kind, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     kind,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		MaxAge:   60,
	})
}

// takeFlash reads and clears a notice.
func takeFlash(c *fiber.Ctx, kind string) string {
	raw := c.Cookies(kind)
	if raw == "" {
		return ""
	}
	c.Cookie(&fiber.Cookie{Name: kind, Value: "", Path: "/", Expires: time.Now().Add(-time.Hour)})
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}

func withCommon(c *fiber.Ctx, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	// csrf middleware puts the token into Locals, the cookie is a fallback
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	data["Path"] = c.Path()
	if _, ok := data["Success"]; !ok {
		data["Success"] = takeFlash(c, flashSuccess)
	}
	if _, ok := data["Error"]; !ok {
		data["Error"] = takeFlash(c, flashError)
	}
	return data
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	return c.Render(tmpl, withCommon(c, data))
}
