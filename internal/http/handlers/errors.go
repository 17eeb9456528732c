package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"catalogconsole/internal/apperr"
	applog "catalogconsole/internal/log"
)

// ErrorHandler logs the failure and renders a friendly page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := apperr.MetadataFor(apperr.CodeInternal).PublicMessage

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe) && fe.Code == fiber.StatusNotFound:
		status, msg = fe.Code, "Page not found"
	case errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError:
		status, msg = fe.Code, fe.Message
	case apperr.As(err) != nil:
		status, msg = statusOf(err), apperr.PublicMessage(err)
	}

	if status >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	c.Status(status)
	if rerr := render(c, "notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(status).SendString(msg)
	}
	return nil
}

// statusOf maps an error to the console's own response status. The upstream
// status stays on the error for logging.
func statusOf(err error) int {
	typed := apperr.As(err)
	if typed == nil {
		return fiber.StatusInternalServerError
	}
	return apperr.MetadataFor(typed.Code()).HTTPStatus
}

// NotFound is the catch-all route.
func NotFound(c *fiber.Ctx) error {
	c.Status(fiber.StatusNotFound)
	return render(c, "notfound", fiber.Map{"Message": "Page not found"})
}
