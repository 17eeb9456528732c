package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"catalogconsole/internal/apperr"
	"catalogconsole/internal/form"
	"catalogconsole/internal/log"
	"catalogconsole/internal/session"
	"catalogconsole/internal/store"
	"catalogconsole/internal/validate"
)

func formValues(c *fiber.Ctx) form.Values {
	v := form.Values{}
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		v[string(key)] = string(value)
	})
	return v
}

// fetch refreshes s. On failure the stale items come back with the message.
func fetch[T store.Entity, P any](c *fiber.Ctx, b base, s *store.Store[T, P]) (items []T, msg string, expired bool) {
	items, err := s.FetchAll(b.ctx(c))
	if err == nil {
		return items, "", false
	}
	if b.authExpired(c, err) {
		return nil, "", true
	}
	return s.Snapshot().Items, apperr.PublicMessage(err), false
}

// lookup finds id among the current items, refreshing once if it is missing.
func lookup[T store.Entity, P any](c *fiber.Ctx, b base, s *store.Store[T, P]) (T, error) {
	var zero T
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "id"})
		return zero, apperr.New(apperr.CodeNotFound, "Record not found")
	}
	if it, ok := s.Find(id); ok {
		return it, nil
	}
	if _, err := s.FetchAll(b.ctx(c)); err != nil {
		return zero, err
	}
	if it, ok := s.Find(id); ok {
		return it, nil
	}
	return zero, apperr.New(apperr.CodeNotFound, "Record not found")
}

// submit runs one create or update through the session's live form for key.
func submit[T store.Entity, P any](c *fiber.Ctx, b base, s *store.Store[T, P], key string, draft form.Draft[P]) (T, error) {
	sess := sessionOf(c)
	f := session.Form(sess, key, func() *form.Form[T, P] { return form.New[T, P](s) })
	return f.Submit(b.ctx(c), draft, func(T) { sess.DropForm(key) })
}

func formKey(resource, id string) string {
	if id == "" {
		return resource + ":new"
	}
	return resource + ":" + id
}

// rejected sets the response status for a failed submit and returns what the
// form shows: the notice and per-field messages.
func rejected(c *fiber.Ctx, err error) (string, map[string]string) {
	typed := apperr.As(err)
	if typed == nil {
		c.Status(fiber.StatusInternalServerError)
		return apperr.PublicMessage(err), nil
	}
	c.Status(statusOf(err))
	if typed.Code() == apperr.CodeValidation {
		fields := make([]string, 0, len(typed.Details()))
		for f := range typed.Details() {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		log.Security(c, "validation.fail", map[string]any{"fields": fields})
		return apperr.PublicMessage(err), typed.Details()
	}
	return apperr.PublicMessage(err), nil
}

// destroy deletes the entity named by :id and goes back to the list.
func destroy[T store.Entity, P any](c *fiber.Ctx, b base, s *store.Store[T, P], resource, label, back string) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "id"})
		return fiber.ErrNotFound
	}
	if err := s.Delete(b.ctx(c), id); err != nil {
		if b.authExpired(c, err) {
			return c.Redirect("/login")
		}
		setFlash(c, flashError, apperr.PublicMessage(err))
		return c.Redirect(back)
	}
	log.Audit(c, "admin."+resource+".delete", map[string]any{"id": id})
	setFlash(c, flashSuccess, label+" deleted successfully")
	return c.Redirect(back)
}

// saved finishes a successful submit.
func saved(c *fiber.Ctx, resource, label, id string, created bool, back string) error {
	verb, done := "update", "updated"
	if created {
		verb, done = "create", "created"
	}
	log.Audit(c, "admin."+resource+"."+verb, map[string]any{"id": id})
	setFlash(c, flashSuccess, label+" "+done+" successfully")
	return c.Redirect(back)
}
