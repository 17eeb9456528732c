package handlers

import (
	"github.com/gofiber/fiber/v2"

	"catalogconsole/internal/apperr"
)

type AdminHandler struct {
	base
}

// GET /admin-dashboard
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	counts, err := h.Catalog.Counts(h.ctx(c))
	data := fiber.Map{"Counts": counts}
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		data["Counts"] = h.Catalog.SnapshotCounts()
		data["Error"] = apperr.PublicMessage(err)
	}
	return render(c, "dashboard", data)
}

// GET /admin-dashboard/tire-keys
func (h *AdminHandler) TireKeys(c *fiber.Ctx) error {
	items, err := h.Catalog.TireKeys.FetchAll(h.ctx(c))
	data := fiber.Map{}
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		items = h.Catalog.TireKeys.Snapshot().Items
		data["Error"] = apperr.PublicMessage(err)
	}
	data["Items"] = items
	return render(c, "tirekeys/list", data)
}
