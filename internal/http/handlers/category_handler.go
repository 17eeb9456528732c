package handlers

import (
	"github.com/gofiber/fiber/v2"

	"catalogconsole/internal/form"
	"catalogconsole/internal/listview"
	"catalogconsole/internal/services"
)

const (
	categoriesPath = DashboardPrefix + "/categories"
	categoriesPage = "categories"
)

type CategoryHandler struct {
	base
}

var categoryList = listview.Categories()

// GET /admin-dashboard/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	sess := sessionOf(c)
	st, msg := listState(c, sess, categoriesPage, categoryList.FilterNames())

	items, fetchMsg, expired := fetch(c, h.base, h.Catalog.Categories)
	if expired {
		return c.Redirect("/login")
	}
	view := categoryList.View(&st, items)
	sess.SetListState(categoriesPage, st)

	return render(c, "categories/list", fiber.Map{
		"View":    view,
		"Err":     firstOf(msg, fetchMsg),
		"Loading": h.Catalog.Categories.Snapshot().Loading(),
	})
}

func (h *CategoryHandler) renderForm(c *fiber.Ctx, draft *form.CategoryDraft, msg string, fields map[string]string) error {
	return render(c, "categories/form", fiber.Map{
		"Draft":  draft,
		"Err":    msg,
		"Fields": fields,
		"IsEdit": draft.ID != "",
	})
}

// GET /admin-dashboard/categories/new
func (h *CategoryHandler) New(c *fiber.Ctx) error {
	return h.renderForm(c, form.NewCategoryDraft(), "", nil)
}

// POST /admin-dashboard/categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	return h.save(c, form.DecodeCategory("", formValues(c)))
}

// GET /admin-dashboard/categories/:id/edit
func (h *CategoryHandler) Edit(c *fiber.Ctx) error {
	cat, err := lookup(c, h.base, h.Catalog.Categories)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		return err
	}
	return h.renderForm(c, form.CategoryDraftFrom(cat), "", nil)
}

// POST /admin-dashboard/categories/:id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	cat, err := lookup(c, h.base, h.Catalog.Categories)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		return err
	}
	return h.save(c, form.DecodeCategory(cat.ID, formValues(c)))
}

func (h *CategoryHandler) save(c *fiber.Ctx, draft *form.CategoryDraft) error {
	out, err := submit(c, h.base, h.Catalog.Categories, formKey(services.ResourceCategory, draft.ID), draft)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		msg, fields := rejected(c, err)
		return h.renderForm(c, draft, msg, fields)
	}
	return saved(c, services.ResourceCategory, "Category", out.ID, draft.ID == "", categoriesPath)
}

// GET /admin-dashboard/categories/:id
func (h *CategoryHandler) View(c *fiber.Ctx) error {
	cat, err := lookup(c, h.base, h.Catalog.Categories)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		return err
	}
	subs, msg, expired := fetch(c, h.base, h.Catalog.SubCategories)
	if expired {
		return c.Redirect("/login")
	}
	n := 0
	for _, s := range subs {
		if s.CategoryID == cat.ID {
			n++
		}
	}
	return render(c, "categories/view", fiber.Map{"Category": cat, "SubCategoryCount": n, "Err": msg})
}

// POST /admin-dashboard/categories/:id/delete
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	return destroy(c, h.base, h.Catalog.Categories, services.ResourceCategory, "Category", categoriesPath)
}

func firstOf(msgs ...string) string {
	for _, m := range msgs {
		if m != "" {
			return m
		}
	}
	return ""
}
