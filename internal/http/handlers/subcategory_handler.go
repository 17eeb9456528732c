package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"catalogconsole/internal/apperr"
	"catalogconsole/internal/domain"
	"catalogconsole/internal/form"
	"catalogconsole/internal/listview"
	"catalogconsole/internal/services"
)

const (
	subCategoriesPath = DashboardPrefix + "/subcategories"
	subCategoriesPage = "subcategories"
)

type SubCategoryHandler struct {
	base
}

var subCategoryList = listview.SubCategories()

// GET /admin-dashboard/subcategories
func (h *SubCategoryHandler) List(c *fiber.Ctx) error {
	sess := sessionOf(c)
	st, msg := listState(c, sess, subCategoriesPage, subCategoryList.FilterNames())

	var (
		subs     []domain.SubCategory
		cats     []domain.Category
		fetchMsg string
	)
	// no shared cancel: one store failing must not reject the other
	var g errgroup.Group
	ctx := h.ctx(c)
	g.Go(func() (err error) {
		subs, err = h.Catalog.SubCategories.FetchAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		cats, err = h.Catalog.Categories.FetchAll(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		fetchMsg = apperr.PublicMessage(err)
		subs = h.Catalog.SubCategories.Snapshot().Items
		cats = h.Catalog.Categories.Snapshot().Items
	}

	view := subCategoryList.View(&st, subs)
	sess.SetListState(subCategoriesPage, st)

	return render(c, "subcategories/list", fiber.Map{
		"View":       view,
		"Categories": cats,
		"CatTitles":  h.Catalog.CategoryTitles(),
		"Err":        firstOf(msg, fetchMsg),
		"Loading":    h.Catalog.SubCategories.Snapshot().Loading() || h.Catalog.Categories.Snapshot().Loading(),
	})
}

func (h *SubCategoryHandler) renderForm(c *fiber.Ctx, draft *form.SubCategoryDraft, msg string, fields map[string]string) error {
	cats, fetchMsg, expired := fetch(c, h.base, h.Catalog.Categories)
	if expired {
		return c.Redirect("/login")
	}
	return render(c, "subcategories/form", fiber.Map{
		"Draft":      draft,
		"Categories": cats,
		"Err":        firstOf(msg, fetchMsg),
		"Fields":     fields,
		"IsEdit":     draft.ID != "",
	})
}

// GET /admin-dashboard/subcategories/new
func (h *SubCategoryHandler) New(c *fiber.Ctx) error {
	return h.renderForm(c, form.NewSubCategoryDraft(), "", nil)
}

// POST /admin-dashboard/subcategories
func (h *SubCategoryHandler) Create(c *fiber.Ctx) error {
	return h.save(c, form.DecodeSubCategory("", formValues(c)))
}

// GET /admin-dashboard/subcategories/:id/edit
func (h *SubCategoryHandler) Edit(c *fiber.Ctx) error {
	sub, err := lookup(c, h.base, h.Catalog.SubCategories)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		return err
	}
	return h.renderForm(c, form.SubCategoryDraftFrom(sub), "", nil)
}

// POST /admin-dashboard/subcategories/:id
func (h *SubCategoryHandler) Update(c *fiber.Ctx) error {
	sub, err := lookup(c, h.base, h.Catalog.SubCategories)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		return err
	}
	return h.save(c, form.DecodeSubCategory(sub.ID, formValues(c)))
}

func (h *SubCategoryHandler) save(c *fiber.Ctx, draft *form.SubCategoryDraft) error {
	out, err := submit(c, h.base, h.Catalog.SubCategories, formKey(services.ResourceSubCategory, draft.ID), draft)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		msg, fields := rejected(c, err)
		return h.renderForm(c, draft, msg, fields)
	}
	return saved(c, services.ResourceSubCategory, "Subcategory", out.ID, draft.ID == "", subCategoriesPath)
}

// GET /admin-dashboard/subcategories/:id
func (h *SubCategoryHandler) View(c *fiber.Ctx) error {
	sub, err := lookup(c, h.base, h.Catalog.SubCategories)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		return err
	}
	_, msg, expired := fetch(c, h.base, h.Catalog.Categories)
	if expired {
		return c.Redirect("/login")
	}
	parent, _ := h.Catalog.Categories.Find(sub.CategoryID)
	return render(c, "subcategories/view", fiber.Map{"SubCategory": sub, "Parent": parent, "Err": msg})
}

// POST /admin-dashboard/subcategories/:id/delete
func (h *SubCategoryHandler) Delete(c *fiber.Ctx) error {
	return destroy(c, h.base, h.Catalog.SubCategories, services.ResourceSubCategory, "Subcategory", subCategoriesPath)
}
