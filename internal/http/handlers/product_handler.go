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
	productsPath = DashboardPrefix + "/products"
	productsPage = "products"
)

type ProductHandler struct {
	base
}

var productList = listview.Products()

// GET /admin-dashboard/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	sess := sessionOf(c)
	st, msg := listState(c, sess, productsPage, productList.FilterNames())

	var (
		products []domain.Product
		refs     services.ProductRefs
		fetchMsg string
	)
	var g errgroup.Group
	ctx := h.ctx(c)
	g.Go(func() (err error) {
		products, err = h.Catalog.Products.FetchAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		refs, err = h.Catalog.ProductRefs(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		fetchMsg = apperr.PublicMessage(err)
		products = h.Catalog.Products.Snapshot().Items
		refs = h.staleRefs()
	}

	view := productList.View(&st, products)
	sess.SetListState(productsPage, st)

	return render(c, "products/list", fiber.Map{
		"View":    view,
		"Refs":    refs,
		"Err":     firstOf(msg, fetchMsg),
		"Loading": h.Catalog.Products.Snapshot().Loading() || h.Catalog.SubCategories.Snapshot().Loading(),
	})
}

func (h *ProductHandler) staleRefs() services.ProductRefs {
	return services.ProductRefs{
		Categories:    h.Catalog.Categories.Snapshot().Items,
		SubCategories: h.Catalog.SubCategories.Snapshot().Items,
		TireKeys:      h.Catalog.TireKeys.Snapshot().Items,
	}
}

func (h *ProductHandler) renderForm(c *fiber.Ctx, draft *form.ProductDraft, msg string, fields map[string]string) error {
	refs, err := h.Catalog.ProductRefs(h.ctx(c))
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		refs = h.staleRefs()
		msg = firstOf(msg, apperr.PublicMessage(err))
	}
	return render(c, "products/form", fiber.Map{
		"Draft":  draft,
		"Refs":   refs,
		"Err":    msg,
		"Fields": fields,
		"IsEdit": draft.ID != "",
	})
}

// GET /admin-dashboard/products/new
func (h *ProductHandler) New(c *fiber.Ctx) error {
	return h.renderForm(c, form.NewProductDraft(), "", nil)
}

// POST /admin-dashboard/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	return h.post(c, "")
}

// GET /admin-dashboard/products/:id/edit
func (h *ProductHandler) Edit(c *fiber.Ctx) error {
	p, err := lookup(c, h.base, h.Catalog.Products)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		return err
	}
	return h.renderForm(c, form.ProductDraftFrom(p), "", nil)
}

// POST /admin-dashboard/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	p, err := lookup(c, h.base, h.Catalog.Products)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		return err
	}
	return h.post(c, p.ID)
}

// post either applies a structural edit to the posted draft and shows it
// again, or saves it.
func (h *ProductHandler) post(c *fiber.Ctx, id string) error {
	draft, err := form.DecodeProduct(id, formValues(c))
	if err != nil {
		msg, fields := rejected(c, err)
		return h.renderForm(c, draft, msg, fields)
	}
	op, err := form.ParseOp(c.FormValue("op"))
	if err != nil {
		msg, _ := rejected(c, err)
		return h.renderForm(c, draft, msg, nil)
	}
	if op.Kind != form.OpSave {
		if err := op.Apply(draft); err != nil {
			msg, _ := rejected(c, err)
			return h.renderForm(c, draft, msg, nil)
		}
		return h.renderForm(c, draft, "", nil)
	}

	out, err := submit(c, h.base, h.Catalog.Products, formKey(services.ResourceProduct, draft.ID), draft)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		msg, fields := rejected(c, err)
		return h.renderForm(c, draft, msg, fields)
	}
	return saved(c, services.ResourceProduct, "Product", out.ID, draft.ID == "", productsPath)
}

// GET /admin-dashboard/products/:id
func (h *ProductHandler) View(c *fiber.Ctx) error {
	p, err := lookup(c, h.base, h.Catalog.Products)
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		return err
	}
	refs, err := h.Catalog.ProductRefs(h.ctx(c))
	msg := ""
	if err != nil {
		if h.authExpired(c, err) {
			return c.Redirect("/login")
		}
		refs, msg = h.staleRefs(), apperr.PublicMessage(err)
	}
	var tireKey *domain.ProductTireKey
	for i := range refs.TireKeys {
		if refs.TireKeys[i].ID == p.TireKey.ID {
			tireKey = &refs.TireKeys[i]
		}
	}
	if tireKey == nil && p.TireKey.Populated() {
		tireKey = &domain.ProductTireKey{ID: p.TireKey.ID, Type: p.TireKey.Type, Color: p.TireKey.Color}
	}
	return render(c, "products/view", fiber.Map{
		"Product": p,
		"RefName": refs.RefTitle(p.CategoryType, p.CategoryRef),
		"TireKey": tireKey,
		"Err":     msg,
	})
}

// POST /admin-dashboard/products/:id/delete
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	return destroy(c, h.base, h.Catalog.Products, services.ResourceProduct, "Product", productsPath)
}
