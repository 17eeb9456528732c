package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"catalogconsole/internal/apiclient"
	"catalogconsole/internal/domain"
	applog "catalogconsole/internal/log"
	"catalogconsole/internal/metrics"
	"catalogconsole/internal/store"
)

// Resource names used in store events, metrics and log actions.
const (
	ResourceCategory    = "category"
	ResourceSubCategory = "subcategory"
	ResourceProduct     = "product"
	ResourceTireKey     = "tire_key"
)

// Catalog owns one store per catalog resource for the life of the process.
type Catalog struct {
	Categories    *store.Store[domain.Category, domain.CategoryPayload]
	SubCategories *store.Store[domain.SubCategory, domain.SubCategoryPayload]
	Products      *store.Store[domain.Product, domain.ProductPayload]
	TireKeys      *store.Store[domain.ProductTireKey, struct{}]

	unsubscribe []func()
}

func NewCatalog(api *apiclient.Client, m *metrics.ConsoleMetrics, timeout time.Duration) *Catalog {
	opts := []store.Option{store.WithTimeout(timeout)}
	cats := api.Categories()
	subs := api.SubCategories()
	prods := api.Products()

	c := &Catalog{
		Categories:    store.New[domain.Category, domain.CategoryPayload](ResourceCategory, cats, cats, opts...),
		SubCategories: store.New[domain.SubCategory, domain.SubCategoryPayload](ResourceSubCategory, subs, subs, opts...),
		Products:      store.New[domain.Product, domain.ProductPayload](ResourceProduct, prods, prods, opts...),
		TireKeys:      store.NewReadOnly[domain.ProductTireKey](ResourceTireKey, api.TireKeys(), opts...),
	}
	for _, sub := range []func(func(store.Event)) func(){
		c.Categories.Subscribe, c.SubCategories.Subscribe, c.Products.Subscribe, c.TireKeys.Subscribe,
	} {
		c.unsubscribe = append(c.unsubscribe, sub(m.ObserveStore), sub(logFailure))
	}
	return c
}

func logFailure(ev store.Event) {
	if ev.Phase != store.PhaseRejected {
		return
	}
	fields := map[string]any{"duration_ms": ev.Duration.Milliseconds()}
	if ev.ID != "" {
		fields["id"] = ev.ID
	}
	applog.Error(nil, "store."+ev.Resource+"."+string(ev.Op)+".fail", ev.Err, fields)
}

// Close detaches the metrics and logging listeners.
func (c *Catalog) Close() {
	for _, fn := range c.unsubscribe {
		fn()
	}
	c.unsubscribe = nil
}

type Counts struct {
	Categories    int
	SubCategories int
	Products      int
	ActiveProduct int
	TireKeys      int
}

// Counts refreshes every store in parallel for the dashboard. The group has
// no shared cancel so one failing store leaves the others' results intact.
func (c *Catalog) Counts(ctx context.Context) (Counts, error) {
	var out Counts
	var g errgroup.Group
	g.Go(func() error {
		items, err := c.Categories.FetchAll(ctx)
		out.Categories = len(items)
		return err
	})
	g.Go(func() error {
		items, err := c.SubCategories.FetchAll(ctx)
		out.SubCategories = len(items)
		return err
	})
	g.Go(func() error {
		items, err := c.Products.FetchAll(ctx)
		out.Products = len(items)
		out.ActiveProduct = countActive(items)
		return err
	})
	g.Go(func() error {
		items, err := c.TireKeys.FetchAll(ctx)
		out.TireKeys = len(items)
		return err
	})
	return out, g.Wait()
}

// SnapshotCounts counts what the stores currently hold, without fetching.
func (c *Catalog) SnapshotCounts() Counts {
	products := c.Products.Snapshot().Items
	return Counts{
		Categories:    len(c.Categories.Snapshot().Items),
		SubCategories: len(c.SubCategories.Snapshot().Items),
		Products:      len(products),
		ActiveProduct: countActive(products),
		TireKeys:      len(c.TireKeys.Snapshot().Items),
	}
}

func countActive(items []domain.Product) int {
	n := 0
	for _, p := range items {
		if p.IsActive {
			n++
		}
	}
	return n
}

// ProductRefs are the lookups the product pages need besides products.
type ProductRefs struct {
	Categories    []domain.Category
	SubCategories []domain.SubCategory
	TireKeys      []domain.ProductTireKey
}

// ProductRefs loads categories, subcategories and tire keys together.
func (c *Catalog) ProductRefs(ctx context.Context) (ProductRefs, error) {
	var out ProductRefs
	var g errgroup.Group
	g.Go(func() (err error) {
		out.Categories, err = c.Categories.FetchAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.SubCategories, err = c.SubCategories.FetchAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.TireKeys, err = c.TireKeys.FetchAll(ctx)
		return err
	})
	return out, g.Wait()
}

// RefTitle names the category or subcategory a product hangs off.
func (r ProductRefs) RefTitle(categoryType, ref string) string {
	if categoryType == domain.CategoryTypeCategory {
		for _, c := range r.Categories {
			if c.ID == ref {
				return c.Title
			}
		}
		return ""
	}
	for _, s := range r.SubCategories {
		if s.ID == ref {
			return s.Title
		}
	}
	return ""
}

// CategoryTitles maps category ids to titles from the current store items.
func (c *Catalog) CategoryTitles() map[string]string {
	snap := c.Categories.Snapshot()
	out := make(map[string]string, len(snap.Items))
	for _, cat := range snap.Items {
		out[cat.ID] = cat.Title
	}
	return out
}
