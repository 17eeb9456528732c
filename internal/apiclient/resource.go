package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"catalogconsole/internal/domain"
	"catalogconsole/internal/validate"
)

// Resource is the CRUD surface of one REST collection. P is the create and update payload.
type Resource[T, P any] struct {
	client *Client
	path   string
}

func NewResource[T, P any](c *Client, path string) *Resource[T, P] {
	return &Resource[T, P]{client: c, path: path}
}

func (c *Client) Categories() *Resource[domain.Category, domain.CategoryPayload] {
	return NewResource[domain.Category, domain.CategoryPayload](c, "/categories")
}

func (c *Client) SubCategories() *Resource[domain.SubCategory, domain.SubCategoryPayload] {
	return NewResource[domain.SubCategory, domain.SubCategoryPayload](c, "/subcategories")
}

func (c *Client) Products() *Resource[domain.Product, domain.ProductPayload] {
	return NewResource[domain.Product, domain.ProductPayload](c, "/products")
}

// TireKeys is list-only; the payload type is never sent.
func (c *Client) TireKeys() *Resource[domain.ProductTireKey, struct{}] {
	return NewResource[domain.ProductTireKey, struct{}](c, "/product-tire-keys")
}

func (r *Resource[T, P]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r *Resource[T, P]) List(ctx context.Context) ([]T, error) {
	res, err := r.client.do(ctx, http.MethodGet, r.path, nil)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := decodeEnvelope(res.body, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	if err := validate.Each(items); err != nil {
		return nil, malformed(err)
	}
	return items, nil
}

func (r *Resource[T, P]) Get(ctx context.Context, id string) (T, error) {
	return r.one(ctx, http.MethodGet, r.itemPath(id), nil)
}

func (r *Resource[T, P]) Create(ctx context.Context, payload P) (T, error) {
	return r.one(ctx, http.MethodPost, r.path, payload)
}

// Update sends a partial update (PATCH).
func (r *Resource[T, P]) Update(ctx context.Context, id string, payload P) (T, error) {
	return r.one(ctx, http.MethodPatch, r.itemPath(id), payload)
}

// Delete ignores the response body.
func (r *Resource[T, P]) Delete(ctx context.Context, id string) error {
	_, err := r.client.do(ctx, http.MethodDelete, r.itemPath(id), nil)
	return err
}

func (r *Resource[T, P]) one(ctx context.Context, method, path string, in any) (T, error) {
	var out T
	res, err := r.client.do(ctx, method, path, in)
	if err != nil {
		return out, err
	}
	if err := decodeEnvelope(res.body, &out); err != nil {
		return out, err
	}
	if err := validate.Struct(&out); err != nil {
		var zero T
		return zero, malformed(err)
	}
	return out, nil
}
