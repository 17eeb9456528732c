package guard

import "catalogconsole/internal/domain"

type Permission string

const (
	UserCreate Permission = "user:create"
	UserView   Permission = "user:view"
	UserUpdate Permission = "user:update"
	UserDelete Permission = "user:delete"

	CategoryCreate Permission = "category:create"
	CategoryView   Permission = "category:view"
	CategoryUpdate Permission = "category:update"
	CategoryDelete Permission = "category:delete"

	SubCategoryCreate Permission = "subcategory:create"
	SubCategoryView   Permission = "subcategory:view"
	SubCategoryUpdate Permission = "subcategory:update"
	SubCategoryDelete Permission = "subcategory:delete"

	ProductCreate Permission = "product:create"
	ProductView   Permission = "product:view"
	ProductUpdate Permission = "product:update"
	ProductDelete Permission = "product:delete"
)

// Policy maps a role to the permissions it holds.
type Policy map[string]map[Permission]bool

func grant(perms ...Permission) map[Permission]bool {
	m := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		m[p] = true
	}
	return m
}

// DefaultPolicy: admins manage everything, plain users only read the catalog.
var DefaultPolicy = Policy{
	domain.RoleAdmin: grant(
		UserCreate, UserView, UserUpdate, UserDelete,
		CategoryCreate, CategoryView, CategoryUpdate, CategoryDelete,
		SubCategoryCreate, SubCategoryView, SubCategoryUpdate, SubCategoryDelete,
		ProductCreate, ProductView, ProductUpdate, ProductDelete,
	),
	domain.RoleUser: grant(CategoryView, SubCategoryView, ProductView),
}

func (p Policy) Can(role string, perm Permission) bool {
	return p[role][perm]
}

func Can(role string, perm Permission) bool { return DefaultPolicy.Can(role, perm) }
