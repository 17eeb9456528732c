package listview

import (
	"strconv"

	"catalogconsole/internal/domain"
)

// Filter names used in list page queries.
const (
	FilterCategory = "category"
	FilterType     = "type"
	FilterActive   = "active"
)

// Categories searches titles.
func Categories() *Controller[domain.Category] {
	return New([]func(domain.Category) string{
		func(c domain.Category) string { return c.Title },
	})
}

// SubCategories searches titles and filters by parent category.
func SubCategories() *Controller[domain.SubCategory] {
	return New(
		[]func(domain.SubCategory) string{
			func(s domain.SubCategory) string { return s.Title },
		},
		Filter[domain.SubCategory]{Name: FilterCategory, Value: func(s domain.SubCategory) string { return s.CategoryID }},
	)
}

// Products searches model number and description.
func Products() *Controller[domain.Product] {
	return New(
		[]func(domain.Product) string{
			func(p domain.Product) string { return p.ModelNo },
			func(p domain.Product) string { return p.Description },
		},
		Filter[domain.Product]{Name: FilterType, Value: func(p domain.Product) string { return p.CategoryType }},
		Filter[domain.Product]{Name: FilterCategory, Value: func(p domain.Product) string { return p.CategoryRef }},
		Filter[domain.Product]{Name: FilterActive, Value: func(p domain.Product) string { return strconv.FormatBool(p.IsActive) }},
	)
}
