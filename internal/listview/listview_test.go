package listview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogconsole/internal/domain"
)

func categories(n int) []domain.Category {
	out := make([]domain.Category, n)
	for i := range out {
		out[i] = domain.Category{ID: fmt.Sprintf("c%d", i+1), Title: fmt.Sprintf("Category %02d", i+1)}
	}
	return out
}

func TestSearchResetsPageAndFilters(t *testing.T) {
	items := categories(23)
	items[4].Title = "Tire Rims"
	items[17].Title = "tire valves"
	ctrl := Categories()
	state := NewState()

	state.SetPage(3)
	view := ctrl.View(&state, items)
	require.Equal(t, 3, view.CurrentPage)
	assert.Len(t, view.Items, 3)

	state.SetSearch("TIRE")
	assert.Equal(t, 1, state.Page)
	view = ctrl.View(&state, items)
	assert.Equal(t, 2, view.Filtered)
	assert.Equal(t, 23, view.Total)
	assert.Equal(t, 1, view.TotalPages)
	assert.True(t, view.HasActiveFilters)
	assert.Equal(t, []string{"c5", "c18"}, []string{view.Items[0].ID, view.Items[1].ID})
}

func TestSetterOnlyResetsOnChange(t *testing.T) {
	state := NewState()
	state.SetSearch("a")
	state.SetPage(4)

	assert.False(t, state.SetSearch("a"))
	assert.Equal(t, 4, state.Page)
	assert.False(t, state.SetFilter(FilterCategory, FilterAll))
	assert.Equal(t, 4, state.Page)

	assert.True(t, state.SetFilter(FilterCategory, "c1"))
	assert.Equal(t, 1, state.Page)

	state.SetPage(2)
	assert.True(t, state.SetPerPage(25))
	assert.Equal(t, 1, state.Page)

	state.SetPage(2)
	assert.False(t, state.SetPerPage(7))
	assert.Equal(t, 25, state.PerPage)
	assert.Equal(t, 2, state.Page)
}

func TestAllAndEmptyAreInactive(t *testing.T) {
	subs := []domain.SubCategory{
		{ID: "s1", Title: "Summer", CategoryID: "c1"},
		{ID: "s2", Title: "Winter", CategoryID: "c2"},
	}
	ctrl := SubCategories()

	state := NewState()
	state.SetFilter(FilterCategory, "c2")
	view := ctrl.View(&state, subs)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "s2", view.Items[0].ID)

	state.SetFilter(FilterCategory, FilterAll)
	view = ctrl.View(&state, subs)
	assert.Len(t, view.Items, 2)
	assert.False(t, view.HasActiveFilters)
}

func TestProductFiltersCompose(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", ModelNo: "AX-100", Description: "all season", CategoryType: "subcategory", CategoryRef: "s1", IsActive: true},
		{ID: "p2", ModelNo: "BX-200", Description: "Winter grip", CategoryType: "category", CategoryRef: "c1", IsActive: true},
		{ID: "p3", ModelNo: "CX-300", Description: "winter touring", CategoryType: "subcategory", CategoryRef: "s1", IsActive: false},
	}
	ctrl := Products()

	state := NewState()
	state.SetSearch("winter")
	assert.Len(t, ctrl.View(&state, products).Items, 2)

	state.SetFilter(FilterType, "subcategory")
	view := ctrl.View(&state, products)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "p3", view.Items[0].ID)

	state.SetFilter(FilterActive, "true")
	assert.Empty(t, ctrl.View(&state, products).Items)

	state.ClearFilters()
	assert.Len(t, ctrl.View(&state, products).Items, 3)

	state.SetSearch("ax-1")
	assert.Len(t, ctrl.View(&state, products).Items, 1)
}

func TestViewClampsPageWhenListShrinks(t *testing.T) {
	ctrl := Categories()
	state := NewState()
	state.SetPage(3)

	view := ctrl.View(&state, categories(12))
	assert.Equal(t, 2, view.CurrentPage)
	assert.Equal(t, 2, state.Page)

	view = ctrl.View(&state, nil)
	assert.Equal(t, 1, view.CurrentPage)
	assert.Equal(t, 0, view.TotalPages)
	assert.Nil(t, view.Window)
}

func TestViewStateIsACopy(t *testing.T) {
	ctrl := SubCategories()
	state := NewState()
	state.SetFilter(FilterCategory, "c1")

	view := ctrl.View(&state, nil)
	view.State.Filters[FilterCategory] = "changed"
	assert.Equal(t, "c1", state.Filters[FilterCategory])
}

func TestApplyParams(t *testing.T) {
	names := Products().FilterNames()
	state := NewState()

	state.Apply(ParseParams(map[string]string{"page": "3"}, names))
	assert.Equal(t, 3, state.Page)

	// page is ignored when anything else changes in the same request
	state.Apply(ParseParams(map[string]string{"q": " grip ", "page": "2"}, names))
	assert.Equal(t, "grip", state.Search)
	assert.Equal(t, 1, state.Page)

	state.Apply(ParseParams(map[string]string{"q": "grip", "page": "2"}, names))
	assert.Equal(t, 2, state.Page)

	state.Apply(ParseParams(map[string]string{"category": "c1", "per_page": "50"}, names))
	assert.Equal(t, "c1", state.Filters[FilterCategory])
	assert.Equal(t, 50, state.PerPage)
	assert.Equal(t, 1, state.Page)

	state.Apply(ParseParams(map[string]string{"per_page": "9"}, names))
	assert.Equal(t, 10, state.PerPage)

	state.Apply(ParseParams(map[string]string{"category": "<script>"}, names))
	assert.Equal(t, "c1", state.Filters[FilterCategory])

	state.Apply(ParseParams(map[string]string{"clear": "1"}, names))
	assert.False(t, state.HasActiveFilters())
	assert.Equal(t, 10, state.PerPage)
}

func TestParseParamsIgnoresUnknownFilters(t *testing.T) {
	p := ParseParams(map[string]string{"category": "c1", "color": "red"}, Categories().FilterNames())
	assert.Nil(t, p.Filters)
}
