// Package listview composes search, equality filters and pagination over a
// resource collection for a list page.
package listview

import (
	"strings"

	"catalogconsole/internal/pagination"
)

// FilterAll is the select option meaning "no filter".
const FilterAll = "all"

// Active reports whether a filter value narrows the list.
func Active(value string) bool {
	return value != "" && value != FilterAll
}

// UIState is the per-page, per-session view state. It is never persisted.
type UIState struct {
	Search  string
	Filters map[string]string
	PerPage int
	Page    int
}

func NewState() UIState {
	return UIState{Filters: map[string]string{}, PerPage: pagination.DefaultPageSize, Page: 1}
}

// Clone returns a copy that shares nothing with s.
func (s UIState) Clone() UIState {
	out := s
	out.Filters = make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = v
	}
	return out
}

// SetSearch returns whether the term changed; a change resets the page.
func (s *UIState) SetSearch(term string) bool {
	if term == s.Search {
		return false
	}
	s.Search = term
	s.Page = 1
	return true
}

// SetFilter treats "" and "all" as the same inactive value.
func (s *UIState) SetFilter(name, value string) bool {
	if s.Filters == nil {
		s.Filters = map[string]string{}
	}
	if !Active(value) {
		value = ""
	}
	if s.Filters[name] == value {
		return false
	}
	if value == "" {
		delete(s.Filters, name)
	} else {
		s.Filters[name] = value
	}
	s.Page = 1
	return true
}

// SetPerPage ignores sizes that are not offered.
func (s *UIState) SetPerPage(n int) bool {
	if !pagination.ValidPageSize(n) || n == s.PerPage {
		return false
	}
	s.PerPage = n
	s.Page = 1
	return true
}

func (s *UIState) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	s.Page = n
}

// ClearFilters drops the search term and every filter.
func (s *UIState) ClearFilters() {
	if s.Search == "" && len(s.Filters) == 0 {
		return
	}
	s.Search = ""
	s.Filters = map[string]string{}
	s.Page = 1
}

func (s UIState) HasActiveFilters() bool {
	if strings.TrimSpace(s.Search) != "" {
		return true
	}
	for _, v := range s.Filters {
		if Active(v) {
			return true
		}
	}
	return false
}

// Filter is a named equality predicate over one field.
type Filter[T any] struct {
	Name  string
	Value func(T) string
}

type Controller[T any] struct {
	search  []func(T) string
	filters []Filter[T]
}

// New builds a controller that searches the given fields, case-insensitively.
func New[T any](search []func(T) string, filters ...Filter[T]) *Controller[T] {
	return &Controller[T]{search: search, filters: filters}
}

// FilterNames lists the filters the controller understands, in declaration order.
func (c *Controller[T]) FilterNames() []string {
	out := make([]string, len(c.filters))
	for i, f := range c.filters {
		out[i] = f.Name
	}
	return out
}

// View is everything a list page renders.
type View[T any] struct {
	pagination.Page[T]
	Window           []int
	Total            int
	Filtered         int
	HasActiveFilters bool
	State            UIState
	PageSizes        []int
}

// Filter applies the search term, then every active equality filter.
func (c *Controller[T]) Filter(state UIState, items []T) []T {
	term := strings.ToLower(strings.TrimSpace(state.Search))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if term != "" && !c.matches(it, term) {
			continue
		}
		if !c.passes(it, state.Filters) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (c *Controller[T]) matches(it T, term string) bool {
	for _, field := range c.search {
		if strings.Contains(strings.ToLower(field(it)), term) {
			return true
		}
	}
	return false
}

func (c *Controller[T]) passes(it T, filters map[string]string) bool {
	for _, f := range c.filters {
		want := filters[f.Name]
		if !Active(want) {
			continue
		}
		if f.Value(it) != want {
			return false
		}
	}
	return true
}

// View filters and paginates items. The clamped page is written back to state.
func (c *Controller[T]) View(state *UIState, items []T) View[T] {
	if state.Filters == nil {
		state.Filters = map[string]string{}
	}
	if !pagination.ValidPageSize(state.PerPage) {
		state.PerPage = pagination.DefaultPageSize
	}
	filtered := c.Filter(*state, items)
	page := pagination.Paginate(filtered, state.PerPage, state.Page)
	state.Page = page.CurrentPage

	return View[T]{
		Page:             page,
		Window:           pagination.Window(page.CurrentPage, page.TotalPages),
		Total:            len(items),
		Filtered:         len(filtered),
		HasActiveFilters: state.HasActiveFilters(),
		State:            state.Clone(),
		PageSizes:        pagination.PageSizes,
	}
}
