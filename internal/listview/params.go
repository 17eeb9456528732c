package listview

import (
	"catalogconsole/internal/validate"
)

// Params are the list controls carried by a request. A nil field was absent.
type Params struct {
	Search  *string
	Filters map[string]string
	PerPage *int
	Page    *int
	Clear   bool
}

// ParseParams reads q, per_page, page, clear and the named filters from a
// query map. Values that fail validation are dropped.
func ParseParams(query map[string]string, filterNames []string) Params {
	var p Params
	if raw, ok := query["q"]; ok {
		if q, ok := validate.Q(raw); ok {
			p.Search = &q
		}
	}
	for _, name := range filterNames {
		raw, ok := query[name]
		if !ok {
			continue
		}
		if v, ok := validate.FilterValue(raw); ok {
			if p.Filters == nil {
				p.Filters = map[string]string{}
			}
			p.Filters[name] = v
		}
	}
	if raw, ok := query["per_page"]; ok {
		n := validate.PageSize(raw)
		p.PerPage = &n
	}
	if raw, ok := query["page"]; ok {
		n := validate.Page(raw)
		p.Page = &n
	}
	_, p.Clear = query["clear"]
	return p
}

// Apply folds p into s. A requested page is honoured only when nothing else
// changed, since any other change resets the page to 1.
func (s *UIState) Apply(p Params) {
	if p.Clear {
		s.ClearFilters()
		return
	}
	changed := false
	if p.Search != nil && s.SetSearch(*p.Search) {
		changed = true
	}
	for name, v := range p.Filters {
		if s.SetFilter(name, v) {
			changed = true
		}
	}
	if p.PerPage != nil && s.SetPerPage(*p.PerPage) {
		changed = true
	}
	if p.Page != nil && !changed {
		s.SetPage(*p.Page)
	}
}
