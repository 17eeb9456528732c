package pagination

const (
	// DefaultPageSize is used by list pages when none is chosen.
	DefaultPageSize = 10
	// WindowSize is how many page numbers the pager shows at once.
	WindowSize = 5
)

// PageSizes are the per-page options offered on list pages.
var PageSizes = []int{5, 10, 25, 50}

// Page is one rendered slice of a sequence.
type Page[T any] struct {
	Items       []T
	TotalItems  int
	TotalPages  int
	CurrentPage int
	PageSize    int
	// From and To are 1-based positions of the first and last item shown, 0 when empty.
	From int
	To   int
}

func (p Page[T]) HasPrev() bool { return p.CurrentPage > 1 }
func (p Page[T]) HasNext() bool { return p.CurrentPage < p.TotalPages }
func (p Page[T]) Prev() int     { return Clamp(p.CurrentPage-1, p.TotalPages) }
func (p Page[T]) Next() int     { return Clamp(p.CurrentPage+1, p.TotalPages) }

// ShowPager mirrors the pager bar rule: nothing to render for a single page.
func (p Page[T]) ShowPager() bool { return p.TotalPages > 1 }

func normalizeSize(pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	return pageSize
}

// TotalPages is ceil(n / pageSize); a non-positive pageSize counts as 1.
func TotalPages(n, pageSize int) int {
	if n <= 0 {
		return 0
	}
	size := normalizeSize(pageSize)
	return (n + size - 1) / size
}

// Clamp moves page into [1, max(1, totalPages)].
func Clamp(page, totalPages int) int {
	upper := totalPages
	if upper < 1 {
		upper = 1
	}
	switch {
	case page < 1:
		return 1
	case page > upper:
		return upper
	default:
		return page
	}
}

// Paginate slices seq for currentPage after clamping it.
func Paginate[T any](seq []T, pageSize, currentPage int) Page[T] {
	size := normalizeSize(pageSize)
	total := TotalPages(len(seq), size)
	page := Clamp(currentPage, total)

	p := Page[T]{
		Items:       []T{},
		TotalItems:  len(seq),
		TotalPages:  total,
		CurrentPage: page,
		PageSize:    size,
	}
	if total == 0 {
		return p
	}
	start := (page - 1) * size
	end := start + size
	if end > len(seq) {
		end = len(seq)
	}
	p.Items = seq[start:end]
	p.From = start + 1
	p.To = end
	return p
}

// Window returns the page numbers to show around current: the first five
// while current is within the first three pages, the last five within the
// last three, otherwise current-2..current+2.
func Window(current, totalPages int) []int {
	if totalPages <= 0 {
		return nil
	}
	current = Clamp(current, totalPages)
	n := WindowSize
	if totalPages < n {
		n = totalPages
	}

	var first int
	switch {
	case totalPages <= WindowSize:
		first = 1
	case current <= 3:
		first = 1
	case current >= totalPages-2:
		first = totalPages - WindowSize + 1
	default:
		first = current - 2
	}

	out := make([]int, n)
	for i := range out {
		out[i] = first + i
	}
	return out
}

// ValidPageSize reports whether size is one of the offered options.
func ValidPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}
