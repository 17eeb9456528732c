package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginateTwentyThreeItems(t *testing.T) {
	items := seq(23)

	first := Paginate(items, 10, 1)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, items[0:10], first.Items)
	assert.Equal(t, 1, first.From)
	assert.Equal(t, 10, first.To)

	last := Paginate(items, 10, 3)
	assert.Equal(t, []int{20, 21, 22}, last.Items)
	assert.Equal(t, 21, last.From)
	assert.Equal(t, 23, last.To)
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrev())
}

func TestPaginateReconstructsSequence(t *testing.T) {
	for n := 0; n <= 40; n++ {
		for size := 1; size <= 12; size++ {
			items := seq(n)
			total := TotalPages(n, size)

			var rebuilt []int
			for page := 1; page <= total; page++ {
				rebuilt = append(rebuilt, Paginate(items, size, page).Items...)
			}
			if n == 0 {
				require.Empty(t, rebuilt)
				continue
			}
			require.Equal(t, items, rebuilt, "n=%d size=%d", n, size)
		}
	}
}

func TestClampStaysInRange(t *testing.T) {
	for total := 0; total <= 6; total++ {
		upper := total
		if upper < 1 {
			upper = 1
		}
		for page := -3; page <= 10; page++ {
			got := Clamp(page, total)
			require.GreaterOrEqual(t, got, 1)
			require.LessOrEqual(t, got, upper)
		}
	}
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate([]string{}, 10, 4)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Empty(t, p.Items)
	assert.NotNil(t, p.Items)
	assert.False(t, p.ShowPager())
	assert.Equal(t, 0, p.From)
}

func TestPaginateNonPositiveSizeActsAsOne(t *testing.T) {
	p := Paginate([]string{"a", "b", "c"}, 0, 2)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, []string{"b"}, p.Items)

	assert.Equal(t, 3, TotalPages(3, -5))
}

func TestPaginateClampsOutOfRangePage(t *testing.T) {
	p := Paginate(seq(12), 5, 99)
	assert.Equal(t, 3, p.CurrentPage)
	assert.Equal(t, []int{10, 11}, p.Items)
}

func TestWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 0, nil},
		{1, 3, []int{1, 2, 3}},
		{2, 5, []int{1, 2, 3, 4, 5}},
		{1, 10, []int{1, 2, 3, 4, 5}},
		{3, 10, []int{1, 2, 3, 4, 5}},
		{4, 10, []int{2, 3, 4, 5, 6}},
		{7, 10, []int{5, 6, 7, 8, 9}},
		{8, 10, []int{6, 7, 8, 9, 10}},
		{10, 10, []int{6, 7, 8, 9, 10}},
		{42, 10, []int{6, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Window(tt.current, tt.total), "current=%d total=%d", tt.current, tt.total)
	}
}

func TestValidPageSize(t *testing.T) {
	assert.True(t, ValidPageSize(25))
	assert.False(t, ValidPageSize(7))
}
