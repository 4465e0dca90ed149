package pagination

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	p := FromRequest(req, 8)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 8, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_CustomValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products?page=3&per_page=5", nil)
	p := FromRequest(req, 8)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 5, p.PerPage)
	assert.Equal(t, 10, p.Offset)
}

func TestFromRequest_InvalidValuesFallBack(t *testing.T) {
	for _, q := range []string{"?page=-1", "?page=abc", "?per_page=0", "?per_page=101", "?per_page=x"} {
		t.Run(q, func(t *testing.T) {
			p := FromRequest(httptest.NewRequest(http.MethodGet, "/products"+q, nil), 8)
			assert.Equal(t, 1, p.Page)
			assert.Equal(t, 8, p.PerPage)
		})
	}
}

func TestNewParams_Clamps(t *testing.T) {
	p := NewParams(0, 1000)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPerPage, p.PerPage)

	p = NewParams(2, 0)
	assert.Equal(t, 1, p.PerPage)
	assert.Equal(t, 1, p.Offset)
}

func TestNewResult(t *testing.T) {
	r := NewResult([]int{1, 2, 3}, 20, NewParams(2, 8))

	assert.Equal(t, 20, r.TotalCount)
	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasNext)
	assert.True(t, r.HasPrev)
}

func TestNewResult_NilDataIsEmptySlice(t *testing.T) {
	r := NewResult[int](nil, 0, NewParams(1, 8))
	assert.NotNil(t, r.Data)
	assert.Equal(t, 0, r.TotalPages)
	assert.False(t, r.HasNext)
}

func TestPaginate(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i + 1
	}

	first := Paginate(items, NewParams(1, 8))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, first.Data)
	assert.Equal(t, 3, first.TotalPages)

	last := Paginate(items, NewParams(3, 8))
	assert.Equal(t, []int{17, 18, 19, 20}, last.Data)
	assert.False(t, last.HasNext)

	past := Paginate(items, NewParams(9, 8))
	assert.Empty(t, past.Data)
	assert.Equal(t, 20, past.TotalCount)
}

func TestFromRequest_HugePageDoesNotOverflow(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products?page=9223372036854775807", nil)
	p := FromRequest(req, 8)

	assert.GreaterOrEqual(t, p.Offset, 0)
	assert.Equal(t, math.MaxInt/8, p.Page)

	r := Paginate([]int{1, 2, 3}, p)
	assert.Empty(t, r.Data)
	assert.Equal(t, 3, r.TotalCount)
	assert.False(t, r.HasNext)
	assert.True(t, r.HasPrev)
}

func TestPaginate_NegativeOffsetIsPastTheEnd(t *testing.T) {
	r := Paginate([]int{1, 2, 3}, Params{Page: 2, PerPage: 8, Offset: -16})
	assert.Empty(t, r.Data)
	assert.Equal(t, 3, r.TotalCount)
}
