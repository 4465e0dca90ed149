package pagination

import (
	"math"
	"net/http"
	"strconv"
)

// MaxPerPage caps the page size a caller may request.
const MaxPerPage = 100

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// NewParams builds Params for page with perPage items, normalising
// out-of-range values.
func NewParams(page, perPage int) Params {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	// Keep the offset representable.
	if page > math.MaxInt/perPage {
		page = math.MaxInt / perPage
	}
	return Params{Page: page, PerPage: perPage, Offset: (page - 1) * perPage}
}

// FromRequest reads ?page= and ?per_page= from r. Missing or invalid values
// fall back to page 1 and defaultPerPage.
func FromRequest(r *http.Request, defaultPerPage int) Params {
	page, perPage := 1, defaultPerPage

	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 && v <= MaxPerPage {
		perPage = v
	}

	return NewParams(page, perPage)
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult creates a paginated result for one page of a larger set.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	totalPages := totalCount / params.PerPage
	if totalCount%params.PerPage > 0 {
		totalPages++
	}
	if data == nil {
		data = []T{}
	}

	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}

// Paginate slices an in-memory collection. A page past the end is empty.
func Paginate[T any](items []T, params Params) Result[T] {
	start := params.Offset
	if start < 0 || start > len(items) {
		start = len(items)
	}
	end := start + params.PerPage
	if end < start || end > len(items) {
		end = len(items)
	}
	return NewResult(items[start:end], len(items), params)
}
