package pagination

import "math"

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage keeps the row offset within a 32-bit integer.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// Params is a 1-indexed, offset-based page request.
type Params struct {
	Page    int
	PerPage int
}

// New normalises raw page values: page defaults to 1 and is clamped to
// MaxPage, per_page defaults to DefaultPerPage and is clamped to MaxPerPage.
func New(page, perPage int) Params {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Meta is the pagination block returned alongside list results.
type Meta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

func NewMeta(p Params, total int64) Meta {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
	return Meta{
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   total,
		Pages:   pages,
		HasNext: p.Page < pages,
		HasPrev: p.Page > 1,
	}
}
