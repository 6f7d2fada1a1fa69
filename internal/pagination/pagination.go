// Package pagination implements the page/pageSize contract shared by every
// listing endpoint.
package pagination

import (
	"math"
	"strconv"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 5
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*pageSize inside an int32.
	MaxPage = math.MaxInt32 / MaxPageSize
)

type Request struct {
	Page     int
	PageSize int
}

// Pagination is the block returned next to every paginated list.
type Pagination struct {
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	HasPre      bool   `json:"has_pre"`
	HasNext     bool   `json:"has_next"`
	Category    string `json:"category"`
}

// Parse coerces raw query values. Anything non-numeric falls back to the
// defaults; out-of-range values are clamped.
func Parse(page, pageSize string) Request {
	p, err := strconv.Atoi(page)
	if err != nil {
		p = DefaultPage
	}
	s, err := strconv.Atoi(pageSize)
	if err != nil {
		s = DefaultPageSize
	}
	return Normalize(p, s)
}

func Normalize(page, pageSize int) Request {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Request{Page: page, PageSize: pageSize}
}

func (r Request) Offset() int { return (r.Page - 1) * r.PageSize }

func (r Request) Limit() int { return r.PageSize }

func New(req Request, totalCount int) Pagination {
	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + req.PageSize - 1) / req.PageSize
	}
	return Pagination{
		TotalPages:  totalPages,
		CurrentPage: req.Page,
		HasPre:      req.Page > 1,
		HasNext:     req.Page < totalPages,
	}
}

// Slice returns the page of items selected by req. It never returns nil.
func Slice[T any](items []T, req Request) []T {
	start := req.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + req.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
