package jsonapi

import (
	"net/url"
	"strconv"
)

// Pagination holds pagination state for generating metadata.
type Pagination struct {
	Total   int64 // Total number of items
	Page    int   // Current page number (1-based)
	PerPage int   // Items per page
}

// NewPagination creates a Pagination, normalizing out-of-range values.
func NewPagination(total int64, page, perPage int) *Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	return &Pagination{Total: total, Page: page, PerPage: perPage}
}

// TotalPages returns the total number of pages, at least 1.
func (p *Pagination) TotalPages() int {
	if p.Total == 0 {
		return 1
	}
	pages := int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Meta returns pagination metadata for the response envelope.
func (p *Pagination) Meta() Meta {
	return Meta{
		"total":    p.Total,
		"page":     p.Page,
		"per_page": p.PerPage,
		"pages":    p.TotalPages(),
	}
}

// ParsePaginationParams extracts page and limit from URL query values,
// falling back to defaults and capping limit at max.
func ParsePaginationParams(query url.Values, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage

	if v := query.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := query.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			perPage = n
		}
	}

	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
