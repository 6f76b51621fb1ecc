package shared

import "strconv"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// ParsePage reads a 1-based page number, defaulting to 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// NewPagination computes pagination metadata.
func NewPagination(page, pageSize, total int) Pagination {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	pageCount := (total + pageSize - 1) / pageSize
	return Pagination{Page: page, PageSize: pageSize, PageCount: pageCount, Total: total}
}

// Offset returns the zero-based row offset of the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// HasPrev reports whether an earlier page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.PageCount
}
