// Package paging provides the paged result envelope shared by every list endpoint.
package paging

import "gorm.io/gorm"

const (
	// DefaultPageSize is used when a caller does not ask for a page size.
	DefaultPageSize = 12
	// MaxPageSize caps the page size a caller may request.
	MaxPageSize = 100
)

// Params selects one page of a result set. PageNumber is 1-based.
type Params struct {
	PageNumber int `form:"pageNumber" json:"pageNumber"`
	PageSize   int `form:"pageSize" json:"pageSize"`
}

// Normalize fills defaults: page 1 and defaultSize items, capped at MaxPageSize.
func (p Params) Normalize(defaultSize int) Params {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	if p.PageNumber < 1 {
		return 0
	}
	return (p.PageNumber - 1) * p.PageSize
}

// Scope applies offset and limit to a gorm query.
func (p Params) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.PageSize)
}

// Result is the {items, totalCount, pageNumber, pageSize} envelope.
type Result[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
}

// New builds a result, never leaving Items nil.
func New[T any](items []T, total int64, p Params) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:      items,
		TotalCount: total,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}
}

// Map converts each item of a page.
func Map[T, U any](items []T, total int64, p Params, fn func(*T) U) Result[U] {
	out := make([]U, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return New(out, total, p)
}

// TotalPages returns the number of pages needed for TotalCount items.
func (r Result[T]) TotalPages() int {
	if r.PageSize < 1 {
		return 0
	}
	return int((r.TotalCount + int64(r.PageSize) - 1) / int64(r.PageSize))
}

// HasNext reports whether a page follows this one.
func (r Result[T]) HasNext() bool {
	return r.PageNumber < r.TotalPages()
}
