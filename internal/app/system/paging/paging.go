// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
)

// DefaultPageSize is the number of rows returned when the client does not
// ask for a specific limit.
const DefaultPageSize = 20

// MaxPageSize caps client-requested limits.
const MaxPageSize = 100

// Page holds parsed pagination parameters (1-based page number).
type Page struct {
	Page  int
	Limit int
}

// Parse extracts "page" and "limit" query parameters with defaults and caps.
func Parse(r *http.Request) Page {
	p := Page{Page: 1, Limit: DefaultPageSize}

	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			p.Page = n
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 {
			if n > MaxPageSize {
				n = MaxPageSize
			}
			p.Limit = n
		}
	}
	return p
}

// Skip returns the number of documents to skip for Mongo Find().SetSkip().
func (p Page) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// LookAhead returns Limit+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func (p Page) LookAhead() int64 {
	return int64(p.Limit + 1)
}

// Trim trims a slice fetched with LookAhead back to the page size and
// reports whether a next page exists.
func Trim[T any](items []T, limit int) ([]T, bool) {
	if len(items) > limit {
		return items[:limit], true
	}
	return items, false
}

// Meta is the pagination block included in list responses.
type Meta struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasNext bool `json:"has_next"`
}

// MetaFor builds the response metadata for a trimmed page.
func MetaFor(p Page, hasNext bool) Meta {
	return Meta{Page: p.Page, Limit: p.Limit, HasNext: hasNext}
}
