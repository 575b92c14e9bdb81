// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size used by list endpoints when ?limit is absent.
const DefaultLimit = 10

// GalleryLimit is the default page size of the image pickers (a 3x3 grid).
const GalleryLimit = 9

// MaxLimit caps ?limit so one request cannot pull a whole collection.
const MaxLimit = 100

// Page is a 1-based offset page.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Parse reads ?page and ?limit. Missing or invalid values fall back to page 1
// and defaultLimit; limit is capped at MaxLimit.
func Parse(r *http.Request, defaultLimit int) Page {
	p := Page{Page: 1, Limit: defaultLimit}
	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n >= 1 {
		p.Limit = n
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Skip is the number of documents before this page.
func (p Page) Skip() int64 {
	if p.Page < 1 {
		return 0
	}
	return int64((p.Page - 1) * p.Limit)
}

// Apply sets skip and limit on a find.
func (p Page) Apply(find *options.FindOptions) *options.FindOptions {
	return find.SetSkip(p.Skip()).SetLimit(int64(p.Limit))
}

// TotalPages returns how many pages total documents span.
func (p Page) TotalPages(total int64) int64 {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return (total + int64(p.Limit) - 1) / int64(p.Limit)
}
