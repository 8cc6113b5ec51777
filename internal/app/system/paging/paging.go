// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows in a paged list.
const PageSize = 50

// Page is a 1-based page number together with its size.
type Page struct {
	Number int
	Size   int
}

// ParsePage reads the "page" query parameter. Missing, malformed or
// non-positive values yield page 1.
func ParsePage(r *http.Request) Page {
	p := Page{Number: 1, Size: PageSize}
	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n > 0 {
		p.Number = n
	}
	return p
}

// Limit returns the page size as int64 for Mongo Find().SetLimit().
func (p Page) Limit() int64 { return int64(p.Size) }

// Offset returns the number of rows before this page.
func (p Page) Offset() int64 { return int64(p.Number-1) * int64(p.Size) }

// TotalPages returns how many pages hold total rows. Zero rows is zero pages.
func (p Page) TotalPages(total int64) int {
	if total <= 0 || p.Size <= 0 {
		return 0
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}

// Range holds the 1-based indexes of the rows shown on a page.
type Range struct {
	Start int `json:"start"` // 0 if no results
	End   int `json:"end"`   // 0 if no results
}

// ComputeRange calculates the display range for a page showing shown rows.
func (p Page) ComputeRange(shown int) Range {
	if shown == 0 {
		return Range{}
	}
	start := int(p.Offset()) + 1
	return Range{Start: start, End: start + shown - 1}
}
