package repository

import (
	"math"
)

// PerPage is the fixed feed page size.
const PerPage = 10

// Page carries pagination metadata for one page of feed results.
type Page struct {
	Number   int
	NumPages int
	HasNext  bool
	HasPrev  bool
}

// pageFor computes pagination for a total row count and a requested page
// number. Requests below 1 clamp to the first page, requests past the end
// clamp to the last page. An empty result set still has one (empty) page.
func pageFor(total int64, requested int) Page {
	numPages := int(math.Ceil(float64(total) / float64(PerPage)))
	if numPages < 1 {
		numPages = 1
	}

	n := requested
	if n < 1 {
		n = 1
	}
	if n > numPages {
		n = numPages
	}

	return Page{
		Number:   n,
		NumPages: numPages,
		HasNext:  n < numPages,
		HasPrev:  n > 1,
	}
}
