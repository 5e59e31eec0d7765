package listings

import "strings"

// CatalogSort defines a supported ordering for catalog search.
type CatalogSort string

const (
	SortNone           CatalogSort = ""
	SortPriceLowToHigh CatalogSort = "PRICE_LOW_TO_HIGH"
	SortPriceHighToLow CatalogSort = "PRICE_HIGH_TO_LOW"

	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// ParseSort maps an optional filter argument onto a sort; unknown values
// fall back to insertion order rather than erroring.
func ParseSort(raw string) CatalogSort {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(SortPriceLowToHigh):
		return SortPriceLowToHigh
	case string(SortPriceHighToLow):
		return SortPriceHighToLow
	default:
		return SortNone
	}
}

// SearchParams describe catalog filters and paging. Geo fields constrain the
// result only when non-empty: an unresolved admin or city must not narrow
// the query.
type SearchParams struct {
	Country string
	Admin   string
	City    string
	Host    HostID
	Sort    CatalogSort
	Limit   int
	Page    int
}

// Normalized returns a sanitized copy with paging defaults applied.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Page < 0 {
		normalized.Page = 0
	}
	switch normalized.Sort {
	case SortPriceLowToHigh, SortPriceHighToLow:
	default:
		normalized.Sort = SortNone
	}
	return normalized
}

// Skip converts one-based page numbers into a cursor offset.
func (p SearchParams) Skip() int {
	if p.Page > 0 {
		return (p.Page - 1) * p.Limit
	}
	return 0
}

// SearchResult carries one page of hits plus the total size of the
// unpaginated filtered set.
type SearchResult struct {
	Items []*Listing
	Total int
}
