package resolve

import (
	"context"
	"strings"

	"staybook/internal/app/services/geo"
	domainlistings "staybook/internal/domain/listings"
)

// CatalogPage is the listings search response: one page of results, the
// total size of the unpaginated filtered set, and the display region echo.
type CatalogPage struct {
	Total  int
	Result []*domainlistings.Listing
	Region string
}

// Listings resolves the search query. The geo filter applies only when a
// location was supplied; filter selects the price ordering; a non-empty
// host narrows the catalog to one host's listings.
func (p *Pipeline) Listings(ctx context.Context, location, filter, host string, limit, page int) (CatalogPage, error) {
	params := domainlistings.SearchParams{
		Host:  domainlistings.HostID(host),
		Sort:  domainlistings.ParseSort(filter),
		Limit: limit,
		Page:  page,
	}

	region := ""
	if strings.TrimSpace(location) != "" {
		geoFilter, err := geo.Normalize(ctx, p.Geocoder, location)
		if err != nil {
			return CatalogPage{}, err
		}
		params = geoFilter.Apply(params)
		region = geoFilter.Region()
	}

	unit, ctx, err := p.begin(ctx, true)
	if err != nil {
		return CatalogPage{}, err
	}
	defer unit.Rollback(ctx)

	result, err := unit.Listings().Search(ctx, params)
	if err != nil {
		return CatalogPage{}, err
	}
	return CatalogPage{Total: result.Total, Result: result.Items, Region: region}, nil
}
