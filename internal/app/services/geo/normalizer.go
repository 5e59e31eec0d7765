package geo

import (
	"context"
	"errors"
	"strings"

	"staybook/internal/domain/listings"
)

// ErrNoCountry is returned when the geocoder cannot place the text in any
// country. Country is the mandatory partition key for search; admin and
// city only narrow it.
var ErrNoCountry = errors.New("geo: no country resolved for location")

// Geocoded is what the external geocoding collaborator returns. Any field
// may be empty.
type Geocoded struct {
	Country string
	Admin   string
	City    string
}

// Geocoder is the collaborator capability consumed here.
type Geocoder interface {
	Geocode(ctx context.Context, text string) (Geocoded, error)
}

// Filter is the normalized geo predicate derived from a free-text location.
type Filter struct {
	Country string
	Admin   string
	City    string
}

// Normalize turns free-text location input into a structured filter.
func Normalize(ctx context.Context, geocoder Geocoder, location string) (Filter, error) {
	resolved, err := geocoder.Geocode(ctx, location)
	if err != nil {
		return Filter{}, err
	}
	if strings.TrimSpace(resolved.Country) == "" {
		return Filter{}, ErrNoCountry
	}
	return Filter{
		Country: strings.TrimSpace(resolved.Country),
		Admin:   strings.TrimSpace(resolved.Admin),
		City:    strings.TrimSpace(resolved.City),
	}, nil
}

// Region renders the user-facing echo of the filter: "City, Admin, Country"
// with empty segments omitted. Display only, never used for filtering.
func (f Filter) Region() string {
	segments := make([]string, 0, 3)
	for _, segment := range []string{f.City, f.Admin, f.Country} {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return strings.Join(segments, ", ")
}

// Apply copies only the resolved fields onto search params; absent optional
// fields must not constrain the query.
func (f Filter) Apply(params listings.SearchParams) listings.SearchParams {
	params.Country = f.Country
	params.Admin = f.Admin
	params.City = f.City
	return params
}
