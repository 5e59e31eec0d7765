package resolve

import (
	"context"
	"errors"
	"sync"

	"staybook/internal/app/viewer"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
)

// ListingView is a resolved listing plus the per-request authorized flag.
// The flag is computed here and lives only in the response.
type ListingView struct {
	Listing    *domainlistings.Listing
	Authorized bool
}

// BookingsPage is one page of a listing's bookings with the unpaginated
// total. A nil page (distinct from an empty one) means the viewer was not
// allowed to see bookings at all.
type BookingsPage struct {
	Total  int
	Result []*domainbooking.Booking
}

// Listing resolves the top-level listing query.
func (p *Pipeline) Listing(ctx context.Context, v viewer.Viewer, id string) (ListingView, error) {
	unit, ctx, err := p.begin(ctx, true)
	if err != nil {
		return ListingView{}, err
	}
	defer unit.Rollback(ctx)

	listing, err := p.loadListing(ctx, unit, id)
	if err != nil {
		return ListingView{}, err
	}
	return ListingView{Listing: listing, Authorized: viewer.IsAuthorized(v, listing)}, nil
}

// ListingBookings resolves the ownership-gated bookings field. Unauthorized
// viewers get nil, not an error: hiding the data is the correct answer, the
// request itself was fine.
func (p *Pipeline) ListingBookings(ctx context.Context, v viewer.Viewer, listing *domainlistings.Listing, limit, page int) (*BookingsPage, error) {
	if !viewer.IsAuthorized(v, listing) {
		return nil, nil
	}
	unit, ctx, err := p.begin(ctx, true)
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	return p.bookingsPage(ctx, unit, listing, limit, page)
}

func (p *Pipeline) bookingsPage(ctx context.Context, unit unitOfWork, listing *domainlistings.Listing, limit, page int) (*BookingsPage, error) {
	ids := paginateIDs(listing.Bookings, limit, page)
	result, err := unit.Bookings().ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	// Total reflects the whole booking set, not the returned page.
	return &BookingsPage{Total: len(listing.Bookings), Result: result}, nil
}

// ListingHost resolves the public host profile. A missing host record is a
// storage-integrity failure, reported rather than swallowed.
func (p *Pipeline) ListingHost(ctx context.Context, listing *domainlistings.Listing) (*domainuser.User, error) {
	unit, ctx, err := p.begin(ctx, true)
	if err != nil {
		return nil, err
	}
	defer unit.Rollback(ctx)
	return p.loadHost(ctx, unit, listing)
}

func (p *Pipeline) loadHost(ctx context.Context, unit unitOfWork, listing *domainlistings.Listing) (*domainuser.User, error) {
	host, err := unit.Users().ByID(ctx, domainuser.ID(listing.Host))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			p.logError("listing references missing host", ErrHostMissing, "listing_id", listing.ID, "host_id", listing.Host)
			return nil, ErrHostMissing
		}
		return nil, err
	}
	return host, nil
}

// ListingDetail resolves the listing with its host and bookings fields in
// one round. Authorized is computed first; the two sibling fields then
// resolve concurrently against that fixed value, each inside its own read
// unit. A unit is bound to one transaction context and must not be shared
// across goroutines.
type ListingDetail struct {
	ListingView
	Host     *domainuser.User
	Bookings *BookingsPage
}

func (p *Pipeline) ListingDetail(ctx context.Context, v viewer.Viewer, id string, bookingsLimit, bookingsPage int) (ListingDetail, error) {
	view, err := p.Listing(ctx, v, id)
	if err != nil {
		return ListingDetail{}, err
	}
	detail := ListingDetail{ListingView: view}

	var wg sync.WaitGroup
	var hostErr, bookingsErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		detail.Host, hostErr = p.ListingHost(ctx, view.Listing)
	}()
	if detail.Authorized {
		wg.Add(1)
		go func() {
			defer wg.Done()
			detail.Bookings, bookingsErr = p.ListingBookings(ctx, v, view.Listing, bookingsLimit, bookingsPage)
		}()
	}
	wg.Wait()

	if hostErr != nil {
		return ListingDetail{}, hostErr
	}
	if bookingsErr != nil {
		return ListingDetail{}, bookingsErr
	}
	return detail, nil
}

func (p *Pipeline) loadListing(ctx context.Context, unit unitOfWork, id string) (*domainlistings.Listing, error) {
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(id))
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

func paginateIDs(ids []string, limit, page int) []string {
	if limit <= 0 {
		return nil
	}
	skip := 0
	if page > 0 {
		skip = (page - 1) * limit
	}
	if skip >= len(ids) {
		return nil
	}
	end := skip + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[skip:end]
}
