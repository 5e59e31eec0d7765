package resolve

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/viewer"
	"staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	domainuser "staybook/internal/domain/user"
)

const bookingEventsTopic = "booking.events"

// ErrBookingContention is returned when every CAS attempt lost to
// concurrent writers. Callers may simply retry the request.
var ErrBookingContention = errors.New("resolve: listing is being booked concurrently, try again")

type CreateBookingInput struct {
	ListingID string
	CheckIn   time.Time
	CheckOut  time.Time
}

// CreateBooking reserves [checkIn, checkOut) on a listing. Validation and
// the index mark operate on one loaded snapshot; the versioned save rejects
// the commit if any other writer touched the listing in between, so two
// overlapping attempts can never both succeed.
func (p *Pipeline) CreateBooking(ctx context.Context, v viewer.Viewer, input CreateBookingInput) (*domainbooking.Booking, error) {
	if v.Anonymous() {
		return nil, ErrUnauthenticated
	}
	dr, err := daterange.New(input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		booked, pending, err := p.tryCreateBooking(ctx, v, input.ListingID, dr)
		if err == nil {
			p.publish(ctx, bookingEventsTopic, pending)
			return booked, nil
		}
		if !errors.Is(err, domainlistings.ErrVersionConflict) && !errors.Is(err, domainuser.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
		if p.Logger != nil {
			p.Logger.Debug("booking save conflicted, retrying", "listing_id", input.ListingID, "attempt", attempt+1)
		}
	}
	p.logError("booking retries exhausted", lastErr, "listing_id", input.ListingID)
	return nil, ErrBookingContention
}

func (p *Pipeline) tryCreateBooking(ctx context.Context, v viewer.Viewer, listingID string, dr daterange.DateRange) (*domainbooking.Booking, []events.DomainEvent, error) {
	unit, ctx, err := p.begin(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	listing, err := p.loadListing(ctx, unit, listingID)
	if err != nil {
		return nil, nil, err
	}
	if viewer.IsAuthorized(v, listing) {
		return nil, nil, ErrOwnListing
	}
	host, err := p.loadHost(ctx, unit, listing)
	if err != nil {
		return nil, nil, err
	}
	if !host.HasWallet() {
		return nil, nil, ErrHostWalletRequired
	}

	now := p.now()
	if err := availabilityCheck(listing, dr, now); err != nil {
		return nil, nil, err
	}

	booked, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(uuid.NewString()),
		ListingID: listing.ID,
		GuestID:   string(v.ID),
		Range:     dr,
		CreatedAt: now,
	})
	if err != nil {
		return nil, nil, err
	}

	guest, err := unit.Users().ByID(ctx, v.ID)
	if err != nil {
		return nil, nil, err
	}

	listing.AppendBooking(string(booked.ID), dr, now)
	guest.AppendBooking(string(booked.ID), now)
	host.Income += listing.Price * int64(dr.Nights())

	if err := unit.Bookings().Save(ctx, booked); err != nil {
		return nil, nil, err
	}
	// The versioned save is the serialization point for the whole listing
	// mutation; a conflict aborts everything in this unit.
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, nil, err
	}
	if err := unit.Users().Save(ctx, guest); err != nil {
		return nil, nil, err
	}
	if err := unit.Users().Save(ctx, host); err != nil {
		return nil, nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, nil, err
	}
	committed = true

	pending := append(booked.PendingEvents(), listing.PendingEvents()...)
	booked.ClearEvents()
	listing.ClearEvents()
	return booked, pending, nil
}

func availabilityCheck(listing *domainlistings.Listing, dr daterange.DateRange, now time.Time) error {
	return availability.ValidateRange(listing.Index, dr.CheckIn, dr.CheckOut, now)
}
