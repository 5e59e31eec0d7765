package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/viewer"
	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
)

const listingEventsTopic = "listing.events"

// HostListingInput is the raw mutation payload.
type HostListingInput struct {
	Title       string
	Description string
	Image       string
	Type        string
	Address     string
	Price       int64
	NumOfGuests int
}

// HostListing publishes a new listing. Input validation runs before any
// side effect; the listing insert and the host-record append share one unit
// of work so neither write can land without the other.
func (p *Pipeline) HostListing(ctx context.Context, v viewer.Viewer, input HostListingInput) (*domainlistings.Listing, error) {
	if err := domainlistings.ValidateInput(input.Title, input.Description, input.Type, input.Price, input.NumOfGuests); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, domainlistings.ErrAddressRequired
	}
	if v.Anonymous() {
		return nil, ErrUnauthenticated
	}

	resolved, err := p.Geocoder.Geocode(ctx, input.Address)
	if err != nil {
		return nil, err
	}
	// Publishing demands a fully resolved address; search only needs the
	// country, but a listing must be placeable on a map.
	if resolved.Country == "" || resolved.Admin == "" || resolved.City == "" {
		return nil, ErrInvalidAddress
	}

	listingType, err := domainlistings.ParseType(input.Type)
	if err != nil {
		return nil, err
	}
	listingID := domainlistings.ListingID(uuid.NewString())

	imageURL, err := p.storeImage(ctx, string(listingID), input.Image)
	if err != nil {
		return nil, err
	}

	now := p.now()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          listingID,
		Host:        domainlistings.HostID(v.ID),
		Title:       input.Title,
		Description: input.Description,
		Image:       imageURL,
		Type:        listingType,
		Address:     input.Address,
		Country:     resolved.Country,
		Admin:       resolved.Admin,
		City:        resolved.City,
		Price:       input.Price,
		NumOfGuests: input.NumOfGuests,
		Now:         now,
	})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		err := p.persistListing(ctx, v, listing, now)
		if err == nil {
			pending := listing.PendingEvents()
			listing.ClearEvents()
			p.publish(ctx, listingEventsTopic, pending)
			return listing, nil
		}
		if !errors.Is(err, domainuser.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	p.logError("host listing retries exhausted", lastErr, "listing_id", listing.ID)
	return nil, lastErr
}

// persistListing lands the listing insert and the host-record append in one
// unit. The host save is versioned; a concurrent writer on the host record
// forces a retry with a fresh snapshot.
func (p *Pipeline) persistListing(ctx context.Context, v viewer.Viewer, listing *domainlistings.Listing, now time.Time) error {
	unit, ctx, err := p.begin(ctx, false)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	host, err := unit.Users().ByID(ctx, domainuser.ID(v.ID))
	if err != nil {
		return fmt.Errorf("resolve: load host: %w", err)
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return err
	}
	host.AppendListing(string(listing.ID), now)
	if err := unit.Users().Save(ctx, host); err != nil {
		return err
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

// storeImage pushes the submitted photo payload through the image store.
// Without a configured store the payload is kept verbatim (a URL, say).
func (p *Pipeline) storeImage(ctx context.Context, listingID, image string) (string, error) {
	if p.Images == nil || strings.TrimSpace(image) == "" {
		return image, nil
	}
	key := fmt.Sprintf("listings/%s/cover", listingID)
	url, err := p.Images.Upload(ctx, key, strings.NewReader(image), "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("resolve: image upload: %w", err)
	}
	return url, nil
}
