package memory

import (
	"context"
	"sort"
	"strings"

	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/events"
	domainuser "staybook/internal/domain/user"
)

type listingRepo struct {
	unit *Unit
}

func (r *listingRepo) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	store := r.unit.store
	store.mu.RLock()
	defer store.mu.RUnlock()
	listing, ok := store.listings[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

// Save stages an upsert. The stored version is re-checked when the unit
// commits; a stale snapshot aborts with ErrVersionConflict.
func (r *listingRepo) Save(ctx context.Context, listing *domainlistings.Listing) error {
	store := r.unit.store
	expected := listing.Version
	r.unit.stage(stagedWrite{
		check: func() error {
			current, exists := store.listings[listing.ID]
			if !exists {
				if expected != 0 {
					return domainlistings.ErrVersionConflict
				}
				return nil
			}
			if current.Version != expected {
				return domainlistings.ErrVersionConflict
			}
			return nil
		},
		apply: func() {
			if _, exists := store.listings[listing.ID]; !exists {
				store.listingOrder = append(store.listingOrder, listing.ID)
			}
			listing.Version = expected + 1
			store.listings[listing.ID] = cloneListing(listing)
		},
	})
	return nil
}

func (r *listingRepo) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	store := r.unit.store
	store.mu.RLock()
	defer store.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(store.listingOrder))
	for _, id := range store.listingOrder {
		listing := store.listings[id]
		if opts.Host != "" && listing.Host != opts.Host {
			continue
		}
		if opts.Country != "" && !strings.EqualFold(listing.Country, opts.Country) {
			continue
		}
		if opts.Admin != "" && !strings.EqualFold(listing.Admin, opts.Admin) {
			continue
		}
		if opts.City != "" && !strings.EqualFold(listing.City, opts.City) {
			continue
		}
		matches = append(matches, cloneListing(listing))
	}

	switch opts.Sort {
	case domainlistings.SortPriceLowToHigh:
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Price < matches[j].Price })
	case domainlistings.SortPriceHighToLow:
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].Price > matches[j].Price })
	}

	total := len(matches)
	start := opts.Skip()
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return domainlistings.SearchResult{Items: matches[start:end], Total: total}, nil
}

type bookingRepo struct {
	unit *Unit
}

func (r *bookingRepo) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	store := r.unit.store
	store.mu.RLock()
	defer store.mu.RUnlock()
	b, ok := store.bookings[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *bookingRepo) ByIDs(ctx context.Context, ids []string) ([]*domainbooking.Booking, error) {
	store := r.unit.store
	store.mu.RLock()
	defer store.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0, len(ids))
	for _, id := range ids {
		if b, ok := store.bookings[domainbooking.BookingID(id)]; ok {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *bookingRepo) Save(ctx context.Context, b *domainbooking.Booking) error {
	store := r.unit.store
	r.unit.stage(stagedWrite{
		apply: func() {
			store.bookings[b.ID] = cloneBooking(b)
		},
	})
	return nil
}

type userRepo struct {
	unit *Unit
}

func (r *userRepo) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	store := r.unit.store
	store.mu.RLock()
	defer store.mu.RUnlock()
	u, ok := store.users[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return cloneUser(u), nil
}

// Save stages a versioned upsert, same contract as the listing save. User
// records carry read-modify-write state (income, appended ids), so a stale
// snapshot aborts the commit instead of overwriting a concurrent writer.
func (r *userRepo) Save(ctx context.Context, u *domainuser.User) error {
	store := r.unit.store
	expected := u.Version
	r.unit.stage(stagedWrite{
		check: func() error {
			current, exists := store.users[u.ID]
			if !exists {
				if expected != 0 {
					return domainuser.ErrVersionConflict
				}
				return nil
			}
			if current.Version != expected {
				return domainuser.ErrVersionConflict
			}
			return nil
		},
		apply: func() {
			u.Version = expected + 1
			store.users[u.ID] = cloneUser(u)
		},
	})
	return nil
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	copied := *l
	copied.EventRecorder = events.EventRecorder{}
	copied.Bookings = append([]string(nil), l.Bookings...)
	copied.Index = l.Index.Clone()
	return &copied
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	copied := *b
	copied.EventRecorder = events.EventRecorder{}
	return &copied
}

func cloneUser(u *domainuser.User) *domainuser.User {
	copied := *u
	copied.Bookings = append([]string(nil), u.Bookings...)
	copied.Listings = append([]string(nil), u.Listings...)
	return &copied
}
