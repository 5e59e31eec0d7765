package memory

import (
	"context"
	"sync"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
)

// Store keeps all documents in process. It backs tests and the default run
// mode; the Mongo implementation is the production counterpart.
type Store struct {
	mu           sync.RWMutex
	listings     map[domainlistings.ListingID]*domainlistings.Listing
	listingOrder []domainlistings.ListingID
	bookings     map[domainbooking.BookingID]*domainbooking.Booking
	users        map[domainuser.ID]*domainuser.User
}

func NewStore() *Store {
	return &Store{
		listings: make(map[domainlistings.ListingID]*domainlistings.Listing),
		bookings: make(map[domainbooking.BookingID]*domainbooking.Booking),
		users:    make(map[domainuser.ID]*domainuser.User),
	}
}

// Users returns a standalone read view over the store, outside any unit.
// The credential resolver only ever reads user records.
func (s *Store) Users() domainuser.Repository {
	return &userRepo{unit: &Unit{store: s}}
}

// Factory begins staged unit-of-work instances over the store.
type Factory struct {
	Store *Store
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return &Unit{store: f.Store}, nil
}

// Unit stages writes and applies them atomically on Commit under the store
// lock. A listing save re-checks its version at apply time, which makes the
// commit the compare-and-swap point: overlapping booking attempts load the
// same version and only the first commit wins.
type Unit struct {
	store  *Store
	staged []stagedWrite
	done   bool
}

type stagedWrite struct {
	// check runs under the store lock before anything applies; any failure
	// aborts the whole unit so no write lands alone.
	check func() error
	apply func()
}

func (u *Unit) Listings() domainlistings.Repository { return &listingRepo{unit: u} }
func (u *Unit) Bookings() domainbooking.Repository  { return &bookingRepo{unit: u} }
func (u *Unit) Users() domainuser.Repository        { return &userRepo{unit: u} }

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	for _, write := range u.staged {
		if write.check != nil {
			if err := write.check(); err != nil {
				u.staged = nil
				return err
			}
		}
	}
	for _, write := range u.staged {
		write.apply()
	}
	u.staged = nil
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.done = true
	u.staged = nil
	return nil
}

func (u *Unit) stage(write stagedWrite) {
	u.staged = append(u.staged, write)
}
