package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired      = errors.New("user: id is required")
	ErrNameRequired    = errors.New("user: name is required")
	ErrNotFound        = errors.New("user: not found")
	ErrVersionConflict = errors.New("user: version conflict")
)

type ID string

// User is a host/guest profile. WalletID is the attached payout capability;
// a host without one cannot receive bookings. Version guards the save: the
// income counter and the booking/listing appends are read-modify-write, so
// a stale snapshot must not overwrite a concurrent one.
type User struct {
	ID        ID
	Name      string
	Avatar    string
	Contact   string
	WalletID  string
	Income    int64
	Bookings  []string
	Listings  []string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) HasWallet() bool {
	return strings.TrimSpace(u.WalletID) != ""
}

// AppendListing records ownership of a newly published listing.
func (u *User) AppendListing(listingID string, now time.Time) {
	u.Listings = append(u.Listings, listingID)
	u.UpdatedAt = now.UTC()
}

// AppendBooking records a stay the user reserved as a guest.
func (u *User) AppendBooking(bookingID string, now time.Time) {
	u.Bookings = append(u.Bookings, bookingID)
	u.UpdatedAt = now.UTC()
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID        ID
	Name      string
	Avatar    string
	Contact   string
	WalletID  string
	CreatedAt time.Time
}

func NewUser(params CreateParams) (*User, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &User{
		ID:        params.ID,
		Name:      name,
		Avatar:    strings.TrimSpace(params.Avatar),
		Contact:   strings.TrimSpace(params.Contact),
		WalletID:  strings.TrimSpace(params.WalletID),
		Bookings:  []string{},
		Listings:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
