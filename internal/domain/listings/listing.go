package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 5000
)

var (
	ErrTitleRequired      = errors.New("listings: title is required")
	ErrTitleTooLong       = errors.New("listings: title must be under 100 characters")
	ErrDescriptionTooLong = errors.New("listings: description must be under 5000 characters")
	ErrInvalidType        = errors.New("listings: type must be either an apartment or a house")
	ErrNegativePrice      = errors.New("listings: price must be non-negative")
	ErrGuestsLimit        = errors.New("listings: guest capacity must be at least 1")
	ErrAddressRequired    = errors.New("listings: address is required")
	ErrNotFound           = errors.New("listings: not found")
	ErrVersionConflict    = errors.New("listings: concurrent update detected")
)

type ListingID string
type HostID string

// ListingType enumerates supported property kinds.
type ListingType string

const (
	TypeApartment ListingType = "APARTMENT"
	TypeHouse     ListingType = "HOUSE"
)

// ParseType accepts the enum in any case; anything else is ErrInvalidType.
func ParseType(raw string) (ListingType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(TypeApartment):
		return TypeApartment, nil
	case string(TypeHouse):
		return TypeHouse, nil
	default:
		return "", ErrInvalidType
	}
}

// Listing is the aggregate a host publishes. BookingsIndex always equals the
// union of the date ranges of the listing's bookings; every mutation that
// appends a booking marks the index in the same unit of work.
type Listing struct {
	ID          ListingID
	Host        HostID
	Title       string
	Description string
	Image       string
	Type        ListingType
	Address     string
	Country     string
	Admin       string
	City        string
	// Price is the nightly rate in the smallest currency unit.
	Price       int64
	NumOfGuests int
	Bookings    []string
	Index       *availability.Index
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

// Repository is the document-store port for listings. Save enforces a
// versioned compare-and-swap: a stale Version yields ErrVersionConflict.
type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID          ListingID
	Host        HostID
	Title       string
	Description string
	Image       string
	Type        ListingType
	Address     string
	Country     string
	Admin       string
	City        string
	Price       int64
	NumOfGuests int
	Now         time.Time
}

// ValidateInput applies the user-input rules without any side effect, so
// callers can reject bad input before touching storage or collaborators.
func ValidateInput(title, description, rawType string, price int64, numOfGuests int) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if len(description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if _, err := ParseType(rawType); err != nil {
		return err
	}
	if price < 0 {
		return ErrNegativePrice
	}
	if numOfGuests < 1 {
		return ErrGuestsLimit
	}
	return nil
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, errors.New("listings: host is required")
	}
	if err := ValidateInput(params.Title, params.Description, string(params.Type), params.Price, params.NumOfGuests); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Address) == "" {
		return nil, ErrAddressRequired
	}
	now := params.Now.UTC()

	listing := &Listing{
		ID:          params.ID,
		Host:        params.Host,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Image:       strings.TrimSpace(params.Image),
		Type:        params.Type,
		Address:     strings.TrimSpace(params.Address),
		Country:     params.Country,
		Admin:       params.Admin,
		City:        params.City,
		Price:       params.Price,
		NumOfGuests: params.NumOfGuests,
		Bookings:    []string{},
		Index:       availability.NewIndex(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	listing.Record(ListingCreatedEvent{ListingID: listing.ID, HostID: listing.Host, At: now})
	return listing, nil
}

// AppendBooking records a booking id and marks its nights on the index.
// The caller has already validated the range against the same snapshot.
func (l *Listing) AppendBooking(bookingID string, dr daterange.DateRange, now time.Time) {
	if l.Index == nil {
		l.Index = availability.NewIndex()
	}
	l.Bookings = append(l.Bookings, bookingID)
	l.Index.MarkRange(dr)
	l.UpdatedAt = now.UTC()
	l.Record(ListingBookedEvent{ListingID: l.ID, BookingID: bookingID, At: now.UTC()})
}
