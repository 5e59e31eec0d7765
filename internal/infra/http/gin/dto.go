package ginserver

import (
	"time"

	"staybook/internal/app/resolve"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
)

type listingDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Host        string    `json:"host"`
	Type        string    `json:"type"`
	Address     string    `json:"address"`
	Country     string    `json:"country"`
	Admin       string    `json:"admin"`
	City        string    `json:"city"`
	Price       int64     `json:"price"`
	NumOfGuests int       `json:"numOfGuests"`
	Authorized  bool      `json:"authorized"`
	CreatedAt   time.Time `json:"createdAt"`
}

type hostDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	HasWallet bool   `json:"hasWallet"`
	// Income is visible only to the host themself.
	Income *int64 `json:"income"`
}

type bookingDTO struct {
	ID       string `json:"id"`
	Guest    string `json:"guest"`
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

type bookingsPageDTO struct {
	Total  int          `json:"total"`
	Result []bookingDTO `json:"result"`
}

type listingDetailDTO struct {
	listingDTO
	HostProfile hostDTO `json:"hostProfile"`
	// Bookings is null for viewers who do not own the listing.
	Bookings *bookingsPageDTO `json:"bookings"`
}

type catalogDTO struct {
	Region string       `json:"region,omitempty"`
	Total  int          `json:"total"`
	Result []listingDTO `json:"result"`
}

const wireDateLayout = "2006-01-02"

func toListingDTO(l *domainlistings.Listing, authorized bool) listingDTO {
	return listingDTO{
		ID:          string(l.ID),
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		Host:        string(l.Host),
		Type:        string(l.Type),
		Address:     l.Address,
		Country:     l.Country,
		Admin:       l.Admin,
		City:        l.City,
		Price:       l.Price,
		NumOfGuests: l.NumOfGuests,
		Authorized:  authorized,
		CreatedAt:   l.CreatedAt,
	}
}

func toHostDTO(u *domainuser.User, authorized bool) hostDTO {
	dto := hostDTO{
		ID:        string(u.ID),
		Name:      u.Name,
		Avatar:    u.Avatar,
		HasWallet: u.HasWallet(),
	}
	if authorized {
		income := u.Income
		dto.Income = &income
	}
	return dto
}

func toBookingDTO(b *domainbooking.Booking) bookingDTO {
	return bookingDTO{
		ID:       string(b.ID),
		Guest:    b.GuestID,
		CheckIn:  b.Range.CheckIn.Format(wireDateLayout),
		CheckOut: b.Range.CheckOut.Format(wireDateLayout),
	}
}

func toBookingsPageDTO(page *resolve.BookingsPage) *bookingsPageDTO {
	if page == nil {
		return nil
	}
	result := make([]bookingDTO, 0, len(page.Result))
	for _, b := range page.Result {
		result = append(result, toBookingDTO(b))
	}
	return &bookingsPageDTO{Total: page.Total, Result: result}
}

func toCatalogDTO(page resolve.CatalogPage) catalogDTO {
	result := make([]listingDTO, 0, len(page.Result))
	for _, l := range page.Result {
		result = append(result, toListingDTO(l, false))
	}
	return catalogDTO{Region: page.Region, Total: page.Total, Result: result}
}
