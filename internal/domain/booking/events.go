package booking

import (
	"time"

	"staybook/internal/domain/listings"
)

type BookingCreatedEvent struct {
	BookingID BookingID          `json:"booking_id"`
	ListingID listings.ListingID `json:"listing_id"`
	GuestID   string             `json:"guest_id"`
	CheckIn   time.Time          `json:"check_in"`
	CheckOut  time.Time          `json:"check_out"`
	At        time.Time          `json:"at"`
}

func (e BookingCreatedEvent) EventName() string     { return "booking.created" }
func (e BookingCreatedEvent) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreatedEvent) OccurredAt() time.Time { return e.At }
