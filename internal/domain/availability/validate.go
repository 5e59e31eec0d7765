package availability

import (
	"errors"
	"fmt"
	"time"

	"staybook/internal/domain/shared/datekey"
	"staybook/internal/domain/shared/daterange"
)

var (
	ErrInvertedRange = errors.New("availability: checkout must be after checkin")
	ErrCheckInPast   = errors.New("availability: check-in date is in the past")
)

// OverlapError reports the first requested night already held by another
// booking. It is user-displayable, so carry the date, not internals.
type OverlapError struct {
	Date time.Time
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("availability: %s is already booked", e.Date.Format("2006-01-02"))
}

// ValidateRange decides whether [checkIn, checkOut) can be reserved against
// the index. The clock is caller-supplied; nothing here reads time.Now.
//
// Every night of the stay is checked, check-in night included. Back-to-back
// stays stay legal regardless: MarkRange never marks a checkout day, so a
// range ending exactly where another begins has no booked day to collide on.
func ValidateRange(ix *Index, checkIn, checkOut, today time.Time) error {
	in := datekey.StartOfDay(checkIn)
	out := datekey.StartOfDay(checkOut)
	if !out.After(in) {
		return ErrInvertedRange
	}
	if in.Before(datekey.StartOfDay(today)) {
		return ErrCheckInPast
	}
	for day := in; day.Before(out); day = day.AddDate(0, 0, 1) {
		if ix.IsBooked(day) {
			return &OverlapError{Date: day}
		}
	}
	return nil
}

// DateDisabled is the single-date variant used by date-picker style
// collaborators: a candidate day is unselectable when past or booked.
func DateDisabled(ix *Index, date, today time.Time) bool {
	day := datekey.StartOfDay(date)
	return day.Before(datekey.StartOfDay(today)) || ix.IsBooked(day)
}

// Reserve validates and marks in one step over the same snapshot.
func Reserve(ix *Index, dr daterange.DateRange, today time.Time) error {
	if err := ValidateRange(ix, dr.CheckIn, dr.CheckOut, today); err != nil {
		return err
	}
	ix.MarkRange(dr)
	return nil
}
