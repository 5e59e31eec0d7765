package daterange

import (
	"errors"
	"time"

	"staybook/internal/domain/shared/datekey"
)

var ErrInvalidRange = errors.New("daterange: checkout must be after checkin")

// DateRange is the half-open interval [CheckIn, CheckOut) at day granularity.
// The stay occupies every night from CheckIn up to but not including CheckOut.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New truncates both bounds to midnight UTC and validates the interval.
// A zero-night range (checkIn == checkOut) is invalid.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{
		CheckIn:  datekey.StartOfDay(checkIn),
		CheckOut: datekey.StartOfDay(checkOut),
	}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return datekey.FromTime(dr.CheckOut).Ordinal() - datekey.FromTime(dr.CheckIn).Ordinal()
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

// ContainsDate reports whether the day of t falls inside the interval.
func (dr DateRange) ContainsDate(t time.Time) bool {
	day := datekey.StartOfDay(t)
	return !day.Before(dr.CheckIn) && day.Before(dr.CheckOut)
}
