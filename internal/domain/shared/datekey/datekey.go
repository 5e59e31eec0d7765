package datekey

import (
	"errors"
	"time"
)

var ErrInvalidKey = errors.New("datekey: key out of calendar range")

// Key identifies a calendar day as a (year, month, day) triple. Month is
// zero-based (0 = January) to match the wire form of the availability index.
type Key struct {
	Year  int
	Month int
	Day   int
}

// FromTime decomposes t into its UTC calendar day.
func FromTime(t time.Time) Key {
	y, m, d := t.UTC().Date()
	return Key{Year: y, Month: int(m) - 1, Day: d}
}

// New validates the triple and returns the key. Day bounds respect the
// actual month length, so 2023-01-29 (month 1, non-leap February) fails.
func New(year, month, day int) (Key, error) {
	if year < 1 || month < 0 || month > 11 || day < 1 || day > 31 {
		return Key{}, ErrInvalidKey
	}
	k := Key{Year: year, Month: month, Day: day}
	if FromTime(k.Time()) != k {
		return Key{}, ErrInvalidKey
	}
	return k, nil
}

// Time returns midnight UTC of the day the key names.
func (k Key) Time() time.Time {
	return time.Date(k.Year, time.Month(k.Month+1), k.Day, 0, 0, 0, 0, time.UTC)
}

// Ordinal returns the day count since the Unix epoch. Adjacent calendar days
// always differ by exactly one, including across leap days.
func (k Key) Ordinal() int {
	return int(k.Time().Unix() / 86400)
}

// FromOrdinal is the inverse of Ordinal.
func FromOrdinal(ordinal int) Key {
	return FromTime(time.Unix(int64(ordinal)*86400, 0).UTC())
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	return FromTime(t).Time()
}
