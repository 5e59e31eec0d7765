package datekey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromTime(t *testing.T) {
	k := FromTime(time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, Key{Year: 2024, Month: 2, Day: 10}, k)

	// Time east of UTC still maps onto the UTC day.
	loc := time.FixedZone("UTC+5", 5*3600)
	k = FromTime(time.Date(2024, time.January, 1, 2, 0, 0, 0, loc))
	assert.Equal(t, Key{Year: 2023, Month: 11, Day: 31}, k)
}

func TestNewValidation(t *testing.T) {
	_, err := New(2024, 2, 10)
	assert.NoError(t, err)

	for _, bad := range []Key{
		{2024, 12, 1},  // month out of range
		{2024, -1, 1},  // negative month
		{2024, 1, 30},  // February 30th
		{2023, 1, 29},  // February 29th in a non-leap year
		{2024, 0, 0},   // zero day
		{2024, 3, 31},  // April 31st
	} {
		_, err := New(bad.Year, bad.Month, bad.Day)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %+v", bad)
	}

	// Leap day is valid on leap years.
	_, err = New(2024, 1, 29)
	assert.NoError(t, err)
}

func TestOrdinalRoundTrip(t *testing.T) {
	days := []time.Time{
		time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		k := FromTime(day)
		assert.Equal(t, k, FromOrdinal(k.Ordinal()))
		assert.Equal(t, day, k.Time())
	}
}

func TestOrdinalAdjacencyAcrossLeapDay(t *testing.T) {
	feb28 := FromTime(time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC))
	feb29 := FromTime(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC))
	mar1 := FromTime(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, feb28.Ordinal()+1, feb29.Ordinal())
	assert.Equal(t, feb29.Ordinal()+1, mar1.Ordinal())
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2024, time.July, 4, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
}
