package availability

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"staybook/internal/domain/shared/datekey"
	"staybook/internal/domain/shared/daterange"
)

// Index is a listing's sparse set of booked calendar days. Only booked days
// are materialized; an absent day is free. Internally the set is keyed by
// epoch-day ordinal, while the wire form remains the nested
// year -> month (0-11) -> day -> true document that calendar clients consume.
//
// The zero value is not usable; construct with NewIndex or FromNested.
type Index struct {
	days map[int]struct{}
}

func NewIndex() *Index {
	return &Index{days: make(map[int]struct{})}
}

// IsBooked reports whether the day of t is booked.
func (ix *Index) IsBooked(t time.Time) bool {
	if ix == nil || ix.days == nil {
		return false
	}
	_, ok := ix.days[datekey.FromTime(t).Ordinal()]
	return ok
}

// MarkRange books every day in [checkIn, checkOut). Marking an already
// booked day is a no-op, so replaying a mark during a retry is safe.
func (ix *Index) MarkRange(dr daterange.DateRange) {
	if ix.days == nil {
		ix.days = make(map[int]struct{})
	}
	first := datekey.FromTime(dr.CheckIn).Ordinal()
	last := datekey.FromTime(dr.CheckOut).Ordinal()
	for ordinal := first; ordinal < last; ordinal++ {
		ix.days[ordinal] = struct{}{}
	}
}

// Len returns the number of booked days.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.days)
}

// BookedDays lists every booked day in ascending order.
func (ix *Index) BookedDays() []time.Time {
	if ix == nil || len(ix.days) == 0 {
		return nil
	}
	ordinals := make([]int, 0, len(ix.days))
	for ordinal := range ix.days {
		ordinals = append(ordinals, ordinal)
	}
	sort.Ints(ordinals)
	out := make([]time.Time, len(ordinals))
	for i, ordinal := range ordinals {
		out[i] = datekey.FromOrdinal(ordinal).Time()
	}
	return out
}

// Clone returns an independent copy. Mutating the copy never touches the
// original, which lets validation retries work on a fresh snapshot.
func (ix *Index) Clone() *Index {
	copied := NewIndex()
	if ix == nil {
		return copied
	}
	for ordinal := range ix.days {
		copied.days[ordinal] = struct{}{}
	}
	return copied
}

// Nested renders the index in its wire form. Key ordering inside the maps is
// irrelevant; only the booked-day set matters.
func (ix *Index) Nested() map[string]map[string]map[string]bool {
	out := make(map[string]map[string]map[string]bool)
	if ix == nil {
		return out
	}
	for ordinal := range ix.days {
		key := datekey.FromOrdinal(ordinal)
		year := strconv.Itoa(key.Year)
		month := strconv.Itoa(key.Month)
		day := strconv.Itoa(key.Day)
		if out[year] == nil {
			out[year] = make(map[string]map[string]bool)
		}
		if out[year][month] == nil {
			out[year][month] = make(map[string]bool)
		}
		out[year][month][day] = true
	}
	return out
}

// FromNested rebuilds an index from its wire form. Malformed keys (non
// numeric, month outside 0-11, day outside the month) and false markers are
// rejected: corrupt stored data must not slip into a usable index.
func FromNested(nested map[string]map[string]map[string]bool) (*Index, error) {
	ix := NewIndex()
	for yearKey, months := range nested {
		year, err := strconv.Atoi(yearKey)
		if err != nil {
			return nil, fmt.Errorf("availability: invalid year key %q", yearKey)
		}
		for monthKey, calendarDays := range months {
			month, err := strconv.Atoi(monthKey)
			if err != nil {
				return nil, fmt.Errorf("availability: invalid month key %q", monthKey)
			}
			for dayKey, booked := range calendarDays {
				calendarDay, err := strconv.Atoi(dayKey)
				if err != nil {
					return nil, fmt.Errorf("availability: invalid day key %q", dayKey)
				}
				if !booked {
					return nil, fmt.Errorf("availability: day %s-%s-%s marked false", yearKey, monthKey, dayKey)
				}
				key, err := datekey.New(year, month, calendarDay)
				if err != nil {
					return nil, fmt.Errorf("availability: day %s-%s-%s: %w", yearKey, monthKey, dayKey, err)
				}
				ix.days[key.Ordinal()] = struct{}{}
			}
		}
	}
	return ix, nil
}

// MarshalJSON serializes the wire form.
func (ix *Index) MarshalJSON() ([]byte, error) {
	return json.Marshal(ix.Nested())
}

// UnmarshalJSON parses the wire form, validating every key.
func (ix *Index) UnmarshalJSON(data []byte) error {
	var nested map[string]map[string]map[string]bool
	if err := json.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("availability: decode index: %w", err)
	}
	parsed, err := FromNested(nested)
	if err != nil {
		return err
	}
	ix.days = parsed.days
	return nil
}
