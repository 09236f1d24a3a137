package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultAdults = 2
	DefaultRooms  = 1
	DefaultLimit  = 10
	MaxLimit      = 50
	maxGuests     = 30
	dateLayout    = "2006-01-02"
)

func (q SearchQuery) dates() (time.Time, time.Time, bool) {
	if q.CheckIn == "" || q.CheckOut == "" {
		return time.Time{}, time.Time{}, false
	}
	in, err := time.Parse(dateLayout, q.CheckIn)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	out, err := time.Parse(dateLayout, q.CheckOut)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return in, out, true
}

// Normalize fills defaults and validates the query. Errors wrap ErrInvalidQuery.
func (q SearchQuery) Normalize(defaultCurrency string) (SearchQuery, error) {
	q.Destination = strings.TrimSpace(q.Destination)
	if q.Destination == "" {
		return q, fmt.Errorf("%w: destination is required", ErrInvalidQuery)
	}

	q.CheckIn = strings.TrimSpace(q.CheckIn)
	q.CheckOut = strings.TrimSpace(q.CheckOut)
	for _, d := range []string{q.CheckIn, q.CheckOut} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return q, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidQuery, d)
		}
	}
	if (q.CheckIn == "") != (q.CheckOut == "") {
		return q, fmt.Errorf("%w: check_in and check_out must be given together", ErrInvalidQuery)
	}
	if q.CheckIn != "" && q.Nights() <= 0 {
		return q, fmt.Errorf("%w: check_out must be after check_in", ErrInvalidQuery)
	}

	if q.Adults == 0 {
		q.Adults = DefaultAdults
	}
	if q.Rooms == 0 {
		q.Rooms = DefaultRooms
	}
	if q.Adults < 1 || q.Adults > maxGuests {
		return q, fmt.Errorf("%w: adults must be between 1 and %d", ErrInvalidQuery, maxGuests)
	}
	if q.Rooms < 1 || q.Rooms > maxGuests {
		return q, fmt.Errorf("%w: rooms must be between 1 and %d", ErrInvalidQuery, maxGuests)
	}

	q.Currency = strings.ToUpper(strings.TrimSpace(q.Currency))
	if q.Currency == "" {
		q.Currency = strings.ToUpper(defaultCurrency)
	}

	switch {
	case q.Limit <= 0:
		q.Limit = DefaultLimit
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}

	f := q.Filters
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return q, fmt.Errorf("%w: min_price is greater than max_price", ErrInvalidQuery)
	}
	for _, t := range f.AccommodationTypes {
		if !t.Valid() {
			return q, fmt.Errorf("%w: unknown accommodation type %q", ErrInvalidQuery, t)
		}
	}
	facs := f.Facilities[:0:0]
	for _, fac := range f.Facilities {
		if s := strings.TrimSpace(fac); s != "" {
			facs = append(facs, s)
		}
	}
	q.Filters.Facilities = facs
	if len(facs) == 0 {
		q.Filters.Facilities = nil
	}
	return q, nil
}
