package domain_test

import (
	"errors"
	"testing"

	"stays_mcp/internal/domain"
)

func TestNormalize_Defaults(t *testing.T) {
	q, err := domain.SearchQuery{Destination: "  Lisbon "}.Normalize("eur")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if q.Destination != "Lisbon" || q.Adults != 2 || q.Rooms != 1 || q.Currency != "EUR" || q.Limit != 10 {
		t.Fatalf("unexpected defaults: %+v", q)
	}
}

func TestNormalize_Rejects(t *testing.T) {
	minP, maxP := 200.0, 100.0
	cases := map[string]domain.SearchQuery{
		"no destination":  {},
		"bad date":        {Destination: "x", CheckIn: "2026/01/01", CheckOut: "2026-01-03"},
		"one date":        {Destination: "x", CheckIn: "2026-01-01"},
		"reversed dates":  {Destination: "x", CheckIn: "2026-01-05", CheckOut: "2026-01-03"},
		"too many adults": {Destination: "x", Adults: 31},
		"inverted price":  {Destination: "x", Filters: domain.Filters{MinPrice: &minP, MaxPrice: &maxP}},
		"unknown type":    {Destination: "x", Filters: domain.Filters{AccommodationTypes: []domain.AccommodationType{"castle"}}},
		"negative rooms":  {Destination: "x", Rooms: -1},
	}
	for name, q := range cases {
		if _, err := q.Normalize("EUR"); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("%s: expected ErrInvalidQuery, got %v", name, err)
		}
	}
}

func TestNormalize_ClampsLimitAndNights(t *testing.T) {
	q, err := domain.SearchQuery{Destination: "x", CheckIn: "2026-03-01", CheckOut: "2026-03-04", Limit: 500}.Normalize("EUR")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if q.Limit != domain.MaxLimit {
		t.Fatalf("limit not clamped: %d", q.Limit)
	}
	if n := q.Nights(); n != 3 {
		t.Fatalf("nights: %d", n)
	}
}

func TestReviewScoreLabel(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, ""},
		{f(9.4), "Exceptional"},
		{f(8.0), "Excellent"},
		{f(7.9), "Very good"},
		{f(6.1), "Good"},
		{f(4.0), "Pleasant"},
		{f(0), ""},
	}
	for _, c := range cases {
		if got := domain.ReviewScoreLabel(c.in); got != c.want {
			t.Errorf("label(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseAccommodationType(t *testing.T) {
	for in, want := range map[string]domain.AccommodationType{
		"Hotel":           domain.TypeHotel,
		"bed & breakfast": domain.TypeBedAndBreakfast,
		"Guest house":     domain.TypeGuesthouse,
		"holiday-home":    domain.TypeHolidayHome,
	} {
		got, ok := domain.ParseAccommodationType(in)
		if !ok || got != want {
			t.Errorf("parse(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := domain.ParseAccommodationType("castle"); ok {
		t.Errorf("castle should not parse")
	}
}
