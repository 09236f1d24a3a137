package app

import (
	"fmt"
	"strings"

	"stays_mcp/internal/domain"
)

type mockStay struct {
	id, name     string
	typ          domain.AccommodationType
	price        float64
	original     float64
	rating       float64
	reviews      int
	stars        int
	area         string
	distanceKm   float64
	facilities   []string
	freeCancel   bool
	policy       string
	sustainLevel string
	image        string
}

// mockStays is the fixed fallback catalogue. Never modify it; mockAccommodations copies.
var mockStays = []mockStay{
	{
		id: "mock-1", name: "Grand Central Hotel", typ: domain.TypeHotel,
		price: 189, original: 219, rating: 8.7, reviews: 2431, stars: 4, area: "Old Town", distanceKm: 0.4,
		facilities: []string{"Free WiFi", "Breakfast included", "Fitness centre", "Airport shuttle", "Bar"},
		freeCancel: true, policy: "Free cancellation until 48 hours before check-in",
		sustainLevel: "Travel Sustainable Level 2",
		image:        "https://images.unsplash.com/photo-1566073771259-6a8506099945?w=640",
	},
	{
		id: "mock-2", name: "Riverside Apartments", typ: domain.TypeApartment,
		price: 124, rating: 9.1, reviews: 812, area: "Riverside", distanceKm: 1.2,
		facilities: []string{"Free WiFi", "Kitchen", "Washing machine", "Balcony"},
		freeCancel: true, policy: "Free cancellation until 24 hours before check-in",
		image: "https://images.unsplash.com/photo-1502672260266-1c1ef2d93688?w=640",
	},
	{
		id: "mock-3", name: "Backpackers Base Hostel", typ: domain.TypeHostel,
		price: 32, rating: 7.8, reviews: 3920, area: "University Quarter", distanceKm: 2.1,
		facilities: []string{"Free WiFi", "Shared kitchen", "Lockers", "24-hour front desk"},
		freeCancel: false, policy: "Non-refundable",
		image: "https://images.unsplash.com/photo-1555854877-bab0e564b8d5?w=640",
	},
	{
		id: "mock-4", name: "Casa Serena Guesthouse", typ: domain.TypeGuesthouse,
		price: 78, rating: 8.9, reviews: 456, area: "Historic Centre", distanceKm: 0.8,
		facilities: []string{"Free WiFi", "Garden", "Breakfast included"},
		freeCancel: true, policy: "Free cancellation until 7 days before check-in",
		sustainLevel: "Travel Sustainable Level 1",
		image:        "https://images.unsplash.com/photo-1582719508461-905c673771fd?w=640",
	},
	{
		id: "mock-5", name: "Rose Cottage B&B", typ: domain.TypeBedAndBreakfast,
		price: 95, rating: 9.4, reviews: 214, area: "Green Hills", distanceKm: 4.5,
		facilities: []string{"Breakfast included", "Free parking", "Garden", "Pet friendly"},
		freeCancel: false, policy: "Non-refundable",
		sustainLevel: "Travel Sustainable Level 3+",
		image:        "https://images.unsplash.com/photo-1564013799919-ab600027ffc6?w=640",
	},
	{
		id: "mock-6", name: "Azure Bay Resort & Spa", typ: domain.TypeResort,
		price: 342, original: 410, rating: 8.5, reviews: 1688, stars: 5, area: "Seafront", distanceKm: 6.3,
		facilities: []string{"Outdoor pool", "Spa", "Private beach", "Free WiFi", "Restaurant", "Fitness centre"},
		freeCancel: true, policy: "Free cancellation until 14 days before check-in",
		sustainLevel: "Travel Sustainable Level 3",
		image:        "https://images.unsplash.com/photo-1571896349842-33c89424de2d?w=640",
	},
	{
		id: "mock-7", name: "Villa Olivia", typ: domain.TypeVilla,
		price: 465, rating: 9.6, reviews: 97, area: "Hillside", distanceKm: 9.8,
		facilities: []string{"Private pool", "Kitchen", "Free parking", "Air conditioning", "Garden"},
		freeCancel: false, policy: "50% refundable until 30 days before check-in",
		image: "https://images.unsplash.com/photo-1613490493576-7fde63acd811?w=640",
	},
	{
		id: "mock-8", name: "Pinewood Holiday Home", typ: domain.TypeHolidayHome,
		price: 158, rating: 6.9, reviews: 63, area: "Lakeside", distanceKm: 12.4,
		facilities: []string{"Kitchen", "Free parking", "Fireplace", "Pet friendly"},
		freeCancel: true, policy: "Free cancellation until 72 hours before check-in",
		image: "https://images.unsplash.com/photo-1449158743715-0a90ebb6d2d8?w=640",
	},
}

// mockAccommodations builds the fallback list for q. Prices are quoted as-is in
// the requested currency.
func mockAccommodations(q domain.SearchQuery) []domain.Accommodation {
	nights := q.Nights()
	out := make([]domain.Accommodation, 0, len(mockStays))
	for _, m := range mockStays {
		a := domain.Accommodation{
			ID:                 m.id,
			Name:               m.name,
			Type:               m.typ,
			TypeLabel:          m.typ.Label(),
			PricePerNight:      m.price,
			Currency:           q.Currency,
			ReviewCount:        m.reviews,
			Location:           fmt.Sprintf("%s, %s", m.area, q.Destination),
			Distance:           fmt.Sprintf("%.1f km from centre", m.distanceKm),
			Facilities:         append([]string(nil), m.facilities...),
			CancellationPolicy: m.policy,
			FreeCancellation:   m.freeCancel,
			ImageURL:           m.image,
			BookingURL:         "https://www.booking.com/searchresults.html?ss=" + strings.ReplaceAll(q.Destination, " ", "+"),
		}
		r := m.rating
		a.Rating = &r
		a.ReviewScoreLabel = domain.ReviewScoreLabel(a.Rating)
		if m.stars > 0 {
			s := m.stars
			a.Stars = &s
		}
		if m.original > 0 {
			o := m.original
			a.OriginalPrice = &o
		}
		if nights > 0 {
			t := round2(m.price * float64(nights))
			a.TotalPrice = &t
		}
		if m.sustainLevel != "" {
			a.Sustainability = &domain.Sustainability{Certified: true, Level: m.sustainLevel}
		}
		out = append(out, a)
	}
	return out
}
