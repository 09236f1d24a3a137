package domain

import "strings"

type AccommodationType string

const (
	TypeHotel           AccommodationType = "hotel"
	TypeApartment       AccommodationType = "apartment"
	TypeHostel          AccommodationType = "hostel"
	TypeGuesthouse      AccommodationType = "guesthouse"
	TypeBedAndBreakfast AccommodationType = "bed_and_breakfast"
	TypeResort          AccommodationType = "resort"
	TypeVilla           AccommodationType = "villa"
	TypeHolidayHome     AccommodationType = "holiday_home"
)

// AccommodationTypes is the closed set of lodging categories, in display order.
var AccommodationTypes = []AccommodationType{
	TypeHotel, TypeApartment, TypeHostel, TypeGuesthouse,
	TypeBedAndBreakfast, TypeResort, TypeVilla, TypeHolidayHome,
}

var typeLabels = map[AccommodationType]string{
	TypeHotel:           "Hotel",
	TypeApartment:       "Apartment",
	TypeHostel:          "Hostel",
	TypeGuesthouse:      "Guesthouse",
	TypeBedAndBreakfast: "Bed & Breakfast",
	TypeResort:          "Resort",
	TypeVilla:           "Villa",
	TypeHolidayHome:     "Holiday home",
}

func (t AccommodationType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (t AccommodationType) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// ParseAccommodationType accepts the enum value or its display label, any case.
func ParseAccommodationType(s string) (AccommodationType, bool) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer(" ", "_", "-", "_", "&", "and").Replace(k)
	for _, t := range AccommodationTypes {
		if string(t) == k {
			return t, true
		}
	}
	switch k {
	case "b_and_b", "bnb", "bed_and_breakfasts":
		return TypeBedAndBreakfast, true
	case "guest_house":
		return TypeGuesthouse, true
	case "vacation_home", "holiday_homes":
		return TypeHolidayHome, true
	}
	return "", false
}

type Sustainability struct {
	Certified bool   `json:"certified"`
	Level     string `json:"level,omitempty"`
}

type Accommodation struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Type               AccommodationType `json:"type"`
	TypeLabel          string            `json:"type_label"`
	PricePerNight      float64           `json:"price_per_night"`
	TotalPrice         *float64          `json:"total_price,omitempty"`
	OriginalPrice      *float64          `json:"original_price,omitempty"`
	Currency           string            `json:"currency"`
	Rating             *float64          `json:"rating,omitempty"`
	ReviewCount        int               `json:"review_count"`
	ReviewScoreLabel   string            `json:"review_score_label,omitempty"`
	Stars              *int              `json:"stars,omitempty"`
	Location           string            `json:"location"`
	Distance           string            `json:"distance,omitempty"`
	Facilities         []string          `json:"facilities"`
	CancellationPolicy string            `json:"cancellation_policy"`
	FreeCancellation   bool              `json:"free_cancellation"`
	Sustainability     *Sustainability   `json:"sustainability,omitempty"`
	ImageURL           string            `json:"image_url,omitempty"`
	BookingURL         string            `json:"booking_url,omitempty"`
}

// ReviewScoreLabel maps a 0..10 rating to the wording shown next to the score badge.
func ReviewScoreLabel(rating *float64) string {
	if rating == nil {
		return ""
	}
	r := *rating
	switch {
	case r >= 9:
		return "Exceptional"
	case r >= 8:
		return "Excellent"
	case r >= 7:
		return "Very good"
	case r >= 6:
		return "Good"
	case r > 0:
		return "Pleasant"
	}
	return ""
}
