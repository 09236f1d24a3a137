package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"stays_mcp/internal/domain"
)

/********** alias registries (single source of truth) **********/

var hotelAliases = map[string][]string{
	"id":       {"hotel_id", "property.id", "id"},
	"name":     {"property.name", "hotel_name", "hotel_name_trans", "name"},
	"type":     {"property.propertyType", "accommodation_type_name", "property_type", "type"},
	"location": {"property.wishlistName", "district", "city_trans", "city", "address", "location.city"},
	"distance": {"property.distance", "distance_to_cc_formatted", "distance_text", "distance"},
	"currency": {
		"property.priceBreakdown.grossPrice.currency", "property.currency",
		"composite_price_breakdown.gross_amount.currency", "currency_code", "currencycode", "currency",
	},
	"cancellation": {"property.policies.cancellation", "cancellation_policy", "policies.cancellation", "cancellation"},
	"image":        {"property.photoUrls", "max_photo_url", "main_photo_url", "photos", "images"},
	"booking_url":  {"property.url", "url", "booking_url"},
	"label":        {"accessibilityLabel", "accessibility_label"},
	"sust_level":   {"property.sustainability.level", "sustainability.sustainabilityLevel.title", "sustainability.level", "sustainability_level"},
}

var numAliases = map[string][]string{
	"night_price": {
		"price_per_night", "property.pricePerNight",
		"composite_price_breakdown.gross_amount_per_night.value", "price_breakdown.gross_price_per_night",
	},
	"total_price": {
		"property.priceBreakdown.grossPrice.value", "composite_price_breakdown.gross_amount.value",
		"min_total_price", "price_breakdown.gross_price", "total_price", "price",
	},
	"original_price": {
		"property.priceBreakdown.strikethroughPrice.value",
		"composite_price_breakdown.strikethrough_amount.value", "original_price",
	},
	"rating":       {"property.reviewScore", "review_score", "rating", "score"},
	"review_count": {"property.reviewCount", "review_nr", "review_count", "reviews"},
	"stars":        {"property.accuratePropertyClass", "property.propertyClass", "class", "stars"},
	"distance_km":  {"distance_to_cc", "property.distanceKm", "distance_km"},
	"distance_mi":  {"distance_mi", "property.distanceMiles"},
}

var boolAliases = map[string][]string{
	"free_cancel": {"property.policies.freeCancellation", "is_free_cancellable", "free_cancellation", "property.isFreeCancellable"},
	"sust_cert":   {"property.sustainability.certified", "sustainability.certified", "is_sustainable", "property.isSustainable"},
}

var facilityPaths = []string{"property.facilities", "facilities", "hotel_facilities", "property.amenities", "amenities"}

// typeKeywords is ordered: more specific labels are matched first.
var typeKeywords = []struct {
	kw string
	t  domain.AccommodationType
}{
	{"bed and breakfast", domain.TypeBedAndBreakfast},
	{"b&b", domain.TypeBedAndBreakfast},
	{"aparthotel", domain.TypeApartment},
	{"apartment", domain.TypeApartment},
	{"hostel", domain.TypeHostel},
	{"guest house", domain.TypeGuesthouse},
	{"guesthouse", domain.TypeGuesthouse},
	{"resort", domain.TypeResort},
	{"villa", domain.TypeVilla},
	{"holiday home", domain.TypeHolidayHome},
	{"vacation home", domain.TypeHolidayHome},
	{"chalet", domain.TypeHolidayHome},
	{"cottage", domain.TypeHolidayHome},
	{"hotel", domain.TypeHotel},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		switch s := v.(type) {
		case string:
			return strings.TrimSpace(s)
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		}
	}
	return ""
}

// firstNonEmptyAlias: first non-empty string for a named alias set.
func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// firstBool: bool from several paths (bool/0-1 number/"true"/"yes").
func firstBool(m map[string]any, paths ...string) (bool, bool) {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case bool:
			return v, true
		case float64:
			return v != 0, true
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "yes", "1":
				return true, true
			case "false", "no", "0":
				return false, true
			}
		}
	}
	return false, false
}

// firstSliceStrings: accept []any with either strings or {url/src/name}, or a comma list.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		switch raw := lookupAny(m, k).(type) {
		case []any:
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if s := strings.TrimSpace(t); s != "" {
						out = append(out, s)
					}
				case map[string]any:
					for _, f := range []string{"url", "src", "name", "title"} {
						if u, ok := t[f].(string); ok && strings.TrimSpace(u) != "" {
							out = append(out, strings.TrimSpace(u))
							break
						}
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		case string:
			var out []string
			for _, p := range strings.Split(raw, ",") {
				if s := strings.TrimSpace(p); s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func dedupeFold(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

/********** type mapping **********/

// mapType resolves the closed category from an upstream label; unknown labels are hotels.
func mapType(labels ...string) domain.AccommodationType {
	for _, l := range labels {
		if t, ok := domain.ParseAccommodationType(l); ok {
			return t
		}
	}
	for _, l := range labels {
		low := " " + strings.ToLower(l) + " "
		for _, k := range typeKeywords {
			if strings.Contains(low, k.kw) {
				return k.t
			}
		}
	}
	return domain.TypeHotel
}

/********** accommodation mapper **********/

// mapAccommodation reshapes one upstream hotel entry. ok is false for entries
// without a usable name.
func mapAccommodation(p map[string]any, q domain.SearchQuery) (domain.Accommodation, bool) {
	name := firstNonEmptyAlias(p, hotelAliases, "name")
	if name == "" {
		log.Debug().Str("context", "mapAccommodation").Msg("dropping upstream entry without name")
		return domain.Accommodation{}, false
	}
	label := firstNonEmptyAlias(p, hotelAliases, "label")

	a := domain.Accommodation{
		ID:   firstNonEmptyAlias(p, hotelAliases, "id"),
		Name: name,
	}
	if a.ID == "" {
		a.ID = "h-" + strings.ToLower(strings.Join(strings.Fields(name), "-"))
	}

	// Type: explicit label first, then keywords in the name / accessibility text.
	explicit := firstNonEmptyAlias(p, hotelAliases, "type")
	if explicit != "" {
		a.Type = mapType(explicit)
	} else {
		a.Type = mapType(name, label)
	}
	a.TypeLabel = a.Type.Label()

	// Prices: per-night when given, else stay total divided by nights.
	a.Currency = firstNonEmptyAlias(p, hotelAliases, "currency")
	if a.Currency == "" {
		a.Currency = q.Currency
	}
	nights := q.Nights()
	total := getFloatFlexible(p, numAliases["total_price"]...)
	if night := getFloatFlexible(p, numAliases["night_price"]...); night != nil {
		a.PricePerNight = round2(*night)
	} else if total != nil {
		if nights > 0 {
			a.PricePerNight = round2(*total / float64(nights))
		} else {
			a.PricePerNight = round2(*total)
		}
	}
	if total != nil && nights > 0 {
		t := round2(*total)
		a.TotalPrice = &t
	}
	if orig := getFloatFlexible(p, numAliases["original_price"]...); orig != nil && nights > 0 {
		o := round2(*orig / float64(nights))
		if o > a.PricePerNight {
			a.OriginalPrice = &o
		}
	}

	// Rating + derived label. Ratings outside 0..10 are discarded.
	if r := getFloatFlexible(p, numAliases["rating"]...); r != nil && *r > 0 && *r <= 10 {
		v := math.Round(*r*10) / 10
		a.Rating = &v
	}
	a.ReviewScoreLabel = domain.ReviewScoreLabel(a.Rating)
	if n := getFloatFlexible(p, numAliases["review_count"]...); n != nil && *n > 0 {
		a.ReviewCount = int(*n)
	}
	if s := getFloatFlexible(p, numAliases["stars"]...); s != nil && *s >= 1 && *s <= 5 {
		v := int(*s)
		a.Stars = &v
	}

	a.Location = firstNonEmptyAlias(p, hotelAliases, "location")
	if a.Location == "" {
		a.Location = q.Destination
	}
	a.Distance = mapDistance(p)

	a.Facilities = dedupeFold(firstSliceStrings(p, facilityPaths...))

	a.FreeCancellation, a.CancellationPolicy = mapCancellation(p, label)
	a.Sustainability = mapSustainability(p)

	if imgs := firstSliceStrings(p, hotelAliases["image"]...); len(imgs) > 0 {
		a.ImageURL = imgs[0]
	} else {
		a.ImageURL = firstNonEmptyAlias(p, hotelAliases, "image")
	}
	a.BookingURL = firstNonEmptyAlias(p, hotelAliases, "booking_url")

	return a, true
}

func mapDistance(p map[string]any) string {
	if s := firstNonEmptyAlias(p, hotelAliases, "distance"); s != "" {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return s
		}
	}
	if km := getFloatFlexible(p, numAliases["distance_km"]...); km != nil {
		return fmt.Sprintf("%.1f km from centre", *km)
	}
	if mi := getFloatFlexible(p, numAliases["distance_mi"]...); mi != nil {
		return fmt.Sprintf("%.1f mi from centre", *mi)
	}
	if km := getFloatFlexible(p, hotelAliases["distance"]...); km != nil {
		return fmt.Sprintf("%.1f km from centre", *km)
	}
	return ""
}

func mapCancellation(p map[string]any, label string) (bool, string) {
	policy := firstNonEmptyAlias(p, hotelAliases, "cancellation")
	free, known := firstBool(p, boolAliases["free_cancel"]...)
	lowLabel := strings.ToLower(label)
	if !known {
		switch {
		case strings.Contains(strings.ToLower(policy), "free cancellation"):
			free, known = true, true
		case strings.Contains(lowLabel, "free cancellation"):
			free, known = true, true
		case strings.Contains(lowLabel, "non-refundable"):
			free, known = false, true
		}
	}
	if policy != "" {
		return free, policy
	}
	switch {
	case known && free:
		return true, "Free cancellation"
	case known:
		return false, "Non-refundable"
	}
	return false, "See property policy"
}

func mapSustainability(p map[string]any) *domain.Sustainability {
	level := firstNonEmptyAlias(p, hotelAliases, "sust_level")
	cert, known := firstBool(p, boolAliases["sust_cert"]...)
	if level == "" && !known {
		return nil
	}
	if level != "" && !known {
		cert = true
	}
	return &domain.Sustainability{Certified: cert, Level: level}
}

func mapAccommodations(in []map[string]any, q domain.SearchQuery) []domain.Accommodation {
	out := make([]domain.Accommodation, 0, len(in))
	for _, p := range in {
		if a, ok := mapAccommodation(p, q); ok {
			out = append(out, a)
		}
	}
	return out
}
