package app

import (
	"strings"

	"stays_mcp/internal/domain"
)

// applyFilters keeps the accommodations that satisfy every set filter. Order is preserved.
func applyFilters(in []domain.Accommodation, f domain.Filters) []domain.Accommodation {
	if f.Empty() {
		return in
	}
	out := make([]domain.Accommodation, 0, len(in))
	for _, a := range in {
		if matches(a, f) {
			out = append(out, a)
		}
	}
	return out
}

func matches(a domain.Accommodation, f domain.Filters) bool {
	if len(f.AccommodationTypes) > 0 && !containsType(f.AccommodationTypes, a.Type) {
		return false
	}
	if f.MinPrice != nil && a.PricePerNight < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && a.PricePerNight > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && (a.Rating == nil || *a.Rating < *f.MinRating) {
		return false
	}
	if f.MinStars != nil && (a.Stars == nil || *a.Stars < *f.MinStars) {
		return false
	}
	for _, want := range f.Facilities {
		if !hasFacility(a.Facilities, want) {
			return false
		}
	}
	if f.FreeCancellation && !a.FreeCancellation {
		return false
	}
	if f.SustainableOnly && (a.Sustainability == nil || !a.Sustainability.Certified) {
		return false
	}
	return true
}

func containsType(ts []domain.AccommodationType, t domain.AccommodationType) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// hasFacility matches case-insensitively on substrings ("wifi" matches "Free WiFi").
func hasFacility(have []string, want string) bool {
	w := strings.ToLower(strings.TrimSpace(want))
	for _, h := range have {
		if strings.Contains(strings.ToLower(h), w) {
			return true
		}
	}
	return false
}
