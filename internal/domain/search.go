package domain

type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
	SourceMock  Source = "mock"
)

type Filters struct {
	AccommodationTypes []AccommodationType `json:"accommodation_types,omitempty"`
	MinPrice           *float64            `json:"min_price,omitempty"`
	MaxPrice           *float64            `json:"max_price,omitempty"`
	MinRating          *float64            `json:"min_rating,omitempty"`
	MinStars           *int                `json:"min_stars,omitempty"`
	Facilities         []string            `json:"facilities,omitempty"`
	FreeCancellation   bool                `json:"free_cancellation,omitempty"`
	SustainableOnly    bool                `json:"sustainable_only,omitempty"`
}

func (f Filters) Empty() bool {
	return len(f.AccommodationTypes) == 0 && f.MinPrice == nil && f.MaxPrice == nil &&
		f.MinRating == nil && f.MinStars == nil && len(f.Facilities) == 0 &&
		!f.FreeCancellation && !f.SustainableOnly
}

type SearchQuery struct {
	Destination string
	CheckIn     string // YYYY-MM-DD, optional
	CheckOut    string // YYYY-MM-DD, optional
	Adults      int
	Rooms       int
	Currency    string
	Limit       int
	Filters     Filters
}

// Nights is the stay length, or 0 when dates are unknown.
func (q SearchQuery) Nights() int {
	in, out, ok := q.dates()
	if !ok {
		return 0
	}
	return int(out.Sub(in).Hours() / 24)
}

type SearchResult struct {
	Accommodations []Accommodation `json:"accommodations"`
	Destination    string          `json:"destination"`
	CheckIn        string          `json:"check_in,omitempty"`
	CheckOut       string          `json:"check_out,omitempty"`
	Currency       string          `json:"currency"`
	Filters        Filters         `json:"filters"`
	Source         Source          `json:"source"`
	TotalFound     int             `json:"total_found"`
	Total          int             `json:"total"`
}

// WithEmptyLists returns a copy whose list fields encode as [] instead of null.
// The receiver's accommodations are not modified; they may be shared with other callers.
func (r SearchResult) WithEmptyLists() SearchResult {
	out := make([]Accommodation, len(r.Accommodations))
	copy(out, r.Accommodations)
	for i := range out {
		if out[i].Facilities == nil {
			out[i].Facilities = []string{}
		}
	}
	r.Accommodations = out
	return r
}
