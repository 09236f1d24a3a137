package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"stays_mcp/internal/adapters/observability"
	"stays_mcp/internal/domain"
	"stays_mcp/internal/widget"
)

type handlers struct{ svc Searcher }

type SearchInput struct {
	Destination        string   `json:"destination" jsonschema:"city, region or landmark to search around"`
	CheckIn            string   `json:"check_in,omitempty" jsonschema:"arrival date as YYYY-MM-DD"`
	CheckOut           string   `json:"check_out,omitempty" jsonschema:"departure date as YYYY-MM-DD, after check_in"`
	Adults             int      `json:"adults,omitempty" jsonschema:"number of adult guests, default 2"`
	Rooms              int      `json:"rooms,omitempty" jsonschema:"number of rooms, default 1"`
	Currency           string   `json:"currency,omitempty" jsonschema:"ISO 4217 currency code for prices"`
	Limit              int      `json:"limit,omitempty" jsonschema:"maximum number of results, default 10, at most 50"`
	AccommodationTypes []string `json:"accommodation_types,omitempty" jsonschema:"only these types: hotel, apartment, hostel, guesthouse, bed_and_breakfast, resort, villa, holiday_home"`
	MinPrice           *float64 `json:"min_price,omitempty" jsonschema:"minimum price per night"`
	MaxPrice           *float64 `json:"max_price,omitempty" jsonschema:"maximum price per night"`
	MinRating          *float64 `json:"min_rating,omitempty" jsonschema:"minimum review score from 0 to 10"`
	MinStars           *int     `json:"min_stars,omitempty" jsonschema:"minimum star classification"`
	Facilities         []string `json:"facilities,omitempty" jsonschema:"facilities that must all be present, e.g. wifi, parking, pool"`
	FreeCancellation   bool     `json:"free_cancellation,omitempty" jsonschema:"only stays with free cancellation"`
	SustainableOnly    bool     `json:"sustainable_only,omitempty" jsonschema:"only sustainability-certified stays"`
}

func (in SearchInput) query() (domain.SearchQuery, error) {
	q := domain.SearchQuery{
		Destination: in.Destination,
		CheckIn:     in.CheckIn,
		CheckOut:    in.CheckOut,
		Adults:      in.Adults,
		Rooms:       in.Rooms,
		Currency:    in.Currency,
		Limit:       in.Limit,
		Filters: domain.Filters{
			MinPrice:         in.MinPrice,
			MaxPrice:         in.MaxPrice,
			MinRating:        in.MinRating,
			MinStars:         in.MinStars,
			Facilities:       in.Facilities,
			FreeCancellation: in.FreeCancellation,
			SustainableOnly:  in.SustainableOnly,
		},
	}
	for _, s := range in.AccommodationTypes {
		t, ok := domain.ParseAccommodationType(s)
		if !ok {
			return q, fmt.Errorf("%w: unknown accommodation type %q", domain.ErrInvalidQuery, s)
		}
		q.Filters.AccommodationTypes = append(q.Filters.AccommodationTypes, t)
	}
	return q, nil
}

func registerTools(srv *mcp.Server, h *handlers) {
	openWorld := true
	mcp.AddTool(srv, &mcp.Tool{
		Name:  ToolSearch,
		Title: "Search accommodations",
		Description: "Search hotels, apartments, hostels and other places to stay in a destination. " +
			"Supports dates, guests and filters (type, price, rating, stars, facilities, free cancellation, sustainability).",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:  true,
			OpenWorldHint: &openWorld,
		},
		Meta: mcp.Meta{
			"openai/outputTemplate":          widget.URI,
			"openai/toolInvocation/invoking": "Searching for stays…",
			"openai/toolInvocation/invoked":  "Found stays",
			"openai/widgetAccessible":        true,
			"openai/resultCanProduceWidget":  true,
		},
	}, h.search)
}

func (h *handlers) search(ctx context.Context, req *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, domain.SearchResult, error) {
	q, err := in.query()
	if err != nil {
		return nil, domain.SearchResult{}, err
	}
	res, err := h.svc.Search(ctx, q)
	if err != nil {
		log.Debug().Err(err).Str("tool", ToolSearch).Msg("rejected tool input")
		return nil, domain.SearchResult{}, err
	}
	observability.ObserveToolCall(ToolSearch, string(res.Source))
	// structured output is checked against the result schema, where lists are never null
	res = res.WithEmptyLists()

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: summary(res)}},
	}, res, nil
}

// summary is the plain-text companion to the structured result.
func summary(res domain.SearchResult) string {
	var b strings.Builder
	switch res.Total {
	case 0:
		fmt.Fprintf(&b, "No stays in %s match the requested filters", res.Destination)
		if res.TotalFound > 0 {
			fmt.Fprintf(&b, " (%d found before filtering)", res.TotalFound)
		}
		b.WriteString(".")
		return b.String()
	case 1:
		fmt.Fprintf(&b, "Found 1 stay in %s", res.Destination)
	default:
		fmt.Fprintf(&b, "Found %d stays in %s", res.Total, res.Destination)
	}
	if res.CheckIn != "" {
		fmt.Fprintf(&b, " for %s to %s", res.CheckIn, res.CheckOut)
	}
	b.WriteString(":")
	for i, a := range res.Accommodations {
		if i == 5 {
			fmt.Fprintf(&b, "\n… and %d more", len(res.Accommodations)-5)
			break
		}
		fmt.Fprintf(&b, "\n- %s (%s), %.0f %s/night", a.Name, a.TypeLabel, a.PricePerNight, a.Currency)
		if a.Rating != nil {
			fmt.Fprintf(&b, ", %.1f %s", *a.Rating, a.ReviewScoreLabel)
		}
	}
	return b.String()
}
