package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidQuery = errors.New("invalid search query")
	ErrNotFound     = errors.New("not found")
	ErrNoAPIKey     = errors.New("upstream API key not configured")
	ErrUnauthorized = errors.New("upstream rejected credentials")
)

// ErrEndpointMissing is a 404 on a search call itself, as opposed to an unknown destination.
var ErrEndpointMissing = errors.New("upstream endpoint not found")

// Destination is the upstream's resolved identifier for a free-text place name.
type Destination struct {
	ID         string
	SearchType string
	Label      string
}

type HotelSearchClient interface {
	ResolveDestination(ctx context.Context, query string) (Destination, error)
	SearchHotels(ctx context.Context, dest Destination, q SearchQuery) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type SearchLog interface {
	Record(ctx context.Context, e SearchLogEntry) error
	Recent(ctx context.Context, limit int) ([]SearchLogEntry, error)
}

type SearchLogEntry struct {
	ID            int64     `json:"id"`
	Destination   string    `json:"destination"`
	CheckIn       *string   `json:"check_in,omitempty"`
	CheckOut      *string   `json:"check_out,omitempty"`
	Adults        int       `json:"adults"`
	Rooms         int       `json:"rooms"`
	Source        Source    `json:"source"`
	TotalFound    int       `json:"total_found"`
	TotalReturned int       `json:"total_returned"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}
