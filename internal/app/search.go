package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"stays_mcp/internal/adapters/observability"
	"stays_mcp/internal/domain"
)

const (
	writeTimeout           = 2 * time.Second
	defaultUpstreamTimeout = 8 * time.Second
)

type SearchService struct {
	client   domain.HotelSearchClient
	cache    domain.Cache     // optional
	searches domain.SearchLog // optional
	cacheTTL time.Duration
	currency string
	group    singleflight.Group

	upstreamTimeout time.Duration
}

func NewSearchService(c domain.HotelSearchClient, cache domain.Cache, sl domain.SearchLog, ttl time.Duration, currency string) *SearchService {
	if currency == "" {
		currency = "EUR"
	}
	return &SearchService{
		client:          c,
		cache:           cache,
		searches:        sl,
		cacheTTL:        ttl,
		currency:        currency,
		upstreamTimeout: defaultUpstreamTimeout,
	}
}

// WithUpstreamTimeout bounds each upstream fetch, retries included. Keep it below
// the HTTP route timeout so a slow upstream ends in mock data rather than a 503.
func (s *SearchService) WithUpstreamTimeout(d time.Duration) *SearchService {
	if d > 0 {
		s.upstreamTimeout = d
	}
	return s
}

// Search answers q from cache, the upstream API, or mock data, then filters.
// Only invalid queries produce an error; upstream failures never do.
func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error) {
	start := time.Now()
	q, err := q.Normalize(s.currency)
	if err != nil {
		return domain.SearchResult{}, err
	}

	all, source := s.fetch(ctx, q)

	filtered := applyFilters(all, q.Filters)
	if len(filtered) > q.Limit {
		filtered = filtered[:q.Limit]
	}

	res := domain.SearchResult{
		Accommodations: filtered,
		Destination:    q.Destination,
		CheckIn:        q.CheckIn,
		CheckOut:       q.CheckOut,
		Currency:       q.Currency,
		Filters:        q.Filters,
		Source:         source,
		TotalFound:     len(all),
		Total:          len(filtered),
	}.WithEmptyLists()

	log.Info().
		Str("destination", q.Destination).
		Str("source", string(source)).
		Int("found", res.TotalFound).
		Int("returned", res.Total).
		Dur("duration", time.Since(start)).
		Msg("accommodation search")

	s.record(ctx, q, res, time.Since(start))
	return res, nil
}

// Prefetch fills the cache entry a search for destination and the given dates
// (both empty for an undated search) with default guests would read.
// It reports the source the data came from; mock results are not cached.
func (s *SearchService) Prefetch(ctx context.Context, destination, checkIn, checkOut string) (int, domain.Source, error) {
	q, err := domain.SearchQuery{Destination: destination, CheckIn: checkIn, CheckOut: checkOut}.Normalize(s.currency)
	if err != nil {
		return 0, "", err
	}
	all, source := s.fetch(ctx, q)
	return len(all), source, nil
}

// Recent lists the latest logged searches, newest first. Empty without a store.
func (s *SearchService) Recent(ctx context.Context, limit int) ([]domain.SearchLogEntry, error) {
	if s.searches == nil {
		return []domain.SearchLogEntry{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	out, err := s.searches.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.SearchLogEntry{}
	}
	return out, nil
}

func (s *SearchService) fetch(ctx context.Context, q domain.SearchQuery) ([]domain.Accommodation, domain.Source) {
	key := cacheKey(q)
	if s.cache != nil {
		var cached []domain.Accommodation
		ok, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		} else if ok && len(cached) > 0 {
			return cached, domain.SourceCache
		}
	}

	// Identical concurrent searches share one upstream round trip. The flight is
	// detached from the caller that started it; each caller stops waiting on its own ctx.
	ch := s.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.upstreamTimeout)
		defer cancel()
		recs, err := s.fetchLive(fctx, q)
		if err == nil && len(recs) > 0 {
			s.store(ctx, key, recs)
		}
		return recs, err
	})

	var recs []domain.Accommodation
	var err error
	select {
	case r := <-ch:
		err = r.Err
		if err == nil {
			recs, _ = r.Val.([]domain.Accommodation)
		}
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil || len(recs) == 0 {
		reason := fallbackReason(err)
		log.Warn().Err(err).Str("destination", q.Destination).Str("reason", reason).
			Msg("upstream search unavailable; serving mock data")
		observability.ObserveFallback(reason)
		return mockAccommodations(q), domain.SourceMock
	}
	return recs, domain.SourceLive
}

func (s *SearchService) store(ctx context.Context, key string, recs []domain.Accommodation) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := s.cache.Set(wctx, key, recs, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (s *SearchService) fetchLive(ctx context.Context, q domain.SearchQuery) ([]domain.Accommodation, error) {
	if s.client == nil {
		return nil, domain.ErrNoAPIKey
	}
	dest, err := s.client.ResolveDestination(ctx, q.Destination)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}
	raw, err := s.client.SearchHotels(ctx, dest, q)
	if err != nil {
		return nil, fmt.Errorf("search hotels: %w", err)
	}
	return mapAccommodations(raw, q), nil
}

func (s *SearchService) record(ctx context.Context, q domain.SearchQuery, res domain.SearchResult, d time.Duration) {
	if s.searches == nil {
		return
	}
	// the request may already be finished; the log write gets its own deadline
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	e := domain.SearchLogEntry{
		Destination:   q.Destination,
		Adults:        q.Adults,
		Rooms:         q.Rooms,
		Source:        res.Source,
		TotalFound:    res.TotalFound,
		TotalReturned: res.Total,
		DurationMS:    d.Milliseconds(),
	}
	if q.CheckIn != "" {
		in, out := q.CheckIn, q.CheckOut
		e.CheckIn, e.CheckOut = &in, &out
	}
	if err := s.searches.Record(wctx, e); err != nil {
		log.Warn().Err(err).Msg("search log write failed")
	}
}

func fallbackReason(err error) string {
	switch {
	case err == nil:
		return "empty"
	case errors.Is(err, domain.ErrNoAPIKey):
		return "no_api_key"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return "destination_not_found"
	case errors.Is(err, domain.ErrEndpointMissing):
		return "endpoint_not_found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	}
	return "upstream_error"
}

func cacheKey(q domain.SearchQuery) string {
	sig := strings.Join([]string{
		strings.ToLower(q.Destination), q.CheckIn, q.CheckOut,
		fmt.Sprint(q.Adults), fmt.Sprint(q.Rooms), q.Currency,
	}, "|")
	sum := sha1.Sum([]byte(sig))
	return "search:" + hex.EncodeToString(sum[:])
}
