// internal/adapters/hotelapi/client.go
package hotelapi

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stays_mcp/internal/adapters/observability"
	"stays_mcp/internal/domain"
)

const (
	service = "hotelapi"

	// maxRetryWait caps Retry-After so one throttled call cannot stall a search.
	maxRetryWait = 5 * time.Second
)

var (
	ErrNoAPIKey     = fmt.Errorf("hotelapi: %w", domain.ErrNoAPIKey)
	ErrNotFound     = fmt.Errorf("hotelapi: %w", domain.ErrNotFound)
	ErrUnauthorized = fmt.Errorf("hotelapi: unauthorized: %w", domain.ErrUnauthorized)
	ErrForbidden    = fmt.Errorf("hotelapi: forbidden: %w", domain.ErrUnauthorized)

	ErrEndpointMissing = fmt.Errorf("hotelapi: %w", domain.ErrEndpointMissing)
)

type Client struct {
	base string
	host string
	key  string
	hc   *http.Client
	rl   *rate.Limiter
}

// New builds a client for the booking search API. An empty key is accepted;
// every call then fails fast with ErrNoAPIKey.
func New(base, host, key string, rps int, timeout time.Duration) *Client {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		host: host,
		key:  key,
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// ---- Public API ----

func (c *Client) ResolveDestination(ctx context.Context, query string) (domain.Destination, error) {
	v := url.Values{}
	v.Set("query", query)

	var out struct {
		Status  bool             `json:"status"`
		Message any              `json:"message"`
		Data    []map[string]any `json:"data"`
	}
	if err := c.get(ctx, "searchDestination", c.base+"/api/v1/hotels/searchDestination?"+v.Encode(), &out); err != nil {
		return domain.Destination{}, err
	}
	for _, d := range out.Data {
		id := stringish(d["dest_id"])
		if id == "" {
			continue
		}
		st := stringish(d["search_type"])
		if st == "" {
			st = stringish(d["dest_type"])
		}
		label := stringish(d["label"])
		if label == "" {
			label = stringish(d["name"])
		}
		return domain.Destination{ID: id, SearchType: strings.ToUpper(st), Label: label}, nil
	}
	return domain.Destination{}, fmt.Errorf("destination %q: %w", query, ErrNotFound)
}

func (c *Client) SearchHotels(ctx context.Context, dest domain.Destination, q domain.SearchQuery) ([]map[string]any, error) {
	v := url.Values{}
	v.Set("dest_id", dest.ID)
	v.Set("search_type", dest.SearchType)
	if q.CheckIn != "" {
		v.Set("arrival_date", q.CheckIn)
		v.Set("departure_date", q.CheckOut)
	}
	v.Set("adults", strconv.Itoa(q.Adults))
	v.Set("room_qty", strconv.Itoa(q.Rooms))
	v.Set("page_number", "1")
	v.Set("units", "metric")
	v.Set("languagecode", "en-us")
	if q.Currency != "" {
		v.Set("currency_code", q.Currency)
	}

	var out struct {
		Status bool `json:"status"`
		Data   struct {
			Hotels []map[string]any `json:"hotels"`
		} `json:"data"`
	}
	if err := c.get(ctx, "searchHotels", c.base+"/api/v1/hotels/searchHotels?"+v.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Data.Hotels, nil
}

// ---- Internals ----

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	if c.key == "" {
		return ErrNoAPIKey
	}
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-RapidAPI-Key", c.key)
		if c.host != "" {
			req.Header.Set("X-RapidAPI-Host", c.host)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "stays-mcp/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(service, endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if wait := backoff(i); i < 3 && fitsDeadline(ctx, wait) && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode %s: %w", endpoint, err)
			}
			return nil

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return fmt.Errorf("%s: %w", endpoint, ErrEndpointMissing)

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			if wait > maxRetryWait {
				wait = maxRetryWait
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && fitsDeadline(ctx, wait) && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// stringish renders ids that arrive either as JSON strings or numbers.
func stringish(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	}
	return ""
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// fitsDeadline reports whether waiting d still leaves time before ctx's deadline.
func fitsDeadline(ctx context.Context, d time.Duration) bool {
	dl, ok := ctx.Deadline()
	return !ok || time.Until(dl) > d
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns 200ms, 400ms, 800ms... plus up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
