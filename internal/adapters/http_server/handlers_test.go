package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stays_mcp/internal/app"
	"stays_mcp/internal/domain"
)

type fakeSearcher struct {
	got    domain.SearchQuery
	recent []domain.SearchLogEntry
	err    error
}

func (f *fakeSearcher) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error) {
	f.got = q
	if f.err != nil {
		return domain.SearchResult{}, f.err
	}
	return domain.SearchResult{
		Destination:    q.Destination,
		Source:         domain.SourceMock,
		Accommodations: []domain.Accommodation{{ID: "mock-1", Name: "Hotel Lumière"}},
		Total:          1,
		TotalFound:     1,
	}, nil
}

func (f *fakeSearcher) Recent(ctx context.Context, limit int) ([]domain.SearchLogEntry, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

// hungClient never answers; every call ends when its context does.
type hungClient struct{}

func (hungClient) ResolveDestination(ctx context.Context, q string) (domain.Destination, error) {
	<-ctx.Done()
	return domain.Destination{}, ctx.Err()
}

func (hungClient) SearchHotels(ctx context.Context, d domain.Destination, q domain.SearchQuery) ([]map[string]any, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestServer(f *fakeSearcher) http.Handler {
	s := New(5 * time.Second)
	s.MountHandlers(&Handlers{S: f})
	s.MountWidget()
	return s.Mux()
}

func do(h http.Handler, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	rr := do(newTestServer(&fakeSearcher{}), http.MethodGet, "/healthz", "", nil)
	if rr.Code != 200 || rr.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}

func TestCORSPreflight(t *testing.T) {
	rr := do(newTestServer(&fakeSearcher{}), http.MethodOptions, "/v1/search", "", map[string]string{
		"Origin":                        "https://chat.example",
		"Access-Control-Request-Method": "POST",
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Headers"), "Mcp-Session-Id") {
		t.Fatalf("allow headers=%q", rr.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestRecentSearches_ETag(t *testing.T) {
	f := &fakeSearcher{recent: []domain.SearchLogEntry{
		{ID: 2, Destination: "Rome", Source: domain.SourceLive},
		{ID: 1, Destination: "Paris", Source: domain.SourceMock},
	}}
	h := newTestServer(f)

	rr := do(h, http.MethodGet, "/v1/searches/recent?limit=1", "", nil)
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out []domain.SearchLogEntry
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Destination != "Rome" {
		t.Fatalf("out=%+v", out)
	}
	etag := rr.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("etag=%q", etag)
	}

	rr = do(h, http.MethodGet, "/v1/searches/recent?limit=1", "", map[string]string{"If-None-Match": etag})
	if rr.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", rr.Code)
	}
}

func TestRecentSearches_EmptyIsArray(t *testing.T) {
	rr := do(newTestServer(&fakeSearcher{}), http.MethodGet, "/v1/searches/recent", "", nil)
	if rr.Code != 200 || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("got %d %q", rr.Code, rr.Body.String())
	}
}

func TestRecentSearches_BadLimit(t *testing.T) {
	for _, l := range []string{"0", "abc", "101"} {
		rr := do(newTestServer(&fakeSearcher{}), http.MethodGet, "/v1/searches/recent?limit="+l, "", nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("limit=%s: status=%d", l, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Fatalf("limit=%s: content-type=%q", l, ct)
		}
	}
}

func TestSearch_OK(t *testing.T) {
	f := &fakeSearcher{}
	body := `{"destination":"Paris","adults":2,"accommodation_types":["hotel"],"min_price":50,"free_cancellation":true}`
	rr := do(newTestServer(f), http.MethodPost, "/v1/search", body, map[string]string{"Content-Type": "application/json"})
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if f.got.Destination != "Paris" || f.got.Filters.MinPrice == nil || *f.got.Filters.MinPrice != 50 {
		t.Fatalf("query=%+v", f.got)
	}
	if len(f.got.Filters.AccommodationTypes) != 1 || !f.got.Filters.FreeCancellation {
		t.Fatalf("filters=%+v", f.got.Filters)
	}
	var res domain.SearchResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Source != domain.SourceMock || res.Accommodations[0].ID != "mock-1" {
		t.Fatalf("res=%+v", res)
	}
}

func TestSearch_InvalidQuery(t *testing.T) {
	f := &fakeSearcher{err: fmt.Errorf("%w: destination is required", domain.ErrInvalidQuery)}
	rr := do(newTestServer(f), http.MethodPost, "/v1/search", `{"destination":""}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rr.Code)
	}
	var p problem
	_ = json.Unmarshal(rr.Body.Bytes(), &p)
	if !strings.Contains(p.Detail, "destination") {
		t.Fatalf("problem=%+v", p)
	}
}

func TestSearch_BadBody(t *testing.T) {
	rr := do(newTestServer(&fakeSearcher{}), http.MethodPost, "/v1/search", `{not json`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestWidgetServed(t *testing.T) {
	rr := do(newTestServer(&fakeSearcher{}), http.MethodGet, "/widget/accommodations.html", "", nil)
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), "<html") {
		t.Fatalf("widget: %d", rr.Code)
	}
}

func TestStatusWriterFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &srw{ResponseWriter: rec}
	var f http.Flusher = sw
	f.Flush()
	if !rec.Flushed || sw.Status() != http.StatusOK {
		t.Fatalf("flush not forwarded")
	}
}

func TestSearch_HungUpstreamServesMockBeforeRouteTimeout(t *testing.T) {
	svc := app.NewSearchService(hungClient{}, nil, nil, time.Minute, "EUR").
		WithUpstreamTimeout(50 * time.Millisecond)
	s := New(500 * time.Millisecond)
	s.MountHandlers(&Handlers{S: svc})

	rr := do(s.Mux(), http.MethodPost, "/v1/search", `{"destination":"Lisbon"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
	var res domain.SearchResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Source != domain.SourceMock || res.Total == 0 {
		t.Fatalf("expected mock results, got source=%s total=%d", res.Source, res.Total)
	}
}
