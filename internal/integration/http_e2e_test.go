package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"stays_mcp/internal/adapters/hotelapi"
	server "stays_mcp/internal/adapters/http_server"
	"stays_mcp/internal/adapters/mcpserver"
	redisad "stays_mcp/internal/adapters/redis"
	"stays_mcp/internal/app"
	"stays_mcp/internal/domain"
)

// ---------- fake hotel API ----------

type upstream struct {
	empty    atomic.Bool
	slow     atomic.Bool
	searches atomic.Int32
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-RapidAPI-Key") != "test-key" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/v1/hotels/searchDestination":
		_, _ = w.Write([]byte(`{"status":true,"data":[{"dest_id":"-2167973","search_type":"city","name":"Lisbon","label":"Lisbon, Portugal"}]}`))
	case "/api/v1/hotels/searchHotels":
		u.searches.Add(1)
		if u.slow.Load() {
			select {
			case <-r.Context().Done():
			case <-time.After(10 * time.Second):
			}
			return
		}
		if u.empty.Load() {
			_, _ = w.Write([]byte(`{"status":true,"data":{"hotels":[]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":true,"data":{"hotels":[
		  {"hotel_id": 11, "property": {"name": "Alfama Boutique Hotel", "reviewScore": 9.1, "reviewCount": 410,
		    "accuratePropertyClass": 4, "priceBreakdown": {"grossPrice": {"value": 150, "currency": "EUR"}}}},
		  {"hotel_id": 12, "property": {"name": "Bairro Alto Hostel", "reviewScore": 7.9, "reviewCount": 95,
		    "priceBreakdown": {"grossPrice": {"value": 30, "currency": "EUR"}}}}
		]}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ---------- full stack ----------

type stack struct {
	url string
	up  *upstream
}

func newStack(t *testing.T) stack {
	t.Helper()
	up := &upstream{}
	api := httptest.NewServer(up)
	t.Cleanup(api.Close)

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	client := hotelapi.New(api.URL, "booking-com15.p.rapidapi.com", "test-key", 50, 5*time.Second)
	svc := app.NewSearchService(client, cache, nil, time.Minute, "EUR").WithUpstreamTimeout(2 * time.Second)
	mcpSrv := mcpserver.New(svc, mcpserver.Options{Version: "e2e"})

	srv := server.New(5 * time.Second)
	srv.MountHandlers(&server.Handlers{S: svc})
	srv.MountWidget()
	srv.MountMCP(mcpserver.SSEHandler(mcpSrv), mcpserver.StreamableHandler(mcpSrv))

	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return stack{url: ts.URL, up: up}
}

func connect(t *testing.T, tr mcp.Transport) *mcp.ClientSession {
	t.Helper()
	// the SSE stream lives on this context, so it must outlast the test body
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	c := mcp.NewClient(&mcp.Implementation{Name: "e2e", Version: "v0"}, nil)
	cs, err := c.Connect(ctx, tr, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callSearch(t *testing.T, cs *mcp.ClientSession, args map[string]any) domain.SearchResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: mcpserver.ToolSearch, Arguments: args})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %+v", res.Content)
	}
	raw, _ := json.Marshal(res.StructuredContent)
	var out domain.SearchResult
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode structured content: %v", err)
	}
	return out
}

// ---------- tests ----------

func TestSSE_LiveThenCache(t *testing.T) {
	st := newStack(t)
	cs := connect(t, &mcp.SSEClientTransport{Endpoint: st.url + "/sse"})

	tools, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	if err != nil || len(tools.Tools) != 1 {
		t.Fatalf("list tools: %v %+v", err, tools)
	}

	args := map[string]any{"destination": "Lisbon", "check_in": "2026-06-01", "check_out": "2026-06-03"}
	first := callSearch(t, cs, args)
	if first.Source != domain.SourceLive || first.Total != 2 {
		t.Fatalf("first: source=%s total=%d", first.Source, first.Total)
	}
	if a := first.Accommodations[0]; a.Name != "Alfama Boutique Hotel" || a.PricePerNight != 75 {
		t.Fatalf("mapped: %+v", a)
	}

	second := callSearch(t, cs, args)
	if second.Source != domain.SourceCache {
		t.Fatalf("second source=%s", second.Source)
	}
	if n := st.up.searches.Load(); n != 1 {
		t.Fatalf("upstream hit %d times", n)
	}

	filtered := callSearch(t, cs, map[string]any{
		"destination": "Lisbon", "check_in": "2026-06-01", "check_out": "2026-06-03", "max_price": 50,
	})
	if filtered.Total != 1 || filtered.Accommodations[0].Name != "Bairro Alto Hostel" || filtered.TotalFound != 2 {
		t.Fatalf("filtered: %+v", filtered)
	}
}

func TestSSE_EmptyUpstreamFallsBackToMock(t *testing.T) {
	st := newStack(t)
	st.up.empty.Store(true)
	cs := connect(t, &mcp.SSEClientTransport{Endpoint: st.url + "/sse"})

	res := callSearch(t, cs, map[string]any{"destination": "Lisbon"})
	if res.Source != domain.SourceMock || res.Total == 0 {
		t.Fatalf("expected mock results, got source=%s total=%d", res.Source, res.Total)
	}
	for _, a := range res.Accommodations {
		if !strings.HasSuffix(a.Location, "Lisbon") {
			t.Fatalf("mock not stamped with destination: %q", a.Location)
		}
	}

	// mock data is never cached, so the next call goes upstream again
	_ = callSearch(t, cs, map[string]any{"destination": "Lisbon"})
	if n := st.up.searches.Load(); n != 2 {
		t.Fatalf("upstream hit %d times", n)
	}
}

func TestStreamable_ReadWidget(t *testing.T) {
	st := newStack(t)
	cs := connect(t, &mcp.StreamableClientTransport{Endpoint: st.url + "/mcp"})

	res, err := cs.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: "ui://widget/accommodations.html"})
	if err != nil {
		t.Fatalf("read widget: %v", err)
	}
	if res.Contents[0].MIMEType != "text/html+skybridge" {
		t.Fatalf("mime=%s", res.Contents[0].MIMEType)
	}
}

func TestREST_SearchAndHealth(t *testing.T) {
	st := newStack(t)

	resp, err := http.Get(st.url + "/healthz")
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Post(st.url+"/v1/search", "application/json",
		strings.NewReader(`{"destination":"Lisbon","accommodation_types":["hostel"]}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var out domain.SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 1 || out.Accommodations[0].Type != domain.TypeHostel {
		t.Fatalf("out=%+v", out)
	}
}

func TestSSE_SlowUpstreamFallsBackToMock(t *testing.T) {
	st := newStack(t)
	st.up.slow.Store(true)
	cs := connect(t, &mcp.SSEClientTransport{Endpoint: st.url + "/sse"})

	start := time.Now()
	res := callSearch(t, cs, map[string]any{"destination": "Lisbon"})
	if res.Source != domain.SourceMock {
		t.Fatalf("expected mock results, got source=%s", res.Source)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Fatalf("tool call took %v; upstream budget not applied", d)
	}
}
