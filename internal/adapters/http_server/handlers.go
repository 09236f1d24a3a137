// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stays_mcp/internal/domain"
)

type Searcher interface {
	Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error)
	Recent(ctx context.Context, limit int) ([]domain.SearchLogEntry, error)
}

type Handlers struct{ S Searcher }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// searchRequest mirrors the MCP tool arguments.
type searchRequest struct {
	Destination string `json:"destination"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	Adults      int    `json:"adults"`
	Rooms       int    `json:"rooms"`
	Currency    string `json:"currency"`
	Limit       int    `json:"limit"`
	domain.Filters
}

const maxBody = 64 << 10

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(s.timeout))
		r.Get("/v1/searches/recent", h.recentSearches)
		r.Post("/v1/search", h.search)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) recentSearches(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 100 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 100")
			return
		}
		limit = l
	}

	out, err := h.S.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("recent searches failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not load recent searches")
		return
	}
	if out == nil {
		out = []domain.SearchLogEntry{}
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	writeJSON(w, http.StatusOK, body)
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be a JSON search object")
		return
	}
	q := domain.SearchQuery{
		Destination: req.Destination,
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		Adults:      req.Adults,
		Rooms:       req.Rooms,
		Currency:    req.Currency,
		Limit:       req.Limit,
		Filters:     req.Filters,
	}

	res, err := h.S.Search(r.Context(), q)
	if errors.Is(err, domain.ErrInvalidQuery) {
		writeProblem(w, http.StatusBadRequest, "Invalid search", err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("search failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "search failed")
		return
	}

	body, err := json.Marshal(res)
	if err != nil {
		log.Error().Err(err).Msg("marshal search result failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "search failed")
		return
	}
	writeJSON(w, http.StatusOK, body)
}
