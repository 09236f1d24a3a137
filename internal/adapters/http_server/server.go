package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"stays_mcp/internal/widget"
)

type Server struct {
	mux     *chi.Mux
	timeout time.Duration
}

// New builds the router. requestTimeout bounds the JSON routes only; the MCP
// transports hold long-lived streams and are mounted without it.
func New(requestTimeout time.Duration) *Server {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	m := chi.NewRouter()

	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(CORS)
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m, timeout: requestTimeout}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}

// MountMCP attaches the SSE and streamable HTTP transports.
func (s *Server) MountMCP(sse, streamable http.Handler) {
	s.mux.Handle("/sse", sse)
	s.mux.Handle("/mcp", streamable)
}

func (s *Server) MountWidget() {
	s.mux.Handle("/widget/*", http.StripPrefix("/widget", widget.Handler()))
}
