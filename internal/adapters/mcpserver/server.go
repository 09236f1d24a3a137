// Package mcpserver exposes the accommodation search as MCP tools and resources.
package mcpserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"stays_mcp/internal/domain"
)

const (
	serverName = "stays-mcp"
	ToolSearch = "search_accommodations"
)

// Searcher is the slice of the search service the MCP surface needs.
type Searcher interface {
	Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error)
	Recent(ctx context.Context, limit int) ([]domain.SearchLogEntry, error)
}

type Options struct {
	Version string
	// PublicBaseURL is the origin the widget may call back to (demo mode, CSP).
	PublicBaseURL string
}

// New builds the MCP server with the search tool and its resources registered.
func New(s Searcher, opts Options) *mcp.Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Title:   "Accommodation search",
		Version: opts.Version,
	}, &mcp.ServerOptions{
		Instructions: "Use search_accommodations to find places to stay. " +
			"Results render as a card carousel; summarise them briefly instead of listing every field.",
	})

	h := &handlers{svc: s}
	registerTools(srv, h)
	registerResources(srv, h, opts)
	return srv
}

// SSEHandler serves MCP over server-sent events. GET opens a session stream,
// POST ?sessionid= delivers messages to it; the SDK drops sessions on disconnect.
func SSEHandler(srv *mcp.Server) http.Handler {
	return mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return srv }, nil)
}

// StreamableHandler serves MCP over the streamable HTTP transport.
func StreamableHandler(srv *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil)
}
