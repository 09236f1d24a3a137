package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"stays_mcp/internal/domain"
	"stays_mcp/internal/widget"
)

const (
	URITypes  = "stays://accommodation-types"
	URIRecent = "stays://searches/recent"
)

type typeInfo struct {
	Value domain.AccommodationType `json:"value"`
	Label string                   `json:"label"`
}

func registerResources(srv *mcp.Server, h *handlers, opts Options) {
	connect := []string{}
	if opts.PublicBaseURL != "" {
		connect = append(connect, opts.PublicBaseURL)
	}
	srv.AddResource(&mcp.Resource{
		URI:         widget.URI,
		Name:        "accommodations-widget",
		Title:       "Accommodation carousel",
		Description: "Card carousel that renders search_accommodations results.",
		MIMEType:    widget.MIMEType,
		Meta: mcp.Meta{
			"openai/widgetDescription":   "Shows matching stays as swipeable cards with price, score and facilities.",
			"openai/widgetPrefersBorder": true,
			"openai/widgetCSP": map[string]any{
				"connect_domains":  connect,
				"resource_domains": []string{"https://images.unsplash.com", "https://cf.bstatic.com"},
			},
		},
	}, readWidget)

	srv.AddResource(&mcp.Resource{
		URI:         URITypes,
		Name:        "accommodation-types",
		Title:       "Accommodation types",
		Description: "Values accepted by the accommodation_types filter.",
		MIMEType:    "application/json",
	}, readTypes)

	srv.AddResource(&mcp.Resource{
		URI:         URIRecent,
		Name:        "recent-searches",
		Title:       "Recent searches",
		Description: "Latest accommodation searches handled by this server.",
		MIMEType:    "application/json",
	}, h.readRecent)
}

func readWidget(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: widget.MIMEType,
			Text:     string(widget.HTML()),
		}},
	}, nil
}

func readTypes(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	out := make([]typeInfo, 0, len(domain.AccommodationTypes))
	for _, t := range domain.AccommodationTypes {
		out = append(out, typeInfo{Value: t, Label: t.Label()})
	}
	return jsonContents(req.Params.URI, out)
}

func (h *handlers) readRecent(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	rs, err := h.svc.Recent(ctx, 20)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, rs)
}

func jsonContents(uri string, v any) (*mcp.ReadResourceResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "application/json", Text: string(b)}},
	}, nil
}
