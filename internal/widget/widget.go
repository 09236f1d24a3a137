// Package widget embeds the accommodation carousel that MCP hosts render
// next to search_accommodations results.
package widget

import (
	"embed"
	"io/fs"
	"net/http"
)

const (
	// URI is the MCP resource the search tool points hosts at.
	URI      = "ui://widget/accommodations.html"
	MIMEType = "text/html+skybridge"
	file     = "assets/accommodations.html"
)

//go:embed assets
var assets embed.FS

// HTML returns the widget document.
func HTML() []byte {
	b, err := assets.ReadFile(file)
	if err != nil {
		// embedded at build time; unreachable unless the embed directive changes
		panic(err)
	}
	return b
}

// Handler serves the embedded assets, e.g. mounted under /widget/.
func Handler() http.Handler {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
