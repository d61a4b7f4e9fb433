// Package web serves the static companion pages of the export service from an embedded filesystem.
//
// # Routes
//
//	GET /          index.html, the export form
//	GET /script.js form logic posting to /api/export
//	GET /privacy   privacy.html
//	GET /terms     terms.html
//	GET /contact   contact.html
//
// Pages are served verbatim with no templating. Only GET and HEAD are accepted.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

var pages = map[string]string{
	"/":          "index.html",
	"/script.js": "script.js",
	"/privacy":   "privacy.html",
	"/terms":     "terms.html",
	"/contact":   "contact.html",
}

// StaticHandler serves the embedded companion pages.
type StaticHandler struct {
	files fs.FS
}

// NewStaticHandler creates a handler over the embedded static directory.
func NewStaticHandler() *StaticHandler {
	files, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return &StaticHandler{files: files}
}

// Routes returns the mux patterns for each page. "/{$}" matches only the site root.
func (h *StaticHandler) Routes() []string {
	return []string{"/{$}", "/script.js", "/privacy", "/terms", "/contact"}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name, ok := pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, err := fs.ReadFile(h.files, name)
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType(name))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(data)
}

func contentType(name string) string {
	if name == "script.js" {
		return "text/javascript; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}
