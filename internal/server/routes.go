package server

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytcsv/internal/tasks"
)

// RouterOpts holds the collaborators the HTTP surface is built from.
type RouterOpts struct {
	Exporter    tasks.Exporter
	Static      Handler // companion pages; optional
	CORSOrigins []string
	Logger      *log.Logger
}

// NewRouter builds the service's routes:
//
//	POST /api/export   playlist CSV export
//	GET  /health       liveness probe
//	GET  /, /script.js, /privacy, /terms, /contact (when opts.Static is set)
func NewRouter(opts RouterOpts) *BasicRouter {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := NewBasicRouter()
	r.Use(
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		RecoverMiddleware(logger),
		CORSMiddleware(origins),
	)

	r.Handle(http.MethodPost, "/api/export", NewExportHandler(opts.Exporter, logger))
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	}))

	if opts.Static != nil {
		r.Handler(opts.Static)
	}

	return r
}
