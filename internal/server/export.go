package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytcsv/internal/formatter"
	"github.com/desertthunder/ytcsv/internal/tasks"
)

const maxBodyBytes = 1 << 20

// ExportRequest is the JSON body of POST /api/export.
type ExportRequest struct {
	PlaylistURL string `json:"playlist_url"`
}

// ExportHandler serves POST /api/export: it runs the export pipeline and answers with the CSV as an attachment.
type ExportHandler struct {
	exporter tasks.Exporter
	logger   *log.Logger
}

// NewExportHandler creates an [ExportHandler] around exporter.
func NewExportHandler(exporter tasks.Exporter, logger *log.Logger) *ExportHandler {
	return &ExportHandler{exporter: exporter, logger: logger}
}

// ServeHTTP decodes the request, exports the playlist and writes the CSV.
//
// An unreadable body is handled like a missing playlist_url.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.logger.Debug("unreadable export request body", "request_id", RequestID(r.Context()), "error", err)
		req = ExportRequest{}
	}

	export, err := h.exporter.Export(r.Context(), req.PlaylistURL, nil)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	data, err := formatter.ExportToCSV(export)
	if err != nil {
		WriteError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", ContentDisposition(export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ContentDisposition builds an attachment header whose quoted filename holds an ASCII rendering of name.
//
// Names with other characters also get an RFC 5987 filename* parameter carrying the UTF-8 original.
func ContentDisposition(name string) string {
	fallback := asciiFilename(name)
	value := `attachment; filename="` + fallback + `"`
	if fallback != name {
		value += "; filename*=UTF-8''" + encodeExtValue(name)
	}
	return value
}

func asciiFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// encodeExtValue percent-encodes every byte outside the RFC 5987 attr-char set.
func encodeExtValue(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
