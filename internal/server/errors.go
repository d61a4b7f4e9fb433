package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytcsv/internal/shared"
)

// Client-facing error messages.
const (
	MsgURLRequired   = "Playlist URL is required."
	MsgInvalidURL    = "Invalid YouTube Playlist URL."
	MsgNotFound      = "Playlist not found or is private."
	MsgMissingAPIKey = "Server is missing the YouTube API key."
	MsgInternalError = "An internal server error occurred. Please check the API key and playlist permissions."
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps a pipeline error to the HTTP status and client message it is reported with.
//
// Unknown errors map to 500 with a generic message so internals never reach the client.
func StatusFor(err error) (int, string) {
	var providerErr *shared.ProviderError

	switch {
	case errors.Is(err, shared.ErrMissingCredentials):
		return http.StatusInternalServerError, MsgMissingAPIKey
	case errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest, MsgURLRequired
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest, MsgInvalidURL
	case errors.Is(err, shared.ErrPlaylistNotFound):
		return http.StatusNotFound, MsgNotFound
	case errors.As(err, &providerErr):
		return providerErr.StatusCode, providerErr.Reason
	default:
		return http.StatusInternalServerError, MsgInternalError
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError converts err to its status and message and writes the JSON error body.
//
// Server-side failures are logged with the request id.
func WriteError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	status, msg := StatusFor(err)

	if logger != nil {
		kv := []any{"request_id", RequestID(r.Context()), "status", status, "error", err}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", kv...)
		} else {
			logger.Warn("request rejected", kv...)
		}
	}

	WriteJSON(w, status, ErrorResponse{Error: msg})
}
