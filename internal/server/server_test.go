package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/ytcsv/internal/services"
	"github.com/desertthunder/ytcsv/internal/shared"
	"github.com/desertthunder/ytcsv/internal/tasks"
	th "github.com/desertthunder/ytcsv/internal/testing"
	"github.com/desertthunder/ytcsv/internal/web"
)

func newTestRouter(exporter tasks.Exporter) *BasicRouter {
	return NewRouter(RouterOpts{
		Exporter: exporter,
		Static:   web.NewStaticHandler(),
		Logger:   shared.NewLogger(&th.FWriter{}),
	})
}

func postExport(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/export", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body, got %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestExportEndpoint(t *testing.T) {
	logger := shared.NewLogger(&th.FWriter{})

	t.Run("end to end against the API", func(t *testing.T) {
		api := th.NewFakeYouTubeAPI(t)
		entries, videos := th.Fixture(63, 17)
		api.AddPlaylist("PL123", "Road: Trip", entries)
		api.AddVideos(videos)

		provider, err := services.NewYouTubeService(context.Background(), services.YouTubeOpts{
			APIKey:   "test-key",
			Timeout:  5 * time.Second,
			Endpoint: api.Endpoint(),
			Logger:   logger,
		})
		if err != nil {
			t.Fatalf("NewYouTubeService failed: %v", err)
		}

		router := newTestRouter(tasks.NewExportEngine(provider, logger))
		rec := postExport(t, router, `{"playlist_url": "https://www.youtube.com/playlist?list=PL123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
			t.Errorf("unexpected content type %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="Road Trip.csv"` {
			t.Errorf("unexpected content disposition %q", cd)
		}

		data := rec.Body.Bytes()
		if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
			t.Fatal("expected UTF-8 BOM")
		}

		rows, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse CSV: %v", err)
		}
		if len(rows) != 64 {
			t.Fatalf("expected 63 data rows plus header, got %d rows", len(rows))
		}

		deleted := rows[18]
		if deleted[0] != "Video Not Available" || deleted[3] != "N/A" || deleted[4] != "N/A" || deleted[5] != "N/A" {
			t.Errorf("unexpected deleted video row: %v", deleted)
		}
		if rows[1][5] != "03:05" || rows[1][6] != "https://www.youtube.com/watch?v=vid-000" {
			t.Errorf("unexpected first row: %v", rows[1])
		}
	})

	t.Run("client errors", func(t *testing.T) {
		router := newTestRouter(tasks.NewExportEngine(th.NewMockProvider("x", 1), logger))

		tc := []struct {
			name   string
			body   string
			status int
			msg    string
		}{
			{name: "missing field", body: `{}`, status: http.StatusBadRequest, msg: MsgURLRequired},
			{name: "empty field", body: `{"playlist_url": ""}`, status: http.StatusBadRequest, msg: MsgURLRequired},
			{name: "invalid JSON", body: `{not json`, status: http.StatusBadRequest, msg: MsgURLRequired},
			{name: "whitespace field", body: `{"playlist_url": "   "}`, status: http.StatusBadRequest, msg: MsgInvalidURL},
			{name: "malformed URL", body: `{"playlist_url": "https://youtu.be/abc"}`, status: http.StatusBadRequest, msg: MsgInvalidURL},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				rec := postExport(t, router, tt.body)
				if rec.Code != tt.status {
					t.Errorf("expected %d, got %d", tt.status, rec.Code)
				}
				if msg := decodeError(t, rec); msg != tt.msg {
					t.Errorf("expected %q, got %q", tt.msg, msg)
				}
			})
		}
	})

	t.Run("playlist not found", func(t *testing.T) {
		router := newTestRouter(tasks.NewExportEngine(&th.MockProvider{NotFound: true}, logger))
		rec := postExport(t, router, `{"playlist_url": "https://www.youtube.com/playlist?list=PLgone"}`)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != MsgNotFound {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("missing API key", func(t *testing.T) {
		router := newTestRouter(tasks.NewExportEngine(nil, logger))
		rec := postExport(t, router, `{"playlist_url": "https://www.youtube.com/playlist?list=PL123"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != MsgMissingAPIKey {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("provider status passthrough", func(t *testing.T) {
		api := th.NewFakeYouTubeAPI(t)
		api.FailWith(th.ResourcePlaylists, http.StatusForbidden, "quotaExceeded", "The request cannot be completed because you have exceeded your quota.")

		provider, err := services.NewYouTubeService(context.Background(), services.YouTubeOpts{
			APIKey: "test-key", Endpoint: api.Endpoint(), Logger: logger,
		})
		if err != nil {
			t.Fatalf("NewYouTubeService failed: %v", err)
		}

		router := newTestRouter(tasks.NewExportEngine(provider, logger))
		rec := postExport(t, router, `{"playlist_url": "https://www.youtube.com/playlist?list=PL123"}`)

		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != "The request cannot be completed because you have exceeded your quota." {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("unexpected failure hides details", func(t *testing.T) {
		provider := th.NewMockProvider("x", 2)
		provider.ItemsErr = errors.New("dial tcp: connection refused")

		router := newTestRouter(tasks.NewExportEngine(provider, logger))
		rec := postExport(t, router, `{"playlist_url": "https://www.youtube.com/playlist?list=PL123"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != MsgInternalError {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		router := newTestRouter(tasks.NewExportEngine(nil, logger))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/export", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
			t.Errorf("expected Allow: POST, got %q", allow)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tc := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{name: "config", err: fmt.Errorf("%w: no key", shared.ErrMissingCredentials), status: 500, msg: MsgMissingAPIKey},
		{name: "missing url", err: shared.ErrMissingArgument, status: 400, msg: MsgURLRequired},
		{name: "invalid url", err: fmt.Errorf("%w: nope", shared.ErrInvalidInput), status: 400, msg: MsgInvalidURL},
		{name: "not found", err: fmt.Errorf("%w: PL1", shared.ErrPlaylistNotFound), status: 404, msg: MsgNotFound},
		{name: "provider", err: shared.NewProviderError(429, "Too many requests"), status: 429, msg: "Too many requests"},
		{name: "timeout", err: shared.NewProviderError(504, "YouTube API request timed out."), status: 504, msg: "YouTube API request timed out."},
		{name: "wrapped provider", err: fmt.Errorf("videos.list: %w", shared.NewProviderError(400, "")), status: 400, msg: "Bad Request"},
		{name: "other", err: errors.New("boom"), status: 500, msg: MsgInternalError},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := StatusFor(tt.err)
			if status != tt.status || msg != tt.msg {
				t.Errorf("StatusFor() = %d %q, want %d %q", status, msg, tt.status, tt.msg)
			}
		})
	}
}

func TestContentDisposition(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii", in: "Road Trip.csv", want: `attachment; filename="Road Trip.csv"`},
		{name: "single token", in: "mix.csv", want: `attachment; filename="mix.csv"`},
		{
			name: "non-ascii",
			in:   "日本 Mix.csv",
			want: `attachment; filename="__ Mix.csv"; filename*=UTF-8''%E6%97%A5%E6%9C%AC%20Mix.csv`,
		},
		{
			name: "apostrophe",
			in:   "Rock'n Roll é.csv",
			want: `attachment; filename="Rock'n Roll _.csv"; filename*=UTF-8''Rock%27n%20Roll%20%C3%A9.csv`,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentDisposition(tt.in); got != tt.want {
				t.Errorf("ContentDisposition(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	router := newTestRouter(tasks.NewExportEngine(nil, shared.NewLogger(&th.FWriter{})))

	t.Run("request id generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Errorf("expected 200 ok, got %d %q", rec.Code, rec.Body.String())
		}
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected X-Request-ID header")
		}
	})

	t.Run("request id reused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("expected caller's request id, got %q", got)
		}
	})

	t.Run("CORS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/export", nil)
		req.Header.Set("Origin", "https://example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "content-type")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("expected wildcard origin, got %q", got)
		}
		if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "content-type" {
			t.Errorf("expected requested headers echoed, got %q", got)
		}
	})

	t.Run("CORS restricted origins", func(t *testing.T) {
		restricted := NewRouter(RouterOpts{
			Exporter:    tasks.NewExportEngine(nil, shared.NewLogger(&th.FWriter{})),
			CORSOrigins: []string{"https://allowed.example"},
			Logger:      shared.NewLogger(&th.FWriter{}),
		})

		for origin, want := range map[string]string{
			"https://allowed.example": "https://allowed.example",
			"https://other.example":   "",
		} {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", origin)
			rec := httptest.NewRecorder()
			restricted.ServeHTTP(rec, req)

			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != want {
				t.Errorf("origin %s: expected %q, got %q", origin, want, got)
			}
		}
	})

	t.Run("panic recovery", func(t *testing.T) {
		r := NewBasicRouter()
		r.Use(RequestIDMiddleware(), RecoverMiddleware(shared.NewLogger(&th.FWriter{})))
		r.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if msg := decodeError(t, rec); msg != MsgInternalError {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("logging records status", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewBasicRouter()
		r.Use(LoggingMiddleware(shared.NewLogger(&buf)))
		r.Handle(http.MethodGet, "/teapot", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

		if out := buf.String(); !strings.Contains(out, "status=418") || !strings.Contains(out, "path=/teapot") {
			t.Errorf("expected access log line, got %q", out)
		}
	})

	t.Run("static pages", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "export-btn") {
			t.Errorf("expected index page, got %d", rec.Code)
		}
	})
}

func TestServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(ln.Addr().String(), newTestRouter(tasks.NewExportEngine(nil, nil)), shared.NewLogger(&th.FWriter{}))

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
