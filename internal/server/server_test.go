package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/featvid/featvid/internal/server"
)

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type mockStorage struct{}

func (m *mockStorage) GenerateUploadURL(ctx context.Context, key string, contentType string, contentLength int64, expiry time.Duration) (string, error) {
	return "https://example.com/upload", nil
}

func (m *mockStorage) GenerateDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://example.com/download", nil
}

func (m *mockStorage) DeleteObject(ctx context.Context, key string) error {
	return nil
}

func newServerWithoutDB() *server.Server {
	return server.New(server.Config{})
}

func newServerWithDB(t *testing.T) (*server.Server, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(func() { mock.Close() })

	srv := server.New(server.Config{
		DB:        mock,
		Pinger:    &mockPinger{},
		Storage:   &mockStorage{},
		JWTSecret: "test-secret",
		BaseURL:   "http://localhost:8080",
	})
	return srv, mock
}

func TestHealthEndpointReturnsOK(t *testing.T) {
	srv := newServerWithoutDB()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestHealthEndpointWithPingFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	defer mock.Close()

	srv := server.New(server.Config{
		DB:        mock,
		Pinger:    &mockPinger{err: errors.New("connection refused")},
		Storage:   &mockStorage{},
		JWTSecret: "test-secret",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	srv, _ := newServerWithDB(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/floating-videos"},
		{http.MethodPost, "/api/floating-videos"},
		{http.MethodGet, "/api/floating-videos/search-pages"},
		{http.MethodGet, "/api/floating-videos/options"},
		{http.MethodPost, "/api/media"},
		{http.MethodGet, "/api/posts/1/builder"},
		{http.MethodGet, "/api/posts/1/featured-video"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestFrontendPayloadRouteIsPublic(t *testing.T) {
	srv, mock := newServerWithDB(t)

	mock.ExpectQuery(`SELECT .+ FROM floating_videos`).
		WithArgs("publish", 100).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "title", "status", "video_source", "coalesce", "embed_url",
			"display_type", "page_ids", "target_post_types", "target_taxonomies",
			"created_at", "updated_at",
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/frontend/floating-video?view=post_type_archive&postType=post", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 without auth, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNilDBOnlyHealthRegistered(t *testing.T) {
	srv := newServerWithoutDB()

	req := httptest.NewRequest(http.MethodGet, "/api/floating-videos", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Fatal("expected floating video routes to be absent without a database")
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	srv := newServerWithoutDB()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	csp := rec.Header().Get("Content-Security-Policy")
	if csp == "" {
		t.Fatal("expected a Content-Security-Policy header")
	}
	for _, host := range []string{"https://www.youtube.com", "https://player.vimeo.com", "https://www.dailymotion.com"} {
		if !strings.Contains(csp, host) {
			t.Errorf("expected CSP to allow %s, got %q", host, csp)
		}
	}
}
