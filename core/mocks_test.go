package core

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/db"
	"github.com/tidings-app/tidings/db/mock"
)

// mockAuthenticator returns a fixed user or a fixed failure, bypassing token
// parsing where the handler under test is not the authenticator itself.
type mockAuthenticator struct {
	user *db.User
	fail bool
}

func (m *mockAuthenticator) Authenticate(r *http.Request) (*db.User, error, jsonResponse) {
	if m.fail || m.user == nil {
		return nil, errors.New("auth error"), errorJwtInvalidToken
	}
	return m.user, nil, jsonResponse{}
}

// memCache is a TTL-aware map cache for cooldown tests.
type memCache struct {
	entries map[string]time.Time
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]time.Time)}
}

func (c *memCache) Get(key string) (interface{}, bool) {
	deadline, ok := c.entries[key]
	if !ok || time.Now().After(deadline) {
		return nil, false
	}
	return struct{}{}, true
}

func (c *memCache) Set(key string, value interface{}, cost int64) bool {
	c.entries[key] = time.Now().Add(time.Hour)
	return true
}

func (c *memCache) SetWithTTL(key string, value interface{}, cost int64, ttl time.Duration) bool {
	c.entries[key] = time.Now().Add(ttl)
	return true
}

// checkResponse asserts status and response code against a precomputed
// response.
func checkResponse(t *testing.T, rr *httptest.ResponseRecorder, want jsonResponse) {
	t.Helper()
	if rr.Code != want.status {
		t.Errorf("expected status %d, got %d", want.status, rr.Code)
	}

	var gotBody, wantBody map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&gotBody); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if err := json.Unmarshal(want.body, &wantBody); err != nil {
		t.Fatalf("failed to decode want body: %v", err)
	}
	if gotBody["code"] != wantBody["code"] {
		t.Errorf("expected response code %q, got %q", wantBody["code"], gotBody["code"])
	}
}

// newJsonRequest builds a JSON POST request for handler tests.
func newJsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// newTestApp builds an App around the given mock database with default
// config, silent logging and a permissive authenticator user when provided.
func newTestApp(mockDb *mock.Db, authedUser *db.User) *App {
	app := &App{}
	app.SetDb(mockDb)
	app.SetConfigProvider(config.NewProvider(config.NewDefaultConfig()))
	app.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	app.SetValidator(NewValidator())
	app.SetCache(newMemCache())
	app.SetAuthenticator(&mockAuthenticator{user: authedUser, fail: authedUser == nil})
	return app
}
