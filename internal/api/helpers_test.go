package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gmclaw/internal/gateway"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func setupTestServer(t *testing.T) (*httptest.Server, *gateway.Gateway) {
	t.Helper()
	server, gw, _ := setupTestServerWith(t, Options{Capacity: 1000})
	return server, gw
}

func setupTestServerWith(t *testing.T, opts Options) (*httptest.Server, *gateway.Gateway, *testClock) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &testClock{now: time.Now().UTC()}
	gw := gateway.New(gateway.Options{
		Path:   filepath.Join(t.TempDir(), "gmclaw-test.db"),
		Logger: logger,
		Now:    clock.Now,
	})
	opts.Version = "test"
	opts.Logger = logger
	srv := httptest.NewServer(NewRouter(gw, opts))
	t.Cleanup(func() {
		srv.Close()
		_ = gw.Close()
	})
	return srv, gw, clock
}

func doReq(t *testing.T, baseURL, method, path string, body any) *http.Response {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal req: %v", err)
		}
	}
	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}

func mustStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, want, bytes.TrimSpace(b))
	}
}
