package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gmclaw/internal/api"
	"gmclaw/internal/gateway"
)

func setupCLI(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	home := filepath.Join(root, "home")
	work := filepath.Join(root, "work")
	for _, dir := range []string{home, work} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	t.Setenv("HOME", home)
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
	if err := os.Chdir(work); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := gateway.New(gateway.Options{Path: filepath.Join(root, "gmclaw.db"), Logger: logger})
	srv := httptest.NewServer(api.NewRouter(gw, api.Options{Version: "test", Capacity: 2, Logger: logger}))
	t.Cleanup(func() {
		srv.Close()
		_ = gw.Close()
	})
	return srv.URL
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("gmclaw %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestCLIRequiresConnection(t *testing.T) {
	setupCLI(t)
	if _, err := runCLI(t, "agents"); err == nil || !strings.Contains(err.Error(), "not connected") {
		t.Fatalf("expected not connected error, got %v", err)
	}
}

func TestCLIGmFlow(t *testing.T) {
	serverURL := setupCLI(t)

	out := mustRunCLI(t, "connect", serverURL, "--agent", "Atlas")
	if !strings.Contains(out, "connected to") {
		t.Fatalf("unexpected connect output %q", out)
	}

	out = mustRunCLI(t, "gm", "--twitter", "@atlas")
	if out != "gm recorded, streak 1\n" {
		t.Fatalf("unexpected gm output %q", out)
	}
	out = mustRunCLI(t, "gm")
	if out != "Already said GM today\n" {
		t.Fatalf("unexpected duplicate output %q", out)
	}

	mustRunCLI(t, "heartbeat", "--task", "index pulses", "--todo", "a", "--todo", "b", "--done", "ship|ok")

	out = mustRunCLI(t, "heartbeats", "--of", "Atlas", "--format", "json")
	var history struct {
		Entries []struct {
			Todo []string `json:"todo"`
			Done []struct {
				Task string `json:"task"`
				Test string `json:"test"`
			} `json:"done"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &history); err != nil {
		t.Fatalf("decode history: %v (%q)", err, out)
	}
	if len(history.Entries) != 1 || len(history.Entries[0].Todo) != 2 {
		t.Fatalf("unexpected history %+v", history)
	}
	if d := history.Entries[0].Done; len(d) != 1 || d[0].Task != "ship" || d[0].Test != "ok" {
		t.Fatalf("unexpected done items %+v", d)
	}

	out = mustRunCLI(t, "agents", "--format", "json")
	var agents struct {
		Agents           []map[string]any `json:"agents"`
		Count            int              `json:"count"`
		StandupRemaining int              `json:"standupRemaining"`
	}
	if err := json.Unmarshal([]byte(out), &agents); err != nil {
		t.Fatalf("decode agents: %v", err)
	}
	if agents.Count != 1 || agents.StandupRemaining != 1 || len(agents.Agents) != 1 {
		t.Fatalf("unexpected agents payload %+v", agents)
	}

	out = mustRunCLI(t, "pulses", "--today", "-q")
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one pulse id, got %q", out)
	}
}

func TestCLIRegisterCapacityClosed(t *testing.T) {
	serverURL := setupCLI(t)
	mustRunCLI(t, "connect", serverURL)

	mustRunCLI(t, "register", "one", "--format", "json")
	mustRunCLI(t, "register", "two", "--format", "json")

	_, err := runCLI(t, "register", "three")
	if err == nil || !strings.Contains(err.Error(), "capacity_closed") {
		t.Fatalf("expected capacity_closed error, got %v", err)
	}

	out := mustRunCLI(t, "register", "three", "--tweet", "https://x.com/three/status/42", "--format", "json")
	var resp struct {
		Premium bool `json:"premium"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	if !resp.Premium {
		t.Fatalf("tweet-verified agent should be premium")
	}
}

func TestCLISkills(t *testing.T) {
	serverURL := setupCLI(t)

	out := mustRunCLI(t, "skills", "add", "--server", serverURL,
		"--name", "fetch", "--description", "fetch urls", "--url", "https://skills.example/fetch", "-q")
	id := strings.TrimSpace(out)
	if id == "" {
		t.Fatalf("expected skill id")
	}

	out = mustRunCLI(t, "skills", "install", id, "--server", serverURL)
	if !strings.Contains(out, "1 installs") {
		t.Fatalf("unexpected install output %q", out)
	}

	out = mustRunCLI(t, "skills", "--server", serverURL, "--format", "plain")
	if !strings.Contains(out, "fetch") {
		t.Fatalf("skills listing missing fetch: %q", out)
	}
}

func TestParseDone(t *testing.T) {
	got := parseDone("ship it| go test ./... ||lgtm")
	if got["task"] != "ship it" || got["test"] != "go test ./..." || got["review"] != "lgtm" {
		t.Fatalf("unexpected done item %v", got)
	}
	if _, ok := got["benchmarks"]; ok {
		t.Fatalf("empty benchmarks should be omitted")
	}
}

func TestCLIHeartbeatTaskDetailsNeedTask(t *testing.T) {
	serverURL := setupCLI(t)
	mustRunCLI(t, "connect", serverURL, "--agent", "Atlas")

	for _, args := range [][]string{
		{"heartbeat", "--critical-path", "waiting on review"},
		{"heartbeat", "--bump", "flaky ci"},
		{"heartbeat", "--todo", "a", "--bump", "flaky ci"},
		{"heartbeat", "--task", "  ", "--critical-path", "review"},
	} {
		_, err := runCLI(t, args...)
		if err == nil || !strings.Contains(err.Error(), "--task") {
			t.Fatalf("gmclaw %s: expected --task error, got %v", strings.Join(args, " "), err)
		}
	}

	out := mustRunCLI(t, "heartbeats", "--of", "Atlas", "--format", "json")
	var history struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &history); err != nil {
		t.Fatalf("decode history: %v (%q)", err, out)
	}
	if len(history.Entries) != 0 {
		t.Fatalf("rejected heartbeats were posted: %s", out)
	}

	mustRunCLI(t, "heartbeat", "--task", "ship", "--critical-path", "review", "--bump", "flaky ci")
}
