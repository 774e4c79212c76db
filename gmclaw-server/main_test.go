package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gmclaw/internal/config"
	"gmclaw/internal/gateway"
)

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "gmclaw.toml")
	data := "[server]\nport = 9000\n\n[database]\npath = \"/tmp/from-file.db\"\n\n[registration]\ncapacity = 5\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	f, err := parseFlags([]string{"-config", cfgPath, "-db", filepath.Join(dir, "flag.db"), "-log-level", "debug"})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadConfig(f)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Path != filepath.Join(dir, "flag.db") {
		t.Fatalf("db flag not applied: %q", cfg.Database.Path)
	}
	if cfg.Server.Port != 9000 || cfg.Registration.Capacity != 5 {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if parseLevel(cfg.Log.Level) != slog.LevelDebug {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewServerServesAPI(t *testing.T) {
	dir := t.TempDir()
	f, err := parseFlags([]string{"-db", filepath.Join(dir, "gmclaw.db")})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadConfig(f)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := gateway.New(gateway.Options{Path: cfg.Database.Path, Logger: logger})
	defer gw.Close()

	srv := httptest.NewServer(newServer(cfg, gw, logger).Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("status request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Version != serverVersion {
		t.Fatalf("version = %q", body.Version)
	}
}

func TestWriteConfigSavesEffectiveConfigAndExits(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "effective.toml")
	var logs strings.Builder

	err := run([]string{"-db", filepath.Join(dir, "gm.db"), "-port", "9191", "-write-config", out}, &logs)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(logs.String(), out) {
		t.Fatalf("expected confirmation naming %s, got %q", out, logs.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "gm.db")); !os.IsNotExist(err) {
		t.Fatalf("write-config should not open the database, stat err = %v", err)
	}

	cfg, err := config.Load(out)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Database.Path != filepath.Join(dir, "gm.db") || cfg.Server.Port != 9191 {
		t.Fatalf("written config lost flag values: %+v", cfg)
	}
	if cfg.Limits.TrustForwarded {
		t.Fatalf("trust_forwarded should default to false")
	}
}
