package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gmclaw/internal/api"
	"gmclaw/internal/config"
	"gmclaw/internal/gateway"
)

const serverVersion = "0.1.0-dev"

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "gmclaw-server: %v\n", err)
		os.Exit(1)
	}
}

type serverFlags struct {
	configPath string
	dbPath     string
	port       int
	logLevel   string
	// writeConfig, when set, receives the effective config and the server
	// exits without listening.
	writeConfig string
}

func parseFlags(args []string) (serverFlags, error) {
	var f serverFlags
	fs := flag.NewFlagSet("gmclaw-server", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "path to TOML config file")
	fs.StringVar(&f.dbPath, "db", "", "path to SQLite database (overrides config)")
	fs.IntVar(&f.port, "port", 0, "HTTP listen port (overrides config)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	fs.StringVar(&f.writeConfig, "write-config", "", "write the effective config as TOML to this path and exit")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

// loadConfig layers flags over environment over the config file.
func loadConfig(f serverFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.dbPath != "" {
		cfg.Database.Path = f.dbPath
	}
	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newServer(cfg *config.Config, gw *gateway.Gateway, logger *slog.Logger) *http.Server {
	handler := api.NewRouter(gw, api.Options{
		Version:         serverVersion,
		Capacity:        cfg.Registration.Capacity,
		WritesPerMinute: cfg.Limits.WritesPerMinute,
		TrustForwarded:  cfg.Limits.TrustForwarded,
		Logger:          logger,
	})
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}
}

func run(args []string, logOut io.Writer) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(f)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if f.writeConfig != "" {
		if err := cfg.Save(f.writeConfig); err != nil {
			return err
		}
		fmt.Fprintf(logOut, "wrote config to %s\n", f.writeConfig)
		return nil
	}

	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	gw := gateway.New(gateway.Options{Path: cfg.Database.Path, Logger: logger})
	defer gw.Close()
	if !gw.Enabled() {
		logger.Warn("no database configured; data endpoints will report unavailability")
	} else if _, err := gw.Connect(context.Background()); err != nil {
		// Not fatal: the gateway retries on the next request.
		logger.Error("initial database connect failed", "error", err)
	}

	server := newServer(cfg, gw, logger)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("gmclaw-server listening",
		"addr", server.Addr,
		"version", serverVersion,
		"capacity", cfg.Registration.Capacity,
	)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	<-shutdownDone
	return nil
}
