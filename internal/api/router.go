package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gmclaw/internal/gateway"
	"gmclaw/internal/ratelimit"
)

const maxBodyBytes = 1 << 20

type Options struct {
	Version string
	// Capacity is the standup size; registrations beyond it need a tweet.
	Capacity        int
	WritesPerMinute int
	// TrustForwarded keys the write limiter on X-Forwarded-For.
	TrustForwarded bool
	Logger         *slog.Logger
}

func NewRouter(gw *gateway.Gateway, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Capacity <= 0 {
		opts.Capacity = 1000
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", statusHandler(gw, opts.Version))
	mux.Handle("/api/agents", agentsCollectionHandler(gw, opts.Capacity))
	mux.Handle("/api/agents/", agentItemHandler(gw))
	mux.Handle("/api/gm", gmHandler(gw))
	mux.Handle("/api/heartbeats", heartbeatsHandler(gw))
	mux.Handle("/api/pulses", pulsesHandler(gw))
	mux.Handle("/api/skills", skillsCollectionHandler(gw))
	mux.Handle("/api/skills/", skillItemHandler(gw))
	mux.Handle("/api/views", viewsHandler(gw))
	mux.Handle("/api/stats", directoryStatsHandler(gw, opts.Capacity))

	limiter := ratelimit.NewLimiter(opts.WritesPerMinute, time.Minute)
	var h http.Handler = mux
	h = rateLimitMiddleware(limiter, opts.TrustForwarded, h)
	h = corsMiddleware(h)
	h = accessLogMiddleware(opts.Logger, h)
	h = recoverMiddleware(opts.Logger, h)
	return h
}

func statusHandler(gw *gateway.Gateway, version string) http.HandlerFunc {
	type statusResponse struct {
		Status    string `json:"status"`
		Version   string `json:"version"`
		Timestamp string `json:"timestamp"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}

		if err := gw.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}

		writeJSON(w, http.StatusOK, statusResponse{
			Status:    "ok",
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func pathTail(path, prefix string) string {
	tail := strings.TrimPrefix(path, prefix)
	tail = strings.Trim(tail, "/")
	return tail
}

// decodeBody reads a JSON request body into dst, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is required")
		default:
			writeError(w, http.StatusBadRequest, "invalid json payload")
		}
		return false
	}
	return true
}

// persistenceStatus maps a gateway failure to a response status.
func persistenceStatus(err error) int {
	if errors.Is(err, gateway.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
