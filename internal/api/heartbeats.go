package api

import (
	"net/http"
	"strconv"
	"strings"

	"gmclaw/internal/gateway"
	"gmclaw/internal/models"
)

type heartbeatRequest struct {
	AgentName string `json:"agentName"`
	models.HeartbeatFields
}

func heartbeatsHandler(gw *gateway.Gateway) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			getHeartbeats(w, r, gw)
		case http.MethodPost:
			postHeartbeat(w, r, gw)
		default:
			methodNotAllowed(w)
		}
	})
}

// getHeartbeats serves one of three views: a single agent's history
// (?agent=), the paginated global history feed (?history=true&page=), or the
// current heartbeat of every agent.
func getHeartbeats(w http.ResponseWriter, r *http.Request, gw *gateway.Gateway) {
	q := r.URL.Query()

	if agent := strings.TrimSpace(q.Get("agent")); agent != "" {
		history, err := gw.HeartbeatHistory(r.Context(), agent, parseLimit(q.Get("limit"), gateway.DefaultHistoryLimit))
		if err != nil {
			writeJSON(w, persistenceStatus(err), history)
			return
		}
		writeJSON(w, http.StatusOK, history)
		return
	}

	if q.Get("history") == "true" {
		page, _ := strconv.Atoi(q.Get("page"))
		feed, err := gw.HeartbeatFeed(r.Context(), page)
		if err != nil {
			writeJSON(w, persistenceStatus(err), feed)
			return
		}
		writeJSON(w, http.StatusOK, feed)
		return
	}

	heartbeats, err := gw.ListHeartbeats(r.Context())
	if err != nil {
		writeJSON(w, persistenceStatus(err), heartbeats)
		return
	}
	writeJSON(w, http.StatusOK, heartbeats)
}

func postHeartbeat(w http.ResponseWriter, r *http.Request, gw *gateway.Gateway) {
	var req heartbeatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.AgentName = strings.TrimSpace(req.AgentName)
	if req.AgentName == "" {
		writeError(w, http.StatusBadRequest, "agentName is required")
		return
	}

	if err := gw.UpdateHeartbeat(r.Context(), req.AgentName, req.HeartbeatFields); err != nil {
		writeError(w, persistenceStatus(err), "Failed to update heartbeat")
		return
	}
	// Profile-only updates stay out of the activity history.
	if req.HasActivity() {
		if _, err := gw.AppendHeartbeatHistory(r.Context(), req.AgentName, req.HeartbeatFields); err != nil {
			writeError(w, persistenceStatus(err), "Failed to update heartbeat")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func parseLimit(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return min(n, 100)
}
