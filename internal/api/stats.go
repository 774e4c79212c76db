package api

import (
	"net/http"

	"gmclaw/internal/gateway"
)

func directoryStatsHandler(gw *gateway.Gateway, capacity int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		stats, err := gw.DirectoryStats(r.Context())
		if err != nil {
			writeError(w, persistenceStatus(err), "failed to load stats")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"stats":            stats,
			"standupCapacity":  capacity,
			"standupRemaining": standupRemaining(stats.Agents, capacity),
		})
	})
}

func viewsHandler(gw *gateway.Gateway) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			views int64
			err   error
		)
		switch r.Method {
		case http.MethodGet:
			views, err = gw.Views(r.Context())
		case http.MethodPost:
			views, err = gw.IncrementViews(r.Context())
		default:
			methodNotAllowed(w)
			return
		}
		if err != nil {
			writeJSON(w, persistenceStatus(err), map[string]int64{"views": 0})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"views": views})
	})
}
