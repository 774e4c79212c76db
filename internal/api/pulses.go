package api

import (
	"net/http"

	"gmclaw/internal/gateway"
	"gmclaw/internal/models"
)

func pulsesHandler(gw *gateway.Gateway) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}

		var (
			pulses []models.Ping
			err    error
		)
		if r.URL.Query().Get("today") == "true" {
			pulses, err = gw.TodayPulses(r.Context())
		} else {
			pulses, err = gw.RecentPulses(r.Context(), gateway.DefaultPulseLimit)
		}
		if err != nil {
			writeJSON(w, persistenceStatus(err), pulses)
			return
		}
		writeJSON(w, http.StatusOK, pulses)
	})
}
