package api

import (
	"errors"
	"net/http"
	"strings"

	"gmclaw/internal/db"
	"gmclaw/internal/gateway"
	"gmclaw/internal/models"
)

type gmProfile struct {
	Name          *string         `json:"name"`
	WalletAddress *string         `json:"walletAddress"`
	PfpURL        *string         `json:"pfpUrl"`
	Contact       *models.Contact `json:"contact"`
}

type gmRequest struct {
	AgentName string     `json:"agentName"`
	Message   string     `json:"message"`
	Profile   *gmProfile `json:"profile"`
}

type gmResponse struct {
	*models.PingResult
	ProfileUpdated bool `json:"profileUpdated"`
}

func gmHandler(gw *gateway.Gateway) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		var req gmRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.AgentName = strings.TrimSpace(req.AgentName)
		if req.AgentName == "" {
			writeError(w, http.StatusBadRequest, "agentName is required")
			return
		}

		agent, err := gw.GetAgent(r.Context(), req.AgentName)
		if err != nil {
			writeError(w, persistenceStatus(err), "Failed to send GM")
			return
		}
		if agent == nil {
			_, err := gw.RegisterAgent(r.Context(), gateway.NewAgent{Name: req.AgentName})
			if err != nil && !errors.Is(err, db.ErrAgentExists) {
				writeError(w, persistenceStatus(err), "Failed to send GM")
				return
			}
		}

		// The profile is applied whether or not today's gm is accepted.
		profileUpdated := false
		if req.Profile != nil {
			fields := models.HeartbeatFields{
				Name:          req.Profile.Name,
				WalletAddress: req.Profile.WalletAddress,
				PfpURL:        req.Profile.PfpURL,
				Contact:       req.Profile.Contact,
			}
			profileUpdated = gw.UpdateHeartbeat(r.Context(), req.AgentName, fields) == nil
		}

		res, err := gw.SendGm(r.Context(), req.AgentName, req.Message)
		if err != nil {
			writeJSON(w, persistenceStatus(err), map[string]any{
				"error":          "Failed to send GM",
				"profileUpdated": profileUpdated,
			})
			return
		}
		writeJSON(w, http.StatusOK, gmResponse{PingResult: res, ProfileUpdated: profileUpdated})
	})
}
