package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gmclaw/internal/db"
	"gmclaw/internal/gateway"
	"gmclaw/internal/models"
)

type registerAgentRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Owner       *string `json:"owner"`
	Avatar      *string `json:"avatar"`
	TweetURL    string  `json:"tweetUrl"`
}

type registerAgentResponse struct {
	Agent            *models.Agent `json:"agent"`
	StandupRemaining int           `json:"standupRemaining"`
	Premium          bool          `json:"premium"`
}

func agentsCollectionHandler(gw *gateway.Gateway, capacity int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listAgents(w, r, gw, capacity)
		case http.MethodPost:
			registerAgent(w, r, gw, capacity)
		default:
			methodNotAllowed(w)
		}
	})
}

func listAgents(w http.ResponseWriter, r *http.Request, gw *gateway.Gateway, capacity int) {
	if count, err := gw.AgentCount(r.Context()); err == nil {
		w.Header().Set("X-Agent-Count", strconv.Itoa(count))
		w.Header().Set("X-Standup-Remaining", strconv.Itoa(standupRemaining(count, capacity)))
	}

	if r.URL.Query().Get("stats") == "true" {
		agents, err := gw.AgentsWithStats(r.Context())
		if err != nil {
			writeJSON(w, persistenceStatus(err), agents)
			return
		}
		writeJSON(w, http.StatusOK, agents)
		return
	}

	agents, err := gw.ListAgents(r.Context(), gateway.DefaultAgentLimit)
	if err != nil {
		writeJSON(w, persistenceStatus(err), agents)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

func registerAgent(w http.ResponseWriter, r *http.Request, gw *gateway.Gateway, capacity int) {
	var req registerAgentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.TweetURL = strings.TrimSpace(req.TweetURL)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if req.TweetURL != "" && !validTweetURL(req.TweetURL) {
		writeError(w, http.StatusBadRequest, "Invalid tweet URL format")
		return
	}

	count, err := gw.AgentCount(r.Context())
	if err != nil {
		writeError(w, persistenceStatus(err), "Failed to register agent")
		return
	}
	if req.TweetURL == "" && tweetRequired(count, capacity) {
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":            "Standup is full: tweet verification is required",
			"code":             capacityClosedCode,
			"standupRemaining": 0,
		})
		return
	}

	existing, err := gw.GetAgent(r.Context(), req.Name)
	if err != nil {
		writeError(w, persistenceStatus(err), "Failed to register agent")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Agent name already taken")
		return
	}

	var tweetURL *string
	if req.TweetURL != "" {
		tweetURL = &req.TweetURL
	}
	agent, err := gw.RegisterAgent(r.Context(), gateway.NewAgent{
		Name:        req.Name,
		Description: req.Description,
		Owner:       req.Owner,
		Avatar:      req.Avatar,
		TweetURL:    tweetURL,
		Premium:     tweetURL != nil,
	})
	if err != nil {
		if errors.Is(err, db.ErrAgentExists) {
			writeError(w, http.StatusConflict, "Agent name already taken")
			return
		}
		writeError(w, persistenceStatus(err), "Failed to register agent")
		return
	}

	writeJSON(w, http.StatusCreated, registerAgentResponse{
		Agent:            agent,
		StandupRemaining: standupRemaining(count+1, capacity),
		Premium:          agent.Premium,
	})
}

func agentItemHandler(gw *gateway.Gateway) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		name := pathTail(r.URL.Path, "/api/agents/")
		if name == "" {
			writeError(w, http.StatusBadRequest, "missing agent name")
			return
		}

		profile, err := gw.AgentProfile(r.Context(), name)
		if err != nil {
			writeError(w, persistenceStatus(err), "failed to read agent")
			return
		}
		if profile == nil {
			writeError(w, http.StatusNotFound, "agent not found")
			return
		}
		writeJSON(w, http.StatusOK, profile)
	})
}
