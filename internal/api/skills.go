package api

import (
	"net/http"
	"strings"

	"gmclaw/internal/gateway"
)

type registerSkillRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Version     *string `json:"version"`
	Category    *string `json:"category"`
}

func skillsCollectionHandler(gw *gateway.Gateway) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			skills, err := gw.ListSkills(r.Context())
			if err != nil {
				writeJSON(w, persistenceStatus(err), skills)
				return
			}
			writeJSON(w, http.StatusOK, skills)
		case http.MethodPost:
			var req registerSkillRequest
			if !decodeBody(w, r, &req) {
				return
			}
			req.Name = strings.TrimSpace(req.Name)
			req.Description = strings.TrimSpace(req.Description)
			req.URL = strings.TrimSpace(req.URL)
			if req.Name == "" || req.Description == "" || req.URL == "" {
				writeError(w, http.StatusBadRequest, "name, description, and url are required")
				return
			}
			skill, err := gw.RegisterSkill(r.Context(), gateway.NewSkill{
				Name:        req.Name,
				Description: req.Description,
				URL:         req.URL,
				Version:     req.Version,
				Category:    req.Category,
			})
			if err != nil {
				writeError(w, persistenceStatus(err), "Failed to register skill")
				return
			}
			writeJSON(w, http.StatusCreated, skill)
		default:
			methodNotAllowed(w)
		}
	})
}

// skillItemHandler serves POST /api/skills/{id}/install.
func skillItemHandler(gw *gateway.Gateway) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tail := pathTail(r.URL.Path, "/api/skills/")
		id, action, _ := strings.Cut(tail, "/")
		if id == "" || action != "install" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}

		skill, err := gw.InstallSkill(r.Context(), id)
		if err != nil {
			writeError(w, persistenceStatus(err), "Failed to record install")
			return
		}
		if skill == nil {
			writeError(w, http.StatusNotFound, "skill not found")
			return
		}
		writeJSON(w, http.StatusOK, skill)
	})
}
