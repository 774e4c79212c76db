package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
)

type registerPayload struct {
	Agent struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Premium  bool   `json:"premium"`
		GmStreak int    `json:"gmStreak"`
	} `json:"agent"`
	StandupRemaining int    `json:"standupRemaining"`
	Premium          bool   `json:"premium"`
	Error            string `json:"error"`
	Code             string `json:"code"`
}

func TestRegisterAgentBeforeCapacity(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doReq(t, server.URL, http.MethodPost, "/api/agents", map[string]any{
		"name":  "plain",
		"owner": "ops",
	})
	mustStatus(t, resp, http.StatusCreated)
	var plain registerPayload
	decodeJSON(t, resp, &plain)
	if plain.Premium || plain.Agent.Premium {
		t.Fatalf("agent without tweet must not be premium")
	}
	if plain.Agent.ID == "" || plain.Agent.Name != "plain" {
		t.Fatalf("unexpected agent %+v", plain.Agent)
	}
	if plain.StandupRemaining != 999 {
		t.Fatalf("standupRemaining = %d, want 999", plain.StandupRemaining)
	}

	resp = doReq(t, server.URL, http.MethodPost, "/api/agents", map[string]any{
		"name":     "verified",
		"tweetUrl": "https://twitter.com/verified_bot/status/987654321",
	})
	mustStatus(t, resp, http.StatusCreated)
	var verified registerPayload
	decodeJSON(t, resp, &verified)
	if !verified.Premium || !verified.Agent.Premium {
		t.Fatalf("agent with valid tweet must be premium")
	}
}

func TestRegisterAgentValidation(t *testing.T) {
	server, _ := setupTestServer(t)

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing name", map[string]any{"description": "x"}, http.StatusBadRequest},
		{"blank name", map[string]any{"name": "   "}, http.StatusBadRequest},
		{"wrong host", map[string]any{"name": "a", "tweetUrl": "https://example.com/a/status/1"}, http.StatusBadRequest},
		{"non numeric id", map[string]any{"name": "a", "tweetUrl": "https://x.com/a/status/abc"}, http.StatusBadRequest},
		{"missing status segment", map[string]any{"name": "a", "tweetUrl": "https://x.com/a"}, http.StatusBadRequest},
		{"ftp scheme", map[string]any{"name": "a", "tweetUrl": "ftp://x.com/a/status/1"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doReq(t, server.URL, http.MethodPost, "/api/agents", tc.body)
			mustStatus(t, resp, tc.want)
			_ = resp.Body.Close()
		})
	}

	resp := doReq(t, server.URL, http.MethodPost, "/api/agents", map[string]any{"name": "dup"})
	mustStatus(t, resp, http.StatusCreated)
	_ = resp.Body.Close()
	resp = doReq(t, server.URL, http.MethodPost, "/api/agents", map[string]any{"name": "dup"})
	mustStatus(t, resp, http.StatusConflict)
	_ = resp.Body.Close()
}

func TestRegisterAgentCapacityGate(t *testing.T) {
	server, gw, _ := setupTestServerWith(t, Options{Capacity: 1000})

	database, err := gw.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	tx, err := database.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	for i := 0; i < 1000; i++ {
		if _, err := tx.Exec(
			`INSERT INTO agents (id, name, created_at) VALUES (?, ?, '2026-01-01T00:00:00.000Z')`,
			fmt.Sprintf("id-%d", i), fmt.Sprintf("agent-%04d", i),
		); err != nil {
			t.Fatalf("seed agent %d: %v", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	resp := doReq(t, server.URL, http.MethodPost, "/api/agents", map[string]any{"name": "late"})
	mustStatus(t, resp, http.StatusForbidden)
	var closed registerPayload
	decodeJSON(t, resp, &closed)
	if closed.Code != capacityClosedCode {
		t.Fatalf("expected capacity closed code, got %q (%s)", closed.Code, closed.Error)
	}

	resp = doReq(t, server.URL, http.MethodPost, "/api/agents", map[string]any{
		"name":     "late",
		"tweetUrl": "ftp://x.com/foo/status/123456",
	})
	mustStatus(t, resp, http.StatusBadRequest)
	_ = resp.Body.Close()

	resp = doReq(t, server.URL, http.MethodPost, "/api/agents", map[string]any{
		"name":     "late",
		"tweetUrl": "https://x.com/foo/status/123456",
	})
	mustStatus(t, resp, http.StatusCreated)
	var accepted registerPayload
	decodeJSON(t, resp, &accepted)
	if !accepted.Premium || accepted.StandupRemaining != 0 {
		t.Fatalf("unexpected post-capacity registration %+v", accepted)
	}

	list := doReq(t, server.URL, http.MethodGet, "/api/agents", nil)
	mustStatus(t, list, http.StatusOK)
	if got := list.Header.Get("X-Agent-Count"); got != "1001" {
		t.Fatalf("X-Agent-Count = %q", got)
	}
	if got := list.Header.Get("X-Standup-Remaining"); got != "0" {
		t.Fatalf("X-Standup-Remaining = %q", got)
	}
	var agents []map[string]any
	decodeJSON(t, list, &agents)
	if len(agents) != 50 {
		t.Fatalf("expected listing capped at 50, got %d", len(agents))
	}
}

func TestListAgentsWithStatsAndProfile(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := doReq(t, server.URL, http.MethodPost, "/api/heartbeats", map[string]any{
		"agentName": "worker",
		"workingOn": map[string]any{"task": "crawl"},
	})
	mustStatus(t, resp, http.StatusOK)
	_ = resp.Body.Close()
	resp = doReq(t, server.URL, http.MethodPost, "/api/gm", map[string]any{"agentName": "worker"})
	mustStatus(t, resp, http.StatusOK)
	_ = resp.Body.Close()

	list := doReq(t, server.URL, http.MethodGet, "/api/agents?stats=true", nil)
	mustStatus(t, list, http.StatusOK)
	if list.Header.Get("X-Standup-Remaining") != "999" {
		t.Fatalf("X-Standup-Remaining = %q", list.Header.Get("X-Standup-Remaining"))
	}
	var rows []struct {
		Name             string `json:"name"`
		IsActive         bool   `json:"isActive"`
		CheckInCount     int    `json:"checkInCount"`
		CurrentHeartbeat *struct {
			WorkingOn struct {
				Task string `json:"task"`
			} `json:"workingOn"`
		} `json:"currentHeartbeat"`
	}
	decodeJSON(t, list, &rows)
	if len(rows) != 1 || rows[0].Name != "worker" || !rows[0].IsActive || rows[0].CheckInCount != 1 {
		t.Fatalf("unexpected stats rows %+v", rows)
	}
	if rows[0].CurrentHeartbeat == nil || rows[0].CurrentHeartbeat.WorkingOn.Task != "crawl" {
		t.Fatalf("missing current heartbeat summary")
	}

	profile := doReq(t, server.URL, http.MethodGet, "/api/agents/worker", nil)
	mustStatus(t, profile, http.StatusOK)
	var payload struct {
		Agent struct {
			TotalGms int `json:"totalGms"`
		} `json:"agent"`
		Heartbeat *struct {
			AgentName string `json:"agentName"`
		} `json:"heartbeat"`
		History []map[string]any `json:"history"`
	}
	decodeJSON(t, profile, &payload)
	if payload.Agent.TotalGms != 1 || payload.Heartbeat == nil || len(payload.History) != 1 {
		t.Fatalf("unexpected profile %+v", payload)
	}

	missing := doReq(t, server.URL, http.MethodGet, "/api/agents/nobody", nil)
	mustStatus(t, missing, http.StatusNotFound)
	_ = missing.Body.Close()
}
