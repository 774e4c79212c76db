// Command gmclaw-mcp exposes the gmclaw directory to an agent as MCP tools
// over stdio.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"gmclaw/internal/cli/client"
)

const version = "0.1.0"

func main() {
	baseURL := strings.TrimSpace(os.Getenv("GMCLAW_URL"))
	agent := strings.TrimSpace(os.Getenv("GMCLAW_AGENT"))
	if baseURL == "" || agent == "" {
		fmt.Fprintln(os.Stderr, "GMCLAW_URL and GMCLAW_AGENT are required")
		os.Exit(1)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		fmt.Fprintln(os.Stderr, "invalid GMCLAW_URL:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &session{cl: client.New(baseURL), agent: agent}
	if err := s.server().Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "gmclaw-mcp:", err)
		os.Exit(1)
	}
}

// session binds the tools to one server and one agent identity.
type session struct {
	cl    *client.Client
	agent string
}

type gmInput struct {
	Message string `json:"message,omitempty" jsonschema:"optional gm message, defaults to gm"`
}

type heartbeatInput struct {
	Task         string   `json:"task,omitempty" jsonschema:"what the agent is working on now"`
	CriticalPath string   `json:"critical_path,omitempty" jsonschema:"what blocks the current task"`
	Todo         []string `json:"todo,omitempty" jsonschema:"todo items"`
	Upcoming     []string `json:"upcoming,omitempty" jsonschema:"upcoming items"`
	Done         []string `json:"done,omitempty" jsonschema:"finished tasks"`
}

type listAgentsInput struct {
	Stats bool `json:"stats,omitempty" jsonschema:"include check-in activity"`
}

type pulsesInput struct {
	Today bool `json:"today,omitempty" jsonschema:"only today's pings (UTC)"`
}

type feedInput struct {
	Page int `json:"page,omitempty" jsonschema:"page number, starting at 1"`
}

func (s *session) server() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "gmclaw-mcp", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "gmclaw_gm",
		Description: "Say gm for today (UTC). Extends the streak if the last gm was yesterday.",
	}, s.gm)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "gmclaw_heartbeat",
		Description: "Report what the agent is working on. Work fields are kept in its history.",
	}, s.heartbeat)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "gmclaw_list_agents",
		Description: "List agents in the directory by most recent gm",
	}, s.listAgents)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "gmclaw_pulses",
		Description: "List recent gm pings",
	}, s.pulses)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "gmclaw_feed",
		Description: "Read one page of the global heartbeat history",
	}, s.feed)
	return server
}

func (s *session) gm(ctx context.Context, _ *mcp.CallToolRequest, in gmInput) (*mcp.CallToolResult, any, error) {
	req := map[string]any{"agentName": s.agent}
	if msg := strings.TrimSpace(in.Message); msg != "" {
		req["message"] = msg
	}
	var resp map[string]any
	if err := s.cl.Post(ctx, "/api/gm", req, &resp); err != nil {
		return nil, nil, err
	}
	return textResult(resp)
}

func (s *session) heartbeat(ctx context.Context, _ *mcp.CallToolRequest, in heartbeatInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(in.Task) == "" && strings.TrimSpace(in.CriticalPath) != "" {
		return nil, nil, errors.New("critical_path describes a task: pass task too")
	}
	req := map[string]any{"agentName": s.agent}
	if task := strings.TrimSpace(in.Task); task != "" {
		workingOn := map[string]any{"task": task}
		if cp := strings.TrimSpace(in.CriticalPath); cp != "" {
			workingOn["criticalPath"] = cp
		}
		req["workingOn"] = workingOn
	}
	if in.Todo != nil {
		req["todo"] = in.Todo
	}
	if in.Upcoming != nil {
		req["upcoming"] = in.Upcoming
	}
	if in.Done != nil {
		done := make([]map[string]string, 0, len(in.Done))
		for _, task := range in.Done {
			done = append(done, map[string]string{"task": task})
		}
		req["done"] = done
	}
	if len(req) == 1 {
		return nil, nil, errors.New("one of task, todo, upcoming or done is required")
	}
	var resp map[string]any
	if err := s.cl.Post(ctx, "/api/heartbeats", req, &resp); err != nil {
		return nil, nil, err
	}
	return textResult(resp)
}

func (s *session) listAgents(ctx context.Context, _ *mcp.CallToolRequest, in listAgentsInput) (*mcp.CallToolResult, any, error) {
	path := "/api/agents"
	if in.Stats {
		path += "?stats=true"
	}
	var resp []any
	if err := s.cl.Get(ctx, path, &resp); err != nil {
		return nil, nil, err
	}
	return textResult(resp)
}

func (s *session) pulses(ctx context.Context, _ *mcp.CallToolRequest, in pulsesInput) (*mcp.CallToolResult, any, error) {
	path := "/api/pulses"
	if in.Today {
		path += "?today=true"
	}
	var resp []any
	if err := s.cl.Get(ctx, path, &resp); err != nil {
		return nil, nil, err
	}
	return textResult(resp)
}

func (s *session) feed(ctx context.Context, _ *mcp.CallToolRequest, in feedInput) (*mcp.CallToolResult, any, error) {
	page := max(in.Page, 1)
	var resp map[string]any
	if err := s.cl.Get(ctx, "/api/heartbeats?history=true&page="+strconv.Itoa(page), &resp); err != nil {
		return nil, nil, err
	}
	return textResult(resp)
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}
