package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gmclaw/internal/cli/client"
	"gmclaw/internal/cli/config"
	"gmclaw/internal/cli/output"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app carries the persistent flags shared by every subcommand.
type app struct {
	out    io.Writer
	server string
	agent  string
	format string
	quiet  bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "gmclaw",
		Short:         "Say gm and post heartbeats to a gmclaw agent directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.server, "server", "", "server URL (default from config)")
	pf.StringVar(&a.agent, "agent", "", "agent name (default from config)")
	pf.StringVar(&a.format, "format", "", "output format: table, json, plain")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "print identifiers only")

	root.AddCommand(
		connectCmd(a),
		disconnectCmd(a),
		statusCmd(a),
		registerCmd(a),
		gmCmd(a),
		heartbeatCmd(a),
		agentsCmd(a),
		agentCmd(a),
		pulsesCmd(a),
		heartbeatsCmd(a),
		feedCmd(a),
		skillsCmd(a),
		statsCmd(a),
	)
	return root
}

// connection resolves the server URL and default agent, letting flags win
// over the saved config.
func (a *app) connection() (config.Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Server{}, err
	}
	srv, _ := cfg.Default()
	if a.server != "" {
		srv.URL = a.server
	}
	if a.agent != "" {
		srv.Agent = a.agent
	}
	if srv.URL == "" {
		return config.Server{}, errors.New("not connected. run: gmclaw connect <url> [--agent name]")
	}
	return srv, nil
}

func (a *app) client() (*client.Client, error) {
	srv, err := a.connection()
	if err != nil {
		return nil, err
	}
	return client.New(srv.URL), nil
}

// agentName returns the agent to act as, from --agent or the config.
func (a *app) agentName() (string, error) {
	srv, err := a.connection()
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(srv.Agent)
	if name == "" {
		return "", errors.New("no agent set. pass --agent or run: gmclaw connect <url> --agent <name>")
	}
	return name, nil
}

func (a *app) print(payload map[string]any) error {
	return output.Print(a.out, payload, a.format, a.quiet)
}

func (a *app) printAs(payload map[string]any, format string) error {
	return output.Print(a.out, payload, format, false)
}

// getList fetches a JSON array and prints it under key.
func (a *app) getList(ctx context.Context, path, key string) error {
	cl, err := a.client()
	if err != nil {
		return err
	}
	var rows []any
	if err := cl.Get(ctx, path, &rows); err != nil {
		return err
	}
	return a.print(map[string]any{key: rows})
}
