package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gmclaw/internal/cli/client"
	"gmclaw/internal/cli/config"
)

func connectCmd(a *app) *cobra.Command {
	var inDir bool
	cmd := &cobra.Command{
		Use:   "connect <url>",
		Short: "Save the server URL and default agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawURL := strings.TrimSpace(args[0])
			if _, err := url.ParseRequestURI(rawURL); err != nil {
				return fmt.Errorf("invalid url: %w", err)
			}

			var status map[string]any
			if err := client.New(rawURL).Get(cmd.Context(), "/api/status", &status); err != nil {
				return fmt.Errorf("validate server: %w", err)
			}

			cfgPath, err := config.Path()
			if err != nil {
				return err
			}
			if inDir {
				cwd, err := os.Getwd()
				if err != nil {
					return err
				}
				cfgPath = filepath.Join(cwd, ".gmclaw", "config.json")
			}
			cfg, err := config.LoadFromPath(cfgPath)
			if err != nil {
				return err
			}
			cfg.SetDefault(rawURL, strings.TrimSpace(a.agent))
			if err := config.SaveToPath(cfg, cfgPath); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "connected to %s\n", rawURL)
			return nil
		},
	}
	cmd.Flags().BoolVar(&inDir, "in-dir", false, "write config to ./.gmclaw/config.json")
	return cmd
}

func disconnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Forget the saved server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := config.Path()
			if err != nil {
				return err
			}
			cfg, err := config.LoadFromPath(cfgPath)
			if err != nil {
				return err
			}
			if _, ok := cfg.Default(); !ok {
				fmt.Fprintln(a.out, "no active connection")
				return nil
			}
			cfg.ClearDefault()
			if err := config.SaveToPath(cfg, cfgPath); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "disconnected")
			return nil
		},
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the connection and server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := a.connection()
			if err != nil {
				return err
			}
			var status map[string]any
			if err := client.New(srv.URL).Get(cmd.Context(), "/api/status", &status); err != nil {
				return err
			}
			return a.print(map[string]any{
				"server":       srv.URL,
				"agent":        srv.Agent,
				"connected_at": srv.ConnectedAt,
				"status":       status,
			})
		},
	}
}
