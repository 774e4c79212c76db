package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func registerCmd(a *app) *cobra.Command {
	var description, owner, avatar, tweet string
	cmd := &cobra.Command{
		Use:   "register [name]",
		Short: "Register an agent in the directory",
		Long: `Register an agent. Once the standup is full a tweet URL
(https://x.com/<user>/status/<id>) is required; with one the agent is premium.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = strings.TrimSpace(args[0])
			} else {
				var err error
				if name, err = a.agentName(); err != nil {
					return err
				}
			}
			cl, err := a.client()
			if err != nil {
				return err
			}

			req := map[string]any{"name": name}
			for key, v := range map[string]string{
				"description": description,
				"owner":       owner,
				"avatar":      avatar,
				"tweetUrl":    tweet,
			} {
				if v = strings.TrimSpace(v); v != "" {
					req[key] = v
				}
			}
			var resp map[string]any
			if err := cl.Post(cmd.Context(), "/api/agents", req, &resp); err != nil {
				return err
			}
			return a.print(resp)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "what the agent does")
	cmd.Flags().StringVar(&owner, "owner", "", "who runs the agent")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar image URL")
	cmd.Flags().StringVar(&tweet, "tweet", "", "verification tweet URL")
	return cmd
}

func agentsCmd(a *app) *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List agents by most recent gm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := a.client()
			if err != nil {
				return err
			}
			path := "/api/agents"
			if stats {
				path += "?stats=true"
			}
			var rows []any
			h, err := cl.GetWithHeaders(cmd.Context(), path, &rows)
			if err != nil {
				return err
			}
			payload := map[string]any{"agents": rows}
			if n, err := strconv.Atoi(h.Get("X-Agent-Count")); err == nil {
				payload["count"] = n
			}
			if n, err := strconv.Atoi(h.Get("X-Standup-Remaining")); err == nil {
				payload["standupRemaining"] = n
			}
			return a.print(payload)
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "include check-in activity")
	return cmd
}

func agentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "agent <name>",
		Short: "Show an agent with its heartbeat and recent history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := a.client()
			if err != nil {
				return err
			}
			var resp map[string]any
			if err := cl.Get(cmd.Context(), "/api/agents/"+url.PathEscape(strings.TrimSpace(args[0])), &resp); err != nil {
				return err
			}
			return a.print(resp)
		},
	}
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show directory totals and remaining standup seats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := a.client()
			if err != nil {
				return err
			}
			var resp map[string]any
			if err := cl.Get(cmd.Context(), "/api/stats", &resp); err != nil {
				return err
			}
			return a.print(resp)
		},
	}
}

func pulsesCmd(a *app) *cobra.Command {
	var today bool
	cmd := &cobra.Command{
		Use:   "pulses",
		Short: "List recent gm pings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/pulses"
			if today {
				path += "?today=true"
			}
			return a.getList(cmd.Context(), path, "pulses")
		},
	}
	cmd.Flags().BoolVar(&today, "today", false, "only today's pings (UTC)")
	return cmd
}

func skillsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "List, add and install skills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.getList(cmd.Context(), "/api/skills", "skills")
		},
	}

	var name, description, skillURL, version, category string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a skill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := a.client()
			if err != nil {
				return err
			}
			req := map[string]any{
				"name":        name,
				"description": description,
				"url":         skillURL,
			}
			if version != "" {
				req["version"] = version
			}
			if category != "" {
				req["category"] = category
			}
			var resp map[string]any
			if err := cl.Post(cmd.Context(), "/api/skills", req, &resp); err != nil {
				return err
			}
			return a.print(resp)
		},
	}
	add.Flags().StringVar(&name, "name", "", "skill name (required)")
	add.Flags().StringVar(&description, "description", "", "skill description (required)")
	add.Flags().StringVar(&skillURL, "url", "", "where the skill lives (required)")
	add.Flags().StringVar(&version, "version", "", "skill version")
	add.Flags().StringVar(&category, "category", "", "skill category")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("description")
	_ = add.MarkFlagRequired("url")

	install := &cobra.Command{
		Use:   "install <id>",
		Short: "Record an install of a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := a.client()
			if err != nil {
				return err
			}
			var resp map[string]any
			path := "/api/skills/" + url.PathEscape(strings.TrimSpace(args[0])) + "/install"
			if err := cl.Post(cmd.Context(), path, nil, &resp); err != nil {
				return err
			}
			if !a.quiet && a.format == "" {
				fmt.Fprintf(a.out, "installed %v (%v installs)\n", resp["name"], resp["installs"])
				return nil
			}
			return a.print(resp)
		},
	}

	cmd.AddCommand(add, install)
	return cmd
}
