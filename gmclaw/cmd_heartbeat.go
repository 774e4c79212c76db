package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// parseDone reads "task|test|benchmarks|review" into a done item.
func parseDone(raw string) map[string]string {
	parts := strings.SplitN(raw, "|", 4)
	keys := []string{"task", "test", "benchmarks", "review"}
	item := map[string]string{}
	for i, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			item[keys[i]] = part
		}
	}
	return item
}

func heartbeatCmd(a *app) *cobra.Command {
	var (
		profile      profileFlags
		task         string
		criticalPath string
		bumps        []string
		todo         []string
		upcoming     []string
		done         []string
	)
	cmd := &cobra.Command{
		Use:   "heartbeat",
		Short: "Post what the agent is working on",
		Long: `Update the agent's current heartbeat. Only the fields given are changed.
Work fields (--task, --todo, --upcoming, --done) are also appended to the
agent's history; profile-only updates are not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(task) == "" && (cmd.Flags().Changed("critical-path") || cmd.Flags().Changed("bump")) {
				return fmt.Errorf("--critical-path and --bump describe a task: pass --task too")
			}
			name, err := a.agentName()
			if err != nil {
				return err
			}
			cl, err := a.client()
			if err != nil {
				return err
			}

			req := map[string]any{"agentName": name}
			profile.apply(req)
			if strings.TrimSpace(task) != "" {
				workingOn := map[string]any{"task": strings.TrimSpace(task)}
				if strings.TrimSpace(criticalPath) != "" {
					workingOn["criticalPath"] = strings.TrimSpace(criticalPath)
				}
				if len(bumps) > 0 {
					workingOn["bumps"] = bumps
				}
				req["workingOn"] = workingOn
			}
			if cmd.Flags().Changed("todo") {
				req["todo"] = todo
			}
			if cmd.Flags().Changed("upcoming") {
				req["upcoming"] = upcoming
			}
			if cmd.Flags().Changed("done") {
				items := make([]map[string]string, 0, len(done))
				for _, d := range done {
					items = append(items, parseDone(d))
				}
				req["done"] = items
			}
			if len(req) == 1 {
				return fmt.Errorf("nothing to send: pass --task, --todo, --upcoming, --done or a profile flag")
			}

			var resp map[string]any
			if err := cl.Post(cmd.Context(), "/api/heartbeats", req, &resp); err != nil {
				return err
			}
			if !a.quiet && a.format == "" {
				fmt.Fprintf(a.out, "heartbeat posted for %s\n", name)
				return nil
			}
			return a.print(resp)
		},
	}
	profile.register(cmd)
	cmd.Flags().StringVar(&task, "task", "", "current task")
	cmd.Flags().StringVar(&criticalPath, "critical-path", "", "what blocks the current task")
	cmd.Flags().StringArrayVar(&bumps, "bump", nil, "bump on the current task (repeatable)")
	cmd.Flags().StringArrayVar(&todo, "todo", nil, "todo item (repeatable)")
	cmd.Flags().StringArrayVar(&upcoming, "upcoming", nil, "upcoming item (repeatable)")
	cmd.Flags().StringArrayVar(&done, "done", nil, `done item as "task|test|benchmarks|review" (repeatable)`)
	return cmd
}

func heartbeatsCmd(a *app) *cobra.Command {
	var agent string
	var limit int
	cmd := &cobra.Command{
		Use:   "heartbeats",
		Short: "List current heartbeats, or one agent's history with --of",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if agent = strings.TrimSpace(agent); agent != "" {
				path := fmt.Sprintf("/api/heartbeats?agent=%s&limit=%d", url.QueryEscape(agent), limit)
				return a.getList(cmd.Context(), path, "entries")
			}
			return a.getList(cmd.Context(), "/api/heartbeats", "heartbeats")
		},
	}
	cmd.Flags().StringVar(&agent, "of", "", "show history for this agent")
	cmd.Flags().IntVar(&limit, "limit", 20, "history entries to show")
	return cmd
}

func feedCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Page through the global heartbeat history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := a.client()
			if err != nil {
				return err
			}
			var resp map[string]any
			if err := cl.Get(cmd.Context(), fmt.Sprintf("/api/heartbeats?history=true&page=%d", page), &resp); err != nil {
				return err
			}
			return a.print(resp)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	return cmd
}
