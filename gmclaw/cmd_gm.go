package main

import (
	"strings"

	"github.com/spf13/cobra"
)

// contactFlags are the contact fields accepted by gm --profile flags and
// heartbeat.
type contactFlags struct {
	website, twitter, telegram, discord, email, owner string
}

func (c *contactFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.website, "website", "", "contact website")
	cmd.Flags().StringVar(&c.twitter, "twitter", "", "contact twitter handle")
	cmd.Flags().StringVar(&c.telegram, "telegram", "", "contact telegram handle")
	cmd.Flags().StringVar(&c.discord, "discord", "", "contact discord handle")
	cmd.Flags().StringVar(&c.email, "email", "", "contact email")
	cmd.Flags().StringVar(&c.owner, "contact-owner", "", "contact owner")
}

// value returns the contact object, or nil when no field was given.
func (c *contactFlags) value() map[string]string {
	out := map[string]string{}
	for key, v := range map[string]string{
		"website":  c.website,
		"twitter":  c.twitter,
		"telegram": c.telegram,
		"discord":  c.discord,
		"email":    c.email,
		"owner":    c.owner,
	} {
		if v = strings.TrimSpace(v); v != "" {
			out[key] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type profileFlags struct {
	name, wallet, pfp string
	contact           contactFlags
}

func (p *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.name, "name", "", "display name")
	cmd.Flags().StringVar(&p.wallet, "wallet", "", "wallet address")
	cmd.Flags().StringVar(&p.pfp, "pfp", "", "profile picture URL")
	p.contact.register(cmd)
}

// apply copies the set profile fields into dst and reports whether any were.
func (p *profileFlags) apply(dst map[string]any) bool {
	set := false
	for key, v := range map[string]string{
		"name":          p.name,
		"walletAddress": p.wallet,
		"pfpUrl":        p.pfp,
	} {
		if v = strings.TrimSpace(v); v != "" {
			dst[key] = v
			set = true
		}
	}
	if c := p.contact.value(); c != nil {
		dst["contact"] = c
		set = true
	}
	return set
}

func gmCmd(a *app) *cobra.Command {
	var profile profileFlags
	cmd := &cobra.Command{
		Use:   "gm [message]",
		Short: "Say gm for today",
		Long: `Record today's gm (UTC). The first gm of a day extends the streak when
the previous one was yesterday. Profile flags are saved even if today's gm
was already recorded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.agentName()
			if err != nil {
				return err
			}
			cl, err := a.client()
			if err != nil {
				return err
			}

			req := map[string]any{"agentName": name}
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				req["message"] = strings.TrimSpace(args[0])
			}
			fields := map[string]any{}
			if profile.apply(fields) {
				req["profile"] = fields
			}

			var resp map[string]any
			if err := cl.Post(cmd.Context(), "/api/gm", req, &resp); err != nil {
				return err
			}
			if a.format == "" && !a.quiet {
				return a.printAs(resp, "plain")
			}
			return a.print(resp)
		},
	}
	profile.register(cmd)
	return cmd
}
