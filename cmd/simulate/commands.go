package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"next_read/persona"
	"next_read/widget"
)

func newTrackCmd(opts *rootOptions) *cobra.Command {
	var clues map[string]int
	cmd := &cobra.Command{
		Use:   "track <article-id>",
		Short: "Record a read and print the persona and suggestion",
		Long:  "Tracks an article by id. Catalog articles use their own clue weights; other ids need --clue.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			id := strings.TrimSpace(args[0])
			c, err := resolveClues(env, id, clues)
			if err != nil {
				return err
			}
			res, err := env.widget.Track(ctx, id, c)
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already tracked, nothing changed\n", id)
			}
			waitCycle(ctx, opts, res)
			printView(cmd.OutOrStdout(), env.widget.View())
			return nil
		},
	}
	cmd.Flags().StringToIntVar(&clues, "clue", nil, "persona clue weights, e.g. --clue Tech=2,Innovation=1")
	return cmd
}

func resolveClues(env *simEnv, id string, raw map[string]int) (persona.Clues, error) {
	if len(raw) == 0 {
		a, ok := env.catalog.Get().Find(id)
		if !ok {
			return nil, fmt.Errorf("article %q is not in the catalog, pass --clue", id)
		}
		return a.Clues, nil
	}
	clues := make(persona.Clues, len(raw))
	for name, w := range raw {
		d, err := persona.ParseDimension(name)
		if err != nil {
			return nil, err
		}
		clues[d] = w
	}
	return clues, nil
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var suggest bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session's history and persona",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if suggest {
				waitCycle(ctx, opts, env.widget.Refresh(ctx))
			}
			out := cmd.OutOrStdout()
			printView(out, env.widget.View())
			scores := env.widget.Tracker.State().Scores
			for _, d := range scores.Dimensions() {
				fmt.Fprintf(out, "  %-20s %d\n", d, scores.Get(d))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&suggest, "suggest", false, "also request a suggestion for the restored session")
	return cmd
}

func newLeadCmd(opts *rootOptions) *cobra.Command {
	var (
		email      string
		newsletter bool
	)
	cmd := &cobra.Command{
		Use:   "lead",
		Short: "Request a suggestion and send it to an email address",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			waitCycle(ctx, opts, env.widget.Refresh(ctx))
			env.widget.Lead.SetEmail(email)
			env.widget.Lead.SetSubscribed(newsletter)

			err = env.widget.SubmitLead(ctx)
			printView(cmd.OutOrStdout(), env.widget.View())
			return err
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "recipient email")
	cmd.Flags().BoolVar(&newsletter, "newsletter", true, "subscribe to the newsletter")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	var drop bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the session's history and persona",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.widget.Reset(ctx); err != nil {
				return err
			}
			if drop {
				if err := env.db.Session(opts.sessionID).Delete(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s reset\n", opts.sessionID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "also remove the stored record")
	return cmd
}

func newSessionsCmd(opts *rootOptions) *cobra.Command {
	var purge bool
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			db, err := openSessions(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if purge {
				n, err := db.PurgeExpired()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "purged %d expired sessions\n", n)
			}
			ids, err := db.Sessions()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&purge, "purge", false, "remove sessions past the freshness window first")
	return cmd
}

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the candidate articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			cat, err := catalogFor(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, a := range cat.Articles() {
				fmt.Fprintf(out, "%-28s %s\n", a.ID, a.Title)
			}
			return nil
		},
	}
}

// waitCycle blocks until the started suggestion cycle settles or --wait elapses.
func waitCycle(ctx context.Context, opts *rootOptions, res widget.TrackResult) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.wait)
	defer cancel()
	_ = res.Wait(ctx)
}

func printView(out io.Writer, v widget.View) {
	fmt.Fprintf(out, "persona:  %s\n", v.Persona)
	fmt.Fprintf(out, "history:  %s\n", strings.Join(v.History, ", "))
	fmt.Fprintf(out, "status:   %s\n", v.Suggestion.Phase)
	switch {
	case v.Suggestion.Suggestion != nil:
		fmt.Fprintf(out, "next:     %s\n", v.Suggestion.Suggestion.Title)
		fmt.Fprintf(out, "why:      %s\n", v.Suggestion.Suggestion.Reason)
	case v.Suggestion.Message != "":
		fmt.Fprintf(out, "error:    %s\n", v.Suggestion.Message)
	}
	if v.Lead.Message != "" {
		fmt.Fprintf(out, "lead:     %s\n", v.Lead.Message)
	}
}
