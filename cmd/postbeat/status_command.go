package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"postbeat/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show scheduler state and queue summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			state, err := st.SchedulerState(cmd.Context())
			if err != nil {
				return err
			}
			pending, err := st.PendingPosts(cmd.Context())
			if err != nil {
				return err
			}
			postsToday, err := st.PostsToday(cmd.Context())
			if err != nil {
				return err
			}

			lastRun := "never"
			if state.LastRun != nil {
				lastRun = state.LastRun.In(cfg.Location()).Format(time.RFC1123)
			}
			lastPosted := state.LastPostedFolder
			if lastPosted == "" {
				lastPosted = "-"
			}

			rows := [][]string{
				{"Schedule", fmt.Sprintf("%v %s", cfg.Schedule.Times, cfg.Schedule.Timezone)},
				{"Last run", lastRun},
				{"Last posted", lastPosted},
				{"Posts today", fmt.Sprintf("%d", postsToday)},
				{"Pending posts", fmt.Sprintf("%d", len(pending))},
				{"Database", st.Path()},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))

			if issues := cfg.CredentialIssues(); len(issues) > 0 {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Credential issues:")
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
			}
			return nil
		},
	}
}
