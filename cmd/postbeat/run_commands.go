package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"postbeat/internal/notifications"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Publish the next pending post immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.openLogger()
			if err != nil {
				return err
			}
			runner, st, err := ctx.buildRunner(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer st.Close()

			summary, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary.SelectedFolder == "" {
				fmt.Fprintln(out, "No pending posts")
				return nil
			}
			fmt.Fprintf(out, "Post: %s\n", summary.SelectedFolder)
			if summary.Publish != nil {
				for _, pr := range summary.Publish.Platforms {
					line := string(pr.Platform) + ": " + string(pr.Outcome)
					if pr.Detail != "" {
						line += " (" + pr.Detail + ")"
					}
					fmt.Fprintln(out, "  "+line)
				}
				if summary.Publish.Relocated {
					fmt.Fprintln(out, "Moved to processed")
				}
			}
			fmt.Fprintf(out, "Posts today: %d\n", summary.PostsToday)
			return nil
		},
	}
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync the input directory into the queue without publishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.openLogger()
			if err != nil {
				return err
			}
			runner, st, err := ctx.buildRunner(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer st.Close()

			result, err := runner.SyncOnly(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sync complete: %d new, %d purged, %d folders total\n",
				result.Added, result.Purged, result.TotalFolders)
			return nil
		},
	}
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notifications.NtfyTopic == "" {
				return fmt.Errorf("no ntfy topic configured")
			}

			svc := notifications.NewService(cfg)
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
