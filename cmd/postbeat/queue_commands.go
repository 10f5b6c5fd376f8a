package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"postbeat/internal/store"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the post queue",
	}
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts and their per-platform status",
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

			var posts []*store.Post
			if pendingOnly {
				posts, err = st.PendingPosts(cmd.Context())
			} else {
				posts, err = st.AllPosts(cmd.Context())
			}
			if err != nil {
				return err
			}
			if len(posts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}

			headers := []string{"ID", "Folder", "Duration"}
			for _, platform := range store.Platforms() {
				headers = append(headers, strings.ToUpper(string(platform)))
			}

			rows := make([][]string, 0, len(posts))
			for _, post := range posts {
				records, err := st.RecordsForPost(cmd.Context(), post.ID)
				if err != nil {
					return err
				}
				row := []string{
					fmt.Sprintf("%d", post.ID),
					post.FolderName,
					fmt.Sprintf("%.1fs", post.Duration),
				}
				for _, platform := range store.Platforms() {
					row = append(row, statusCell(records[platform]))
				}
				rows = append(rows, row)
			}

			aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Show only posts that are not fully published")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <folder>",
		Short: "Show one post in detail",
		Args:  cobra.ExactArgs(1),
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

			return printPostDetail(cmd, st, args[0])
		},
	}
}

func printPostDetail(cmd *cobra.Command, st *store.Store, folder string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	post, err := st.PostByFolder(ctx, folder)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("no post with folder %q", folder)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Folder:   %s\n", post.FolderName)
	fmt.Fprintf(out, "Video:    %s\n", post.VideoPath)
	fmt.Fprintf(out, "Title:    %s\n", post.Title)
	fmt.Fprintf(out, "Duration: %.1fs\n", post.Duration)
	fmt.Fprintf(out, "Created:  %s\n", post.CreatedAt.Format("2006-01-02 15:04:05"))

	records, err := st.RecordsForPost(ctx, post.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Platforms:")
	for _, platform := range store.Platforms() {
		fmt.Fprintf(out, "  %-9s %s\n", platform, statusCell(records[platform]))
	}
	return nil
}

func statusCell(record *store.PublishRecord) string {
	if record == nil {
		return "-"
	}
	switch record.Status {
	case store.StatusPublished:
		return "PUBLISHED"
	case store.StatusSkipped:
		if record.ErrorMessage != "" {
			return "SKIPPED (" + record.ErrorMessage + ")"
		}
		return "SKIPPED"
	case store.StatusFailed:
		detail := record.ErrorMessage
		if len(detail) > 40 {
			detail = detail[:40] + "..."
		}
		if detail != "" {
			return "FAILED (" + detail + ")"
		}
		return "FAILED"
	default:
		return string(record.Status)
	}
}
