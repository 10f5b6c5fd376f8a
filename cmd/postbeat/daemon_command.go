package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"postbeat/internal/daemon"
	"postbeat/internal/deps"
	"postbeat/internal/logging"
	"postbeat/internal/scheduler"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the scheduler daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.openLogger()
			if err != nil {
				return err
			}

			if issues := cfg.CredentialIssues(); len(issues) > 0 {
				for _, issue := range issues {
					logger.Warn("configuration issue", logging.String("issue", issue))
				}
			}
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				if !status.Available {
					logger.Warn("missing external dependency",
						logging.String("dependency", status.Name),
						logging.String("detail", status.Detail))
				}
			}

			runner, st, err := ctx.buildRunner(cmd.Context(), logger)
			if err != nil {
				return err
			}

			sched, err := scheduler.New(cfg, st, func(runCtx context.Context) error {
				_, runErr := runner.Run(runCtx)
				return runErr
			}, logger)
			if err != nil {
				st.Close()
				return err
			}

			d, err := daemon.New(cfg, st, sched, logger)
			if err != nil {
				st.Close()
				return err
			}

			if err := d.Start(cmd.Context()); err != nil {
				st.Close()
				return err
			}
			defer d.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "postbeat daemon running (schedule: %v %s)\n",
				cfg.Schedule.Times, cfg.Schedule.Timezone)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-sigCh:
				logger.Info("shutdown signal received", logging.String("signal", sig.String()))
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
}
