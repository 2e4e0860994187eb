package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll every source once, download new images and emit a report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, *envFile, true)
			if err != nil {
				return err
			}
			defer a.close()

			summary, err := a.runner.Run(ctx)
			a.pushMetrics(ctx)
			if err != nil {
				a.logger.Error("Run failed", zap.Error(err))
				return err
			}
			if summary.Skipped {
				a.logger.Info("Run skipped, another run holds the lock")
			}
			return nil
		},
	}
}
