package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/repository"
)

func newScheduleCommand(envFile *string) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run on the SCHEDULE cron expression until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *envFile, true)
			if err != nil {
				return err
			}
			defer a.close()

			c, err := newScheduler(ctx, a, a.cfg.Schedule)
			if err != nil {
				return err
			}

			if runNow {
				a.scheduledRun(ctx)
			}

			c.Start()
			a.logger.Info("Scheduler started", zap.String("schedule", a.cfg.Schedule))

			<-ctx.Done()
			a.logger.Info("Shutting down scheduler, waiting for the current run")
			<-c.Stop().Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "now", false, "run once immediately before waiting for the schedule")
	return cmd
}

// newScheduler builds a cron with a standard five-field parser. Overlapping
// triggers are skipped rather than queued.
func newScheduler(ctx context.Context, a *app, schedule string) (*cron.Cron, error) {
	log := cronLogger{a.logger.Sugar()}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)

	if _, err := c.AddFunc(schedule, func() { a.scheduledRun(ctx) }); err != nil {
		return nil, fmt.Errorf("%w: invalid SCHEDULE %q: %w", repository.ErrConfiguration, schedule, err)
	}
	return c, nil
}

func (a *app) scheduledRun(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := a.runner.Run(ctx); err != nil {
		a.logger.Error("Scheduled run failed", zap.Error(err))
	}
	a.pushMetrics(ctx)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
