package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/delivery/http/handler"
	"github.com/user/imagewatch/internal/delivery/http/router"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(envFile *string) *cobra.Command {
	var withSchedule bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the API, metrics and reports over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *envFile, withSchedule)
			if err != nil {
				return err
			}
			defer a.close()

			if withSchedule {
				c, err := newScheduler(ctx, a, a.cfg.Schedule)
				if err != nil {
					return err
				}
				c.Start()
				defer func() { <-c.Stop().Done() }()
				a.logger.Info("Scheduler started", zap.String("schedule", a.cfg.Schedule))
			}

			h := handler.NewHandler(a.store, a.selector, a.runner, nil, a.logger)
			server := &http.Server{
				Addr: ":" + a.cfg.ServerPort,
				Handler: router.New(h, a.metrics, a.logger, router.Options{
					Gatherer:   a.registry,
					ReportsDir: a.cfg.ReportsDir,
					ImagesDir:  a.servedImagesDir(),
				}),
				ReadTimeout: 5 * time.Second,
				IdleTimeout: 120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("Starting server", zap.String("port", a.cfg.ServerPort))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					a.logger.Error("Could not listen on port", zap.String("port", a.cfg.ServerPort), zap.Error(err))
					return err
				}
			case <-ctx.Done():
			}

			a.logger.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&withSchedule, "schedule", false, "also run on the SCHEDULE cron expression")
	return cmd
}

// servedImagesDir is empty when images live in S3.
func (a *app) servedImagesDir() string {
	if a.cfg.AssetS3Bucket != "" {
		return ""
	}
	return a.cfg.ImagesDir
}
