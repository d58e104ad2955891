package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"availability_watcher/internal/app"
	"availability_watcher/internal/infra/blobstore"
	"availability_watcher/internal/infra/config"
	"availability_watcher/internal/infra/logger"
	"availability_watcher/internal/infra/scheduler"
	"availability_watcher/internal/infra/schedulingapi"
	"availability_watcher/internal/infra/statestore"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a single availability check and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svc, closeFn, err := buildWatchService(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			_, err = svc.Run(ctx, app.Trigger{Source: "manual"})
			return err
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run availability checks on the configured cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := scheduler.ValidateSpec(cfg.CronSpec); err != nil {
				return &config.ConfigError{Key: "CRON_SPEC", Reason: err.Error()}
			}

			svc, closeFn, err := buildWatchService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			watchScheduler := scheduler.NewWatchScheduler(
				svc,
				logger.Component("scheduler"),
				cfg.CronSpec,
				cfg.Location,
				cfg.RunOnStartup,
				cfg.PastDueTolerance,
			)
			if err := watchScheduler.Start(); err != nil {
				return err
			}

			// Graceful shutdown
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit // Block until a signal is received

			logger.Log.Info("Shutting down...")
			watchScheduler.Stop()
			logger.Log.Info("Shut down gracefully.")
			return nil
		},
	}
}

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	logger.Log.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"backend":     cfg.Storage.Backend,
		"container":   cfg.Storage.Container,
		"blob":        cfg.Storage.BlobName,
		"timezone":    cfg.Location.String(),
	}).Info("Configuration loaded.")
	return cfg, nil
}

func buildWatchService(ctx context.Context, cfg *config.AppConfig) (*app.WatchServiceImpl, func() error, error) {
	blob, closeFn, err := blobstore.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open state storage: %w", err)
	}
	logger.Log.WithField("location", blob.Location()).Info("State storage initialized.")

	source := schedulingapi.NewClient(cfg.Source.URL, cfg.Source.BusinessID, cfg.Source.ServiceProviderID, cfg.Source.Timeout)

	svc := app.NewWatchServiceImpl(
		statestore.NewBlobStateStore(blob),
		source,
		logger.Component("watch"),
		cfg.Location,
	)
	return svc, closeFn, nil
}
