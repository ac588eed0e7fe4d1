package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/caroica/carousel/internal/config"
	"github.com/caroica/carousel/internal/db"
	"github.com/caroica/carousel/internal/logging"
	"github.com/caroica/carousel/internal/notify"
	"github.com/caroica/carousel/internal/reaper"
	"github.com/caroica/carousel/internal/server"
	"github.com/caroica/carousel/internal/stream"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		migrate    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the rotation API server",
		Long:  "Serves the matchmaking endpoints and runs the stale-session sweep on its configured schedule.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, migrate)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carousel.yaml", "path to Carousel config file")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run schema migration before serving")
	return cmd
}

func runServe(configPath string, migrate bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if migrate {
		if err := db.AutoMigrate(gormDB); err != nil {
			return err
		}
	}

	var publisher *stream.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = stream.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer publisher.Close()
	}

	notifier, err := notify.FromConfig(cfg.Notify)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper, err := startSweeper(ctx, gormDB, cfg, logger, notifier, publisher)
	if err != nil {
		return err
	}
	defer sweeper.Stop()

	return server.Start(ctx, server.StartOpts{
		DB:              gormDB,
		Port:            cfg.HTTP.Port,
		Logger:          logger,
		GlobalExclusion: cfg.Rotation.ExclusionScope == config.ScopeGlobal,
		Publisher:       publisher,
		Notifier:        notifier,
	})
}

// startSweeper schedules the stale-session sweep.
func startSweeper(ctx context.Context, gormDB *gorm.DB, cfg *config.Config,
	logger *zap.Logger, notifier notify.Notifier, publisher *stream.Publisher) (*cron.Cron, error) {

	slot := time.Duration(cfg.Rotation.DefaultSlotMinutes) * time.Minute

	c := cron.New()
	_, err := c.AddFunc(cfg.Rotation.SweepSchedule, func() {
		swept, err := reaper.Sweep(gormDB, slot)
		if err != nil {
			logger.Error("stale-session sweep", zap.Error(err))
			return
		}
		if swept == 0 {
			return
		}
		logger.Info("stale-session sweep", zap.Int("completed", swept))
		if publisher != nil {
			rec := stream.Record{Kind: stream.KindSessionSwept, Count: swept}
			if err := publisher.Publish(ctx, rec); err != nil {
				logger.Warn("publish sweep record", zap.Error(err))
			}
		}
		if notifier != nil {
			text := fmt.Sprintf("carousel: completed %d stale busy session(s)", swept)
			if err := notifier.Post(text); err != nil {
				logger.Warn("notify sweep", zap.Error(err))
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule sweep %q: %w", cfg.Rotation.SweepSchedule, err)
	}
	c.Start()
	return c, nil
}
