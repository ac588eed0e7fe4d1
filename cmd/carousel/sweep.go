package main

import (
	"fmt"
	"time"

	"github.com/caroica/carousel/internal/config"
	"github.com/caroica/carousel/internal/db"
	"github.com/caroica/carousel/internal/reaper"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Complete stale busy sessions once",
		Long:  "One-shot version of the sweep the server runs on its cron schedule. Completes busy sessions older than their event's slot length.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			gormDB, err := db.Connect(cfg.Database)
			if err != nil {
				return err
			}

			slot := time.Duration(cfg.Rotation.DefaultSlotMinutes) * time.Minute
			swept, err := reaper.Sweep(gormDB, slot)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Completed %d stale session(s).\n", swept)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carousel.yaml", "path to Carousel config file")
	return cmd
}
