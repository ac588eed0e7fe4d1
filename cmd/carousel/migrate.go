package main

import (
	"fmt"

	"github.com/caroica/carousel/internal/config"
	"github.com/caroica/carousel/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			gormDB, err := db.Connect(cfg.Database)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(gormDB); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Schema migrated.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carousel.yaml", "path to Carousel config file")
	return cmd
}
