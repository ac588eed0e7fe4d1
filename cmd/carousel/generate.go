package main

import (
	"fmt"

	"github.com/caroica/carousel/internal/config"
	"github.com/caroica/carousel/internal/db"
	"github.com/caroica/carousel/internal/rotation"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		configPath string
		eventID    uint
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the pairing schedule for an event",
		Long:  "Builds the full group-A x group-B cross product as upcoming sessions. Invoke at most once per event; re-invoking appends a second batch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventID == 0 {
				return fmt.Errorf("--event is required")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			gormDB, err := db.Connect(cfg.Database)
			if err != nil {
				return err
			}

			sessions, err := rotation.GenerateSchedule(gormDB, eventID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d sessions for event %d.\n", len(sessions), eventID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "carousel.yaml", "path to Carousel config file")
	cmd.Flags().UintVar(&eventID, "event", 0, "event ID to generate the schedule for")
	return cmd
}
