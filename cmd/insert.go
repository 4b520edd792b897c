package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/LanderU/rmf-core/config"
	"github.com/LanderU/rmf-core/core/changelog"
	"github.com/LanderU/rmf-core/core/schedule"
	"github.com/LanderU/rmf-core/core/trajectory"
	"github.com/LanderU/rmf-core/infra/logger"
)

var insertMap string

var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Insert a test two-waypoint trajectory into the configured changelog",
	RunE:  insertTrajectory,
}

func init() {
	insertCmd.Flags().StringVar(&insertMap, "map", "level1", "map name to insert the test trajectory on")
	rootCmd.AddCommand(insertCmd)
}

func insertTrajectory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("insert-command")

	var store changelog.Store
	switch cfg.Changelog.Backend {
	case "sqlite":
		store, err = changelog.NewSQLiteStore(cfg.Changelog.Path)
	default:
		store, err = changelog.NewRotatingJSONLStore(cfg.Changelog.Path, cfg.Changelog.MaxSizeMB, cfg.Changelog.MaxBackups, cfg.Changelog.MaxAgeDays)
	}
	if err != nil {
		return fmt.Errorf("changelog store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Errorf("store close: %v", err)
		}
	}()

	db, err := schedule.Replay(context.Background(), store)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	traj := trajectory.New(insertMap)
	now := time.Now()
	traj.Insert(now, nil, trajectory.Pose{X: 0, Y: 0}, trajectory.Pose{})
	traj.Insert(now.Add(time.Minute), nil, trajectory.Pose{X: 10, Y: 0}, trajectory.Pose{X: 1, Y: 0})

	version, err := db.Insert(traj)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	logg.Infof("inserted test trajectory on map %s at version %d", insertMap, version)
	return nil
}
