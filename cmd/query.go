package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LanderU/rmf-core/config"
	"github.com/LanderU/rmf-core/core/changelog"
	"github.com/LanderU/rmf-core/core/schedule"
)

var queryMap string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List the participants currently held by the configured changelog",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryMap, "map", "", "restrict to a single map name")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

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
		if cerr := store.Close(); cerr != nil {
			if _, ferr := fmt.Fprintf(cmd.ErrOrStderr(), "error while closing store: %v\n", cerr); ferr != nil {
				fmt.Println("failed to write to stderr:", ferr)
			}
		}
	}()

	db, err := schedule.Replay(context.Background(), store)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	q := schedule.QueryEverything()
	if queryMap != "" {
		q = q.WithMap(queryMap)
	}
	patch, err := db.Changes(q)
	if err != nil {
		return fmt.Errorf("changes: %w", err)
	}
	for _, c := range patch.Changes {
		fmt.Printf("entry=%d map=%s mode=%s version=%d\n", c.TargetID, c.MapName, c.Mode, c.Version)
	}
	return nil
}
