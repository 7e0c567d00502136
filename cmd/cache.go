package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/plimantour/rai-agent/core/cache"
	"github.com/plimantour/rai-agent/core/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the completion cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many completions are cached",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close()

		count, err := store.Count()
		if err != nil {
			return err
		}
		fmt.Printf("%d cached completions in %s\n", count, cfg.Cache.Path)
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every cached completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cfg, err := openCache()
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.Purge()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d cached completions from %s\n", removed, cfg.Cache.Path)
		return nil
	},
}

// openCache opens just the store without the rest of the runtime, so the
// cache commands work without provider credentials.
func openCache() (*cache.SQLiteStore, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store, err := cache.NewSQLiteStore(cfg.Cache.Path, cfg.Cache.MemoryEntries, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
