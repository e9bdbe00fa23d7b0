package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarlsson/ytwatch/pkg/config"
	"github.com/mkarlsson/ytwatch/pkg/firebase"
	"github.com/mkarlsson/ytwatch/pkg/models"
)

func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the remote metadata cache",
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics for the configured namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			fb := firebase.New(cfg.Cache.BaseURL, cfg.Cache.AuthKey, cfg.Cache.Namespace, newLogger())
			entries, err := fb.Namespace(cmd.Context())
			if err != nil {
				return err
			}

			st := cacheStats(entries, time.Now())
			fmt.Printf("Entries: %d\nFresh:   %d\nExpired: %d\n", st.Entries, st.Fresh, st.Expired)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ytwatch.yaml", "path to config file")
	cmd.AddCommand(statsCmd)
	return cmd
}

// cacheStats splits a namespace into fresh and expired entries.
// Incomplete entries count as expired; they will miss on the next run.
func cacheStats(entries map[string]models.CacheEntry, now time.Time) models.CacheStats {
	st := models.CacheStats{Entries: len(entries)}
	for _, entry := range entries {
		if entry.Complete() && now.Before(entry.ExpiresAt) {
			st.Fresh++
		} else {
			st.Expired++
		}
	}
	return st
}
