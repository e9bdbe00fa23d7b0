package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkarlsson/ytwatch/pkg/config"
	"github.com/mkarlsson/ytwatch/pkg/history"
	"github.com/mkarlsson/ytwatch/pkg/takeout"
)

func newIngestCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ingest <watch-history file>",
		Short: "Record watch events from a Takeout export (HTML or JSON)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open history file: %w", err)
			}
			defer f.Close()

			events, err := takeout.Parse(f)
			if err != nil {
				return err
			}

			st, err := history.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Add(cmd.Context(), events); err != nil {
				return err
			}

			distinct := make(map[string]struct{}, len(events))
			for _, ev := range events {
				distinct[ev.VideoID] = struct{}{}
			}
			fmt.Printf("Recorded %d watch events (%d distinct videos).\n", len(events), len(distinct))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ytwatch.yaml", "path to config file")
	return cmd
}
