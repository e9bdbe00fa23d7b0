package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mkarlsson/ytwatch/pkg/config"
	"github.com/mkarlsson/ytwatch/pkg/enrich"
	"github.com/mkarlsson/ytwatch/pkg/firebase"
	"github.com/mkarlsson/ytwatch/pkg/history"
	"github.com/mkarlsson/ytwatch/pkg/models"
	"github.com/mkarlsson/ytwatch/pkg/stats"
	"github.com/mkarlsson/ytwatch/pkg/youtube"
)

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show total watch time and most-watched videos, channels and categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := newLogger()

			st, err := history.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			ids, err := st.VideoIDs(ctx)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("No watch history recorded. Run `ytwatch ingest` first.")
				return nil
			}
			counts, err := st.Counts(ctx)
			if err != nil {
				return err
			}
			since, err := st.FirstWatched(ctx)
			if err != nil {
				return err
			}

			fb := firebase.New(cfg.Cache.BaseURL, cfg.Cache.AuthKey, cfg.Cache.Namespace, logger)
			yt := youtube.New(cfg.YouTube.BaseURL, cfg.YouTube.APIKey, logger)
			enricher := enrich.New(fb, yt, cfg.Cache.TTL, cfg.YouTube.BatchSize, logger)

			// Drive enrichment in chunks. A failed chunk is skipped so the
			// other chunks' results survive a partial outage.
			meta := make(map[string]models.VideoMetadata, len(ids))
			chunkSize := cfg.YouTube.BatchSize
			if chunkSize <= 0 {
				chunkSize = enrich.DefaultBatchSize
			}
			failed := 0
			for start := 0; start < len(ids); start += chunkSize {
				end := min(start+chunkSize, len(ids))
				chunk, err := enricher.Enrich(ctx, ids[start:end])
				if err != nil {
					failed++
					logger.Warn().Err(err).Int("from", start).Int("to", end).
						Msg("skipping chunk after enrichment failure")
					continue
				}
				for id, m := range chunk {
					meta[id] = m
				}
				logger.Debug().Int("processed", end).Int("total", len(ids)).Msg("watch history processed")
			}
			if failed > 0 {
				logger.Warn().Int("chunks", failed).Msg("some chunks could not be enriched; statistics are partial")
			}

			report := stats.Build(counts, meta, stats.Limits{
				Videos:     cfg.Report.TopVideos,
				Channels:   cfg.Report.TopChannels,
				Categories: cfg.Report.TopCategories,
			})
			if !since.IsZero() {
				fmt.Printf("Watch history since %s\n", since.Format("2006-01-02"))
			}
			printReport(report, cfg.Report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ytwatch.yaml", "path to config file")
	return cmd
}

func printReport(report stats.Report, cfg config.ReportConfig) {
	fmt.Printf("Total watch time: %.1f minutes\n", report.TotalWatchTime.Minutes())
	fmt.Printf("Videos watched:   %d (%d with metadata)\n", report.TotalViews, report.EnrichedVideos)

	printTop := func(title string, entries []stats.Entry) {
		if len(entries) == 0 {
			return
		}
		fmt.Printf("\n%s:\n", title)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tNAME\tVIEWS")
		for i, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, e.Name, e.Views)
		}
		w.Flush()
	}

	printTop(fmt.Sprintf("Top %d videos", cfg.TopVideos), report.TopVideos)
	printTop(fmt.Sprintf("Top %d channels", cfg.TopChannels), report.TopChannels)
	printTop(fmt.Sprintf("Top %d categories", cfg.TopCategories), report.TopCategories)
}
