// Package stats computes aggregate viewing statistics from watch counts
// and enriched metadata. Pure data transformation, no I/O.
package stats

import (
	"sort"
	"time"

	"github.com/mkarlsson/ytwatch/pkg/models"
)

// Entry is one row of a top-N table.
type Entry struct {
	Name  string
	Views int64
}

// Report is the aggregate view of a watch history.
type Report struct {
	// TotalWatchTime sums duration×views over every enriched video.
	TotalWatchTime time.Duration
	// TotalViews counts every watch event, enriched or not.
	TotalViews int64
	// EnrichedVideos counts distinct videos with metadata.
	EnrichedVideos int
	TopVideos      []Entry
	TopChannels    []Entry
	TopCategories  []Entry
}

// Build computes the report. Videos absent from meta still count toward
// TotalViews but contribute nothing to watch time or the tables.
func Build(counts map[string]int64, meta map[string]models.VideoMetadata, cfg Limits) Report {
	var report Report
	videoViews := make(map[string]int64, len(meta))
	channelViews := make(map[string]int64)
	categoryViews := make(map[string]int64)

	for id, views := range counts {
		report.TotalViews += views
		m, ok := meta[id]
		if !ok {
			continue
		}
		report.TotalWatchTime += time.Duration(m.DurationSeconds) * time.Second * time.Duration(views)
		videoViews[m.Title] += views
		channelViews[m.Channel] += views
		categoryViews[m.Category] += views
	}

	report.EnrichedVideos = len(videoViews)
	report.TopVideos = topN(videoViews, cfg.Videos)
	report.TopChannels = topN(channelViews, cfg.Channels)
	report.TopCategories = topN(categoryViews, cfg.Categories)
	return report
}

// Limits caps the length of each top-N table. A non-positive limit
// keeps every row.
type Limits struct {
	Videos     int
	Channels   int
	Categories int
}

// topN sorts by views descending, breaking ties by name for stable
// output, and truncates to n rows.
func topN(views map[string]int64, n int) []Entry {
	entries := make([]Entry, 0, len(views))
	for name, v := range views {
		entries = append(entries, Entry{Name: name, Views: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Views != entries[j].Views {
			return entries[i].Views > entries[j].Views
		}
		return entries[i].Name < entries[j].Name
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
