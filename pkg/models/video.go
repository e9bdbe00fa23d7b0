package models

import "time"

// VideoMetadata is the enrichment data for one watched video. A value of
// this type is always fully populated; lookups that cannot supply every
// field never produce one.
type VideoMetadata struct {
	Title           string `json:"title"`
	DurationSeconds int64  `json:"duration_seconds"`
	Channel         string `json:"channel"`
	Category        string `json:"category"`
}

// CacheEntry is the persisted form of VideoMetadata in the remote cache.
// Duration is stored as ISO-8601 text, matching the catalog wire format,
// and ExpiresAt marks the instant the entry stops being servable.
type CacheEntry struct {
	Title     string    `json:"title"`
	Duration  string    `json:"duration"`
	Channel   string    `json:"channel"`
	Category  string    `json:"category"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Complete reports whether every required field of the entry is
// populated. A partially written entry must never be served.
func (e CacheEntry) Complete() bool {
	return e.Title != "" && e.Duration != "" && e.Channel != "" &&
		e.Category != "" && !e.ExpiresAt.IsZero()
}

// WatchEvent is one entry of the user's watch history. WatchedAt is zero
// for export formats that carry no timestamp.
type WatchEvent struct {
	VideoID   string    `json:"video_id"`
	WatchedAt time.Time `json:"watched_at,omitempty"`
}

// CacheStats summarises the state of the remote cache namespace.
type CacheStats struct {
	Entries int `json:"entries"`
	Fresh   int `json:"fresh"`
	Expired int `json:"expired"`
}
