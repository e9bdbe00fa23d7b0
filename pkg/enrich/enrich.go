// Package enrich maps batches of watched-video IDs to full metadata,
// serving what it can from the remote cache and fetching the rest from
// the catalog with write-through.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mkarlsson/ytwatch/pkg/isodur"
	"github.com/mkarlsson/ytwatch/pkg/models"
)

// DefaultBatchSize is the largest ID batch sent to the catalog in one
// call, matching the videos.list limit.
const DefaultBatchSize = 50

// CacheStore is the remote key-value store holding cached metadata for
// one user namespace.
type CacheStore interface {
	// Namespace reads every entry under the namespace in one call.
	Namespace(ctx context.Context) (map[string]models.CacheEntry, error)
	// Put overwrites the entry for one video ID.
	Put(ctx context.Context, id string, entry models.CacheEntry) error
}

// Catalog looks up video metadata in batches. IDs the catalog does not
// recognise are absent from the result.
type Catalog interface {
	FetchMetadata(ctx context.Context, ids []string) (map[string]models.VideoMetadata, error)
}

// Enricher coordinates cache reads, catalog fetches and write-through.
// It holds no state between calls; every Enrich re-derives hit/miss
// status from what the store currently reports.
type Enricher struct {
	cache     CacheStore
	catalog   Catalog
	ttl       time.Duration
	batchSize int
	log       zerolog.Logger

	now func() time.Time
}

// New creates an Enricher. Fetched entries are cached with the given
// TTL; batchSize caps the IDs per catalog call and falls back to
// DefaultBatchSize when non-positive.
func New(cache CacheStore, catalog Catalog, ttl time.Duration, batchSize int, logger zerolog.Logger) *Enricher {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Enricher{
		cache:     cache,
		catalog:   catalog,
		ttl:       ttl,
		batchSize: batchSize,
		log:       logger,
		now:       time.Now,
	}
}

// Enrich maps each distinct ID to its metadata. IDs with neither a
// fresh cache entry nor a successful fetch are omitted, never reported
// as errors. A cache-read or catalog failure fails the whole call;
// cache-write failures only log, the freshly fetched record is still
// returned.
func (e *Enricher) Enrich(ctx context.Context, ids []string) (map[string]models.VideoMetadata, error) {
	distinct := dedupe(ids)
	result := make(map[string]models.VideoMetadata, len(distinct))
	if len(distinct) == 0 {
		return result, nil
	}

	cached, err := e.cache.Namespace(ctx)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}

	// One clock capture per call, so an entry is a hit or a miss for
	// the whole operation.
	now := e.now()

	var misses []string
	for _, id := range distinct {
		entry, ok := cached[id]
		if !ok || !fresh(&entry, now) {
			misses = append(misses, id)
			continue
		}
		meta, err := entryMetadata(entry)
		if err != nil {
			e.log.Warn().Str("video_id", id).Err(err).Msg("refetching video with malformed cache entry")
			misses = append(misses, id)
			continue
		}
		result[id] = meta
	}

	for start := 0; start < len(misses); start += e.batchSize {
		end := min(start+e.batchSize, len(misses))
		fetched, err := e.catalog.FetchMetadata(ctx, misses[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetch metadata: %w", err)
		}
		e.writeThrough(ctx, fetched, now)
		for id, meta := range fetched {
			result[id] = meta
		}
	}
	return result, nil
}

// writeThrough caches freshly fetched records. Writes target disjoint
// keys and run concurrently; each failure is logged with the offending
// ID and never removes the record from the current result.
func (e *Enricher) writeThrough(ctx context.Context, fetched map[string]models.VideoMetadata, now time.Time) {
	expires := now.Add(e.ttl).UTC()

	g, ctx := errgroup.WithContext(ctx)
	for id, meta := range fetched {
		id, meta := id, meta
		g.Go(func() error {
			entry := models.CacheEntry{
				Title:     meta.Title,
				Duration:  isodur.Format(meta.DurationSeconds),
				Channel:   meta.Channel,
				Category:  meta.Category,
				ExpiresAt: expires,
			}
			if err := e.cache.Put(ctx, id, entry); err != nil {
				e.log.Warn().Str("video_id", id).Err(err).Msg("cache write failed")
			}
			return nil
		})
	}
	_ = g.Wait()
}

// entryMetadata converts a stored cache entry back to metadata.
func entryMetadata(entry models.CacheEntry) (models.VideoMetadata, error) {
	seconds, err := isodur.Parse(entry.Duration)
	if err != nil {
		return models.VideoMetadata{}, fmt.Errorf("cached duration %q: %w", entry.Duration, err)
	}
	return models.VideoMetadata{
		Title:           entry.Title,
		DurationSeconds: seconds,
		Channel:         entry.Channel,
		Category:        entry.Category,
	}, nil
}

// dedupe returns the distinct IDs in first-seen order, skipping blanks.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
