package enrich

import (
	"time"

	"github.com/mkarlsson/ytwatch/pkg/models"
)

// fresh reports whether a cached entry can be served without a refetch.
// An absent or partially written entry is never trusted, and expiry is
// inclusive: an entry expiring exactly at now must be refetched.
func fresh(entry *models.CacheEntry, now time.Time) bool {
	if entry == nil || !entry.Complete() {
		return false
	}
	return now.Before(entry.ExpiresAt)
}
