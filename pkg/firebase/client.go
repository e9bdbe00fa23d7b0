// Package firebase is a thin client for a Firebase Realtime-Database
// style key-value store holding cached video metadata. Entries live
// under one namespace per user: {base}/{namespace}/{videoID}.json.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkarlsson/ytwatch/pkg/models"
)

// Client reads and writes cache entries in the remote store.
type Client struct {
	baseURL   string
	authKey   string
	namespace string
	httpc     *http.Client
	log       zerolog.Logger
}

// New creates a Client for the given user namespace. The namespace may
// be an email address; characters the store rejects in keys are
// replaced with dashes.
func New(baseURL, authKey, namespace string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authKey:   authKey,
		namespace: sanitizeKey(namespace),
		httpc:     &http.Client{Timeout: 30 * time.Second},
		log:       logger,
	}
}

// sanitizeKey rewrites a namespace into a legal store key. Firebase
// paths may not contain '.', '#', '$', '[' or ']'.
func sanitizeKey(s string) string {
	return strings.NewReplacer("@", "-", ".", "-", "#", "-", "$", "-", "[", "-", "]", "-").Replace(s)
}

// WriteError reports a failed write for a single entry, carrying the
// HTTP status and response body from the store.
type WriteError struct {
	ID         string
	StatusCode int
	Body       string
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cache write for %s: status %d: %s", e.ID, e.StatusCode, e.Body)
}

// Namespace reads every cache entry stored under the user namespace in
// a single call. An empty namespace yields an empty, non-nil map.
// Entries that no longer unmarshal are skipped with a warning; they
// will read as misses and be overwritten on the next write-through.
func (c *Client) Namespace(ctx context.Context) (map[string]models.CacheEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.entryURL(""), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read cache namespace: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("read cache namespace: status %d: %s", resp.StatusCode, body)
	}

	entries := make(map[string]models.CacheEntry)
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return entries, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode cache namespace: %w", err)
	}
	for id, msg := range raw {
		var entry models.CacheEntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			c.log.Warn().Str("video_id", id).Err(err).Msg("skipping undecodable cache entry")
			continue
		}
		entries[id] = entry
	}
	return entries, nil
}

// Put stores one entry, overwriting any existing value at the key.
// Non-2xx responses are returned as a *WriteError.
func (c *Client) Put(ctx context.Context, id string, entry models.CacheEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.entryURL(id), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("write cache entry %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &WriteError{ID: id, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// entryURL builds the REST path for one entry, or for the whole
// namespace when id is empty.
func (c *Client) entryURL(id string) string {
	path := c.namespace
	if id != "" {
		path += "/" + url.PathEscape(id)
	}
	return fmt.Sprintf("%s/%s.json?auth=%s", c.baseURL, path, url.QueryEscape(c.authKey))
}
