// Package youtube is a typed client for the two YouTube Data API v3
// calls the enrichment pipeline needs: videos.list for snippet and
// duration fields, and videoCategories.list to resolve category IDs to
// display names.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkarlsson/ytwatch/pkg/isodur"
	"github.com/mkarlsson/ytwatch/pkg/models"
)

// Client talks to the YouTube Data API with a developer key.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	log     zerolog.Logger
}

// New creates a Client. baseURL is the API root, normally
// https://www.googleapis.com/youtube/v3.
func New(baseURL, apiKey string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}
}

// APIError is a whole-call failure from the API, distinguishable from
// an ID simply missing from a result list.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube api: status %d: %s", e.StatusCode, e.Body)
}

type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID             string          `json:"id"`
	Snippet        *videoSnippet   `json:"snippet"`
	ContentDetails *contentDetails `json:"contentDetails"`
}

type videoSnippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	CategoryID   string `json:"categoryId"`
}

type contentDetails struct {
	Duration string `json:"duration"`
}

type categoryListResponse struct {
	Items []categoryItem `json:"items"`
}

type categoryItem struct {
	ID      string           `json:"id"`
	Snippet *categorySnippet `json:"snippet"`
}

type categorySnippet struct {
	Title string `json:"title"`
}

// FetchMetadata looks up metadata for one batch of video IDs. IDs the
// catalog does not recognise are absent from the result; that is not an
// error. Items missing a required field or carrying an unparseable
// duration are dropped with a warning. Category IDs from the first
// response are resolved to display names with a second call.
func (c *Client) FetchMetadata(ctx context.Context, ids []string) (map[string]models.VideoMetadata, error) {
	result := make(map[string]models.VideoMetadata, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	items, err := c.listVideos(ctx, ids)
	if err != nil {
		return nil, err
	}

	categories, err := c.resolveCategories(ctx, items)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		meta, ok := c.buildMetadata(item, categories)
		if !ok {
			continue
		}
		result[item.ID] = meta
	}
	return result, nil
}

// buildMetadata validates one API item and converts it. Incomplete or
// malformed items are dropped, never returned partially filled.
func (c *Client) buildMetadata(item videoItem, categories map[string]string) (models.VideoMetadata, bool) {
	if item.Snippet == nil || item.ContentDetails == nil ||
		item.Snippet.Title == "" || item.Snippet.ChannelTitle == "" {
		c.log.Warn().Str("video_id", item.ID).Msg("dropping catalog item with missing fields")
		return models.VideoMetadata{}, false
	}

	seconds, err := isodur.Parse(item.ContentDetails.Duration)
	if err != nil {
		c.log.Warn().Str("video_id", item.ID).Str("duration", item.ContentDetails.Duration).
			Err(err).Msg("dropping catalog item with unparseable duration")
		return models.VideoMetadata{}, false
	}

	category, ok := categories[item.Snippet.CategoryID]
	if !ok {
		c.log.Warn().Str("video_id", item.ID).Str("category_id", item.Snippet.CategoryID).
			Msg("dropping catalog item with unresolved category")
		return models.VideoMetadata{}, false
	}

	return models.VideoMetadata{
		Title:           item.Snippet.Title,
		DurationSeconds: seconds,
		Channel:         item.Snippet.ChannelTitle,
		Category:        category,
	}, true
}

func (c *Client) listVideos(ctx context.Context, ids []string) ([]videoItem, error) {
	params := url.Values{
		"part": {"snippet,contentDetails"},
		"id":   {strings.Join(ids, ",")},
		"key":  {c.apiKey},
	}
	var resp videoListResponse
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// resolveCategories maps the distinct category IDs seen in a videos
// response to their display names. Unknown IDs are simply absent.
func (c *Client) resolveCategories(ctx context.Context, items []videoItem) (map[string]string, error) {
	distinct := make(map[string]struct{})
	for _, item := range items {
		if item.Snippet != nil && item.Snippet.CategoryID != "" {
			distinct[item.Snippet.CategoryID] = struct{}{}
		}
	}
	names := make(map[string]string, len(distinct))
	if len(distinct) == 0 {
		return names, nil
	}

	ids := make([]string, 0, len(distinct))
	for id := range distinct {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	params := url.Values{
		"part": {"snippet"},
		"id":   {strings.Join(ids, ",")},
		"key":  {c.apiKey},
	}
	var resp categoryListResponse
	if err := c.get(ctx, "/videoCategories", params, &resp); err != nil {
		return nil, err
	}

	for _, item := range resp.Items {
		if item.Snippet != nil && item.Snippet.Title != "" {
			names[item.ID] = item.Snippet.Title
		}
	}
	return names, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
