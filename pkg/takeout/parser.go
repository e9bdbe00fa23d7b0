// Package takeout extracts watch events from a Google Takeout
// watch-history export, in either the HTML or the JSON variant.
package takeout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mkarlsson/ytwatch/pkg/models"
)

// Parse reads a watch-history export and returns its watch events in
// document order. The format is sniffed from the first non-space byte:
// a '[' means the JSON export, anything else is treated as HTML.
func Parse(r io.Reader) ([]models.WatchEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return parseJSON(trimmed)
	}
	return parseHTML(data)
}

// parseHTML walks the document and collects every anchor whose href
// points at a watch URL. Takeout HTML carries no usable per-event
// timestamps in the anchors, so WatchedAt is left zero.
func parseHTML(data []byte) ([]models.WatchEvent, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse history html: %w", err)
	}

	var events []models.WatchEvent
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if id, ok := videoID(attr.Val); ok {
					events = append(events, models.WatchEvent{VideoID: id})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return events, nil
}

type jsonRecord struct {
	TitleURL string    `json:"titleUrl"`
	Time     time.Time `json:"time"`
}

// parseJSON reads the JSON export. Records without a titleUrl (removed
// or private videos) are skipped.
func parseJSON(data []byte) ([]models.WatchEvent, error) {
	var records []jsonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse history json: %w", err)
	}

	events := make([]models.WatchEvent, 0, len(records))
	for _, rec := range records {
		id, ok := videoID(rec.TitleURL)
		if !ok {
			continue
		}
		events = append(events, models.WatchEvent{VideoID: id, WatchedAt: rec.Time})
	}
	return events, nil
}

// videoID extracts the video ID from a watch URL.
func videoID(raw string) (string, bool) {
	_, after, found := strings.Cut(raw, "watch?v=")
	if !found {
		return "", false
	}
	if i := strings.IndexAny(after, "&#"); i >= 0 {
		after = after[:i]
	}
	return after, after != ""
}
