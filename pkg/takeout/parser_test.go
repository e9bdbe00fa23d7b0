package takeout

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<!DOCTYPE html>
<html><body>
<div class="content-cell">
  Watched <a href="https://www.youtube.com/watch?v=f3DfJxvkN-8">AirPods Pro 2 Review</a><br>
  <a href="https://www.youtube.com/channel/UCBJycsmduvYEL83R_U4JriQ">Marques Brownlee</a>
</div>
<div class="content-cell">
  Watched <a href="https://www.youtube.com/watch?v=h0QLtup0CWQ&amp;t=120">Active Directory Tutorial</a>
</div>
<div class="content-cell">
  Watched <a href="https://www.youtube.com/watch?v=f3DfJxvkN-8">AirPods Pro 2 Review</a>
</div>
</body></html>`

func TestParseHTML(t *testing.T) {
	events, err := Parse(strings.NewReader(sampleHTML))
	require.NoError(t, err)

	// Channel links are ignored; repeat watches are kept as separate events.
	require.Len(t, events, 3)
	assert.Equal(t, "f3DfJxvkN-8", events[0].VideoID)
	assert.Equal(t, "h0QLtup0CWQ", events[1].VideoID)
	assert.Equal(t, "f3DfJxvkN-8", events[2].VideoID)
	assert.True(t, events[0].WatchedAt.IsZero())
}

func TestParseJSON(t *testing.T) {
	sample := `[
		{"header":"YouTube","title":"Watched AirPods Pro 2 Review","titleUrl":"https://www.youtube.com/watch?v=f3DfJxvkN-8","time":"2026-02-11T19:04:30.123Z"},
		{"header":"YouTube","title":"Watched a video that has been removed","time":"2026-02-10T08:00:00Z"},
		{"header":"YouTube","title":"Watched Uninstall Tutorial","titleUrl":"https://www.youtube.com/watch?v=xi_VkbbZqpA","time":"2026-02-09T21:45:00Z"}
	]`

	events, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	require.Len(t, events, 2, "records without a titleUrl are skipped")
	assert.Equal(t, "f3DfJxvkN-8", events[0].VideoID)
	assert.Equal(t, time.Date(2026, 2, 11, 19, 4, 30, 123000000, time.UTC), events[0].WatchedAt.UTC())
	assert.Equal(t, "xi_VkbbZqpA", events[1].VideoID)
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse(strings.NewReader(`[{"titleUrl": "bro`))
	require.Error(t, err)
}

func TestVideoID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=abc123", "abc123", true},
		{"https://www.youtube.com/watch?v=abc123&t=42", "abc123", true},
		{"https://www.youtube.com/watch?v=abc123#comments", "abc123", true},
		{"https://www.youtube.com/channel/UC123", "", false},
		{"https://www.youtube.com/watch?v=", "", false},
	}
	for _, c := range cases {
		got, ok := videoID(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("videoID(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}
