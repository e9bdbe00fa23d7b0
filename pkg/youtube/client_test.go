package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves canned videos.list and videoCategories.list responses.
func fakeAPI(t *testing.T, videosJSON, categoriesJSON string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		switch r.URL.Path {
		case "/videos":
			fmt.Fprint(w, videosJSON)
		case "/videoCategories":
			fmt.Fprint(w, categoriesJSON)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
}

const musicCategories = `{"items":[{"id":"10","snippet":{"title":"Music"}}]}`

func TestFetchMetadata(t *testing.T) {
	videos := `{"items":[
		{"id":"abc","snippet":{"title":"First","channelTitle":"Chan A","categoryId":"10"},"contentDetails":{"duration":"PT4M13S"}},
		{"id":"def","snippet":{"title":"Second","channelTitle":"Chan B","categoryId":"10"},"contentDetails":{"duration":"PT1H2M5S"}}
	]}`
	srv := fakeAPI(t, videos, musicCategories)
	defer srv.Close()

	c := New(srv.URL, "test-key", zerolog.Nop())
	got, err := c.FetchMetadata(context.Background(), []string{"abc", "def"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "First", got["abc"].Title)
	assert.Equal(t, int64(253), got["abc"].DurationSeconds)
	assert.Equal(t, "Chan A", got["abc"].Channel)
	assert.Equal(t, "Music", got["abc"].Category)
	assert.Equal(t, int64(3725), got["def"].DurationSeconds)
}

func TestFetchMetadataSparse(t *testing.T) {
	// The catalog only recognises A and C out of [A, B, C].
	videos := `{"items":[
		{"id":"A","snippet":{"title":"First","channelTitle":"Chan","categoryId":"10"},"contentDetails":{"duration":"PT10S"}},
		{"id":"C","snippet":{"title":"Third","channelTitle":"Chan","categoryId":"10"},"contentDetails":{"duration":"PT20S"}}
	]}`
	srv := fakeAPI(t, videos, musicCategories)
	defer srv.Close()

	c := New(srv.URL, "test-key", zerolog.Nop())
	got, err := c.FetchMetadata(context.Background(), []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Contains(t, got, "A")
	assert.Contains(t, got, "C")
	assert.NotContains(t, got, "B")
}

func TestFetchMetadataDropsIncompleteItems(t *testing.T) {
	videos := `{"items":[
		{"id":"ok","snippet":{"title":"Fine","channelTitle":"Chan","categoryId":"10"},"contentDetails":{"duration":"PT10S"}},
		{"id":"badDur","snippet":{"title":"Bad","channelTitle":"Chan","categoryId":"10"},"contentDetails":{"duration":"ten minutes"}},
		{"id":"noTitle","snippet":{"title":"","channelTitle":"Chan","categoryId":"10"},"contentDetails":{"duration":"PT10S"}},
		{"id":"noDetails","snippet":{"title":"X","channelTitle":"Chan","categoryId":"10"}},
		{"id":"badCat","snippet":{"title":"Y","channelTitle":"Chan","categoryId":"99"},"contentDetails":{"duration":"PT10S"}}
	]}`
	srv := fakeAPI(t, videos, musicCategories)
	defer srv.Close()

	c := New(srv.URL, "test-key", zerolog.Nop())
	got, err := c.FetchMetadata(context.Background(), []string{"ok", "badDur", "noTitle", "noDetails", "badCat"})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Contains(t, got, "ok")
}

func TestFetchMetadataBatchesIDs(t *testing.T) {
	var gotIDs string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/videos" {
			gotIDs = r.URL.Query().Get("id")
		}
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", zerolog.Nop())
	_, err := c.FetchMetadata(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, strings.Split(gotIDs, ","))
}

func TestFetchMetadataAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"message":"quotaExceeded"}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key", zerolog.Nop())
	_, err := c.FetchMetadata(context.Background(), []string{"abc"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "quotaExceeded")
}

func TestFetchMetadataEmptyBatch(t *testing.T) {
	c := New("http://unreachable.invalid", "test-key", zerolog.Nop())
	got, err := c.FetchMetadata(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
