package reddit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tipstream/harvester/internal/platforms"
	"github.com/tipstream/harvester/pkg/config"
)

const listingPayload = `{
  "data": {
    "children": [
      {
        "kind": "t3",
        "data": {
          "id": "kxq9ap",
          "author": "alice",
          "author_fullname": "t2_9aaa",
          "title": "Interesting post",
          "selftext": "body text",
          "media_metadata": {"x": {}},
          "created_utc": 1626375600
        }
      },
      {
        "kind": "t1",
        "data": {
          "id": "h0com1",
          "author": "bob",
          "author_fullname": "t2_9bbb",
          "created_utc": 1626375700
        }
      }
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(&config.RedditConfig{BaseURL: server.URL, UserAgent: "harvester-test"}, 10)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestSearchRecentNormalizes(t *testing.T) {
	var gotQuery, gotSort, gotUA string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotSort = r.URL.Query().Get("sort")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(listingPayload))
	})

	candidates, err := client.SearchRecent(context.Background(), "crypto")
	if err != nil {
		t.Fatalf("SearchRecent failed: %v", err)
	}

	if gotQuery != "crypto" || gotSort != "new" {
		t.Errorf("query = %q sort = %q", gotQuery, gotSort)
	}
	if gotUA != "harvester-test" {
		t.Errorf("user agent = %q", gotUA)
	}

	// Only the t3 post survives; the t1 comment is filtered out.
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if c.Platform != platforms.Reddit || c.TextID != "kxq9ap" {
		t.Errorf("candidate identity = %s/%s", c.Platform, c.TextID)
	}
	if c.Author.Username != "alice" || c.Author.AccountID != "t2_9aaa" {
		t.Errorf("author = %+v", c.Author)
	}
	if c.Title != "Interesting post" || c.Text != "body text" {
		t.Errorf("content = %q / %q", c.Title, c.Text)
	}
	if !c.HasMedia {
		t.Error("media_metadata not detected")
	}
	if c.Link != "https://www.reddit.com/kxq9ap" {
		t.Errorf("link = %q", c.Link)
	}
	if c.CreatedAt.Unix() != 1626375600 {
		t.Errorf("created_at = %v", c.CreatedAt)
	}
	if len(c.Tags) != 0 {
		t.Errorf("reddit candidates carry no tag hints, got %v", c.Tags)
	}
}

func TestFetchTimeline(t *testing.T) {
	var gotPath, gotBefore string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBefore = r.URL.Query().Get("before")
		w.Write([]byte(listingPayload))
	})

	author := platforms.Identity{Username: "alice", AccountID: "t2_9aaa"}
	candidates, err := client.FetchTimeline(context.Background(), author, "kxq000")
	if err != nil {
		t.Fatalf("FetchTimeline failed: %v", err)
	}

	if gotPath != "/u/alice.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBefore != "t3_kxq000" {
		t.Errorf("before = %q, want fullname-prefixed watermark", gotBefore)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
}

func TestServerErrorSurfacesAsFetchError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.SearchRecent(context.Background(), "crypto")
	var fetchErr *platforms.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *platforms.FetchError, got %T", err)
	}
	if fetchErr.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", fetchErr.Status)
	}
}
