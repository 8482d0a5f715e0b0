package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/tipstream/harvester/internal/platforms"
	"github.com/tipstream/harvester/pkg/config"
	"github.com/tipstream/harvester/pkg/logging"
	"github.com/tipstream/harvester/pkg/telemetry"
)

// kindPost is the listing kind for link/self posts; everything else
// (comments, accounts, messages) is filtered out.
const kindPost = "t3"

// listing is a raw Reddit listing response
type listing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				ID                  string                 `json:"id"`
				Author              string                 `json:"author"`
				AuthorFullname      string                 `json:"author_fullname"`
				Title               string                 `json:"title"`
				SelfText            string                 `json:"selftext"`
				MediaMetadata       map[string]interface{} `json:"media_metadata"`
				IsRedditMediaDomain bool                   `json:"is_reddit_media_domain"`
				CreatedUTC          float64                `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Client fetches public posts via the Reddit listing API
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	pageSize  int
	logger    *zap.Logger
}

// New creates a new Reddit client
func New(cfg *config.RedditConfig, pageSize int) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("reddit_url is required")
	}

	logger := logging.GetLogger().With(zap.String("component", "reddit-client"))

	client := &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		pageSize:  pageSize,
		logger:    logger,
	}

	logger.Info("Reddit client initialized", zap.String("url", cfg.BaseURL))

	return client, nil
}

// Platform returns the platform name
func (c *Client) Platform() string {
	return platforms.Reddit
}

// SearchRecent fetches the newest posts matching a keyword
func (c *Client) SearchRecent(ctx context.Context, keyword string) ([]platforms.Candidate, error) {
	ctx, span := telemetry.StartSpan(ctx, "reddit.search_recent")
	defer span.End()

	q := url.Values{}
	q.Set("q", keyword)
	q.Set("sort", "new")
	q.Set("limit", fmt.Sprintf("%d", c.pageSize))

	var resp listing
	if err := c.get(ctx, "search_recent", "/search.json?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	return c.normalize(resp), nil
}

// FetchTimeline fetches posts authored by the given user, newer than sinceID
// when a watermark exists.
func (c *Client) FetchTimeline(ctx context.Context, author platforms.Identity, sinceID string) ([]platforms.Candidate, error) {
	ctx, span := telemetry.StartSpan(ctx, "reddit.fetch_timeline")
	defer span.End()

	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", c.pageSize))
	if sinceID != "" {
		q.Set("before", kindPost+"_"+sinceID)
	}

	path := fmt.Sprintf("/u/%s.json?%s", url.PathEscape(author.Username), q.Encode())

	var resp listing
	if err := c.get(ctx, "fetch_timeline", path, &resp); err != nil {
		return nil, err
	}

	return c.normalize(resp), nil
}

func (c *Client) get(ctx context.Context, op, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &platforms.FetchError{Platform: platforms.Reddit, Op: op, Err: err}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &platforms.FetchError{Platform: platforms.Reddit, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &platforms.FetchError{Platform: platforms.Reddit, Op: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &platforms.FetchError{Platform: platforms.Reddit, Op: op, Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &platforms.FetchError{Platform: platforms.Reddit, Op: op,
			Err: fmt.Errorf("failed to unmarshal listing: %w", err)}
	}

	return nil
}

// normalize converts listing children into candidates, keeping only t3
// posts. Reddit exposes no hashtags, so candidates carry no tag hints.
func (c *Client) normalize(resp listing) []platforms.Candidate {
	candidates := make([]platforms.Candidate, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		if child.Kind != kindPost {
			continue
		}

		post := child.Data
		hasMedia := len(post.MediaMetadata) > 0 || post.IsRedditMediaDomain

		candidates = append(candidates, platforms.Candidate{
			Platform: platforms.Reddit,
			TextID:   post.ID,
			Author: platforms.Identity{
				Username:  post.Author,
				AccountID: post.AuthorFullname,
			},
			Title:     post.Title,
			Text:      post.SelfText,
			HasMedia:  hasMedia,
			Link:      fmt.Sprintf("https://www.reddit.com/%s", post.ID),
			CreatedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
		})
	}

	return candidates
}
