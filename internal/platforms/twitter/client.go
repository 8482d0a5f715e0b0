package twitter

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

// tweet is a raw item from the Twitter v2 API
type tweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	AuthorID  string `json:"author_id"`
	CreatedAt string `json:"created_at"`
	Entities  *struct {
		Hashtags []struct {
			Tag string `json:"tag"`
		} `json:"hashtags"`
	} `json:"entities"`
	Attachments *struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
}

// searchResponse is the envelope for search and timeline endpoints
type searchResponse struct {
	Data     []tweet `json:"data"`
	Includes *struct {
		Users []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
}

// Client fetches public tweets via the Twitter v2 API
type Client struct {
	http     *http.Client
	baseURL  string
	bearer   string
	pageSize int
	logger   *zap.Logger
}

// New creates a new Twitter client
func New(cfg *config.TwitterConfig, pageSize int) (*Client, error) {
	if cfg.BearerToken == "" {
		return nil, fmt.Errorf("twitter_bearer_token is required")
	}

	logger := logging.GetLogger().With(zap.String("component", "twitter-client"))

	client := &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		baseURL:  cfg.BaseURL,
		bearer:   cfg.BearerToken,
		pageSize: pageSize,
		logger:   logger,
	}

	logger.Info("Twitter client initialized", zap.String("url", cfg.BaseURL))

	return client, nil
}

// Platform returns the platform name
func (c *Client) Platform() string {
	return platforms.Twitter
}

// SearchRecent fetches the most recent tweets matching a keyword
func (c *Client) SearchRecent(ctx context.Context, keyword string) ([]platforms.Candidate, error) {
	ctx, span := telemetry.StartSpan(ctx, "twitter.search_recent")
	defer span.End()

	q := url.Values{}
	q.Set("query", keyword)
	q.Set("max_results", fmt.Sprintf("%d", c.pageSize))
	q.Set("tweet.fields", "referenced_tweets,attachments,entities,created_at")
	q.Set("expansions", "author_id")
	q.Set("user.fields", "id,username")

	var resp searchResponse
	if err := c.get(ctx, "search_recent", "/2/tweets/search/recent?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	return c.normalize(resp), nil
}

// FetchTimeline fetches tweets authored by the given account, newer than
// sinceID when a watermark exists.
func (c *Client) FetchTimeline(ctx context.Context, author platforms.Identity, sinceID string) ([]platforms.Candidate, error) {
	ctx, span := telemetry.StartSpan(ctx, "twitter.fetch_timeline")
	defer span.End()

	q := url.Values{}
	q.Set("max_results", fmt.Sprintf("%d", c.pageSize))
	q.Set("tweet.fields", "attachments,entities,referenced_tweets,created_at")
	if sinceID != "" {
		q.Set("since_id", sinceID)
	}

	path := fmt.Sprintf("/2/users/%s/tweets?%s", url.PathEscape(author.AccountID), q.Encode())

	var resp searchResponse
	if err := c.get(ctx, "fetch_timeline", path, &resp); err != nil {
		return nil, err
	}

	candidates := c.normalize(resp)
	// The timeline endpoint omits author expansions; the caller already
	// knows whose timeline this is.
	for i := range candidates {
		candidates[i].Author = author
		candidates[i].Link = permalink(author.AccountID, candidates[i].TextID)
	}

	return candidates, nil
}

func (c *Client) get(ctx context.Context, op, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &platforms.FetchError{Platform: platforms.Twitter, Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return &platforms.FetchError{Platform: platforms.Twitter, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &platforms.FetchError{Platform: platforms.Twitter, Op: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &platforms.FetchError{Platform: platforms.Twitter, Op: op, Err: err}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &platforms.FetchError{Platform: platforms.Twitter, Op: op,
			Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}

	return nil
}

// normalize converts raw tweets into candidates, dropping retweets, quotes
// and replies (anything carrying referenced_tweets).
func (c *Client) normalize(resp searchResponse) []platforms.Candidate {
	usernames := make(map[string]string)
	if resp.Includes != nil {
		for _, u := range resp.Includes.Users {
			usernames[u.ID] = u.Username
		}
	}

	candidates := make([]platforms.Candidate, 0, len(resp.Data))
	for _, t := range resp.Data {
		if len(t.ReferencedTweets) > 0 {
			continue
		}

		var tags []string
		if t.Entities != nil {
			for _, h := range t.Entities.Hashtags {
				tags = append(tags, h.Tag)
			}
		}

		hasMedia := t.Attachments != nil && len(t.Attachments.MediaKeys) > 0

		createdAt, err := time.Parse(time.RFC3339, t.CreatedAt)
		if err != nil {
			c.logger.Warn("Skipping tweet with unparseable timestamp",
				zap.String("id", t.ID),
				zap.String("created_at", t.CreatedAt))
			continue
		}

		candidates = append(candidates, platforms.Candidate{
			Platform: platforms.Twitter,
			TextID:   t.ID,
			Author: platforms.Identity{
				Username:  usernames[t.AuthorID],
				AccountID: t.AuthorID,
			},
			Text:      t.Text,
			Tags:      tags,
			HasMedia:  hasMedia,
			Link:      permalink(t.AuthorID, t.ID),
			CreatedAt: createdAt,
		})
	}

	return candidates
}

func permalink(accountID, tweetID string) string {
	return fmt.Sprintf("https://twitter.com/%s/status/%s", accountID, tweetID)
}
