// Package platforms defines the normalized boundary between external social
// platform APIs and the ingestion core. Each adapter validates and converts
// raw payloads into Candidates; loosely-typed platform JSON never crosses
// this boundary.
package platforms

import (
	"context"
	"fmt"
	"time"
)

// Platform names as stored on posts, people and account links.
const (
	Twitter = "twitter"
	Reddit  = "reddit"
)

// Identity is the author identity a platform reports for an item.
type Identity struct {
	Username  string
	AccountID string
}

// Candidate is a normalized item fetched from an external platform, before
// deduplication against the store.
type Candidate struct {
	Platform  string
	TextID    string
	Author    Identity
	Title     string
	Text      string
	Tags      []string
	HasMedia  bool
	Link      string
	CreatedAt time.Time
}

// Source fetches candidates from one external platform. Implementations do
// not retry; a failed fetch surfaces as a *FetchError and the next sweep
// re-fetches implicitly.
type Source interface {
	// Platform returns the platform name this source serves.
	Platform() string

	// SearchRecent fetches the most recent items matching a tracked keyword,
	// bounded by the source's page size.
	SearchRecent(ctx context.Context, keyword string) ([]Candidate, error)

	// FetchTimeline fetches items authored by the given identity that are
	// newer than sinceID. An empty sinceID means no watermark exists yet and
	// the most recent page is fetched unfiltered.
	FetchTimeline(ctx context.Context, author Identity, sinceID string) ([]Candidate, error)
}

// FetchError is a retrievable external-fetch failure (network failure,
// rate limit, non-2xx status).
type FetchError struct {
	Platform string
	Op       string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s failed with status %d", e.Platform, e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Platform, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
