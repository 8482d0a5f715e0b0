package harvest

import (
	"context"

	"github.com/tipstream/harvester/internal/models"
)

// PostStore is the content-item store consumed by the ingestion job
type PostStore interface {
	// GetByExternalID retrieves the post for (platform, text id), or nil.
	GetByExternalID(ctx context.Context, platform, textID string) (*models.Post, error)
	// Create inserts a new post. A uniqueness violation on
	// (platform, text_id) surfaces as gorm.ErrDuplicatedKey.
	Create(ctx context.Context, post *models.Post) error
	// UpdateTags replaces the tag set of a post.
	UpdateTags(ctx context.Context, id string, tags []string) error
	// ListExternalIDs returns the external ids of all stored posts
	// authored by a person on a platform.
	ListExternalIDs(ctx context.Context, platform, personID string) ([]string, error)
}

// PeopleStore is the tracked-identity store consumed by the ingestion job
type PeopleStore interface {
	// GetByAccountID retrieves a person by platform account id, or nil.
	GetByAccountID(ctx context.Context, platform, accountID string) (*models.Person, error)
	// List returns all tracked people on a platform.
	List(ctx context.Context, platform string) ([]*models.Person, error)
}

// TagStore lists the tracked keywords
type TagStore interface {
	List(ctx context.Context) ([]*models.Tag, error)
}

// MetricStore creates the zero-valued counters for new posts
type MetricStore interface {
	Create(ctx context.Context, metric *models.PublicMetric) error
}

// WatermarkCache caches per-person fetch watermarks so a sweep does not
// rescan stored ids every tick. A miss returns an empty mark; a disabled
// cache returns an error and the caller falls back to the store.
type WatermarkCache interface {
	GetWatermark(ctx context.Context, platform, personID string) (string, error)
	SetWatermark(ctx context.Context, platform, personID, textID string) error
}
