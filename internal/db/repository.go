package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tipstream/harvester/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// PostRepository provides content-item database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByExternalID retrieves a post by (platform, text id)
func (r *PostRepository) GetByExternalID(ctx context.Context, platform, textID string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Where("platform = ? AND text_id = ?", platform, textID).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// UpdateTags replaces the tag set of a post
func (r *PostRepository) UpdateTags(ctx context.Context, id string, tags []string) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Update("tags", tags).Error
}

// ListExternalIDs returns the external ids of a person's stored posts on a
// platform
func (r *PostRepository) ListExternalIDs(ctx context.Context, platform, personID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("platform = ? AND person_id = ?", platform, personID).
		Pluck("text_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// PeopleRepository provides tracked-identity database operations
type PeopleRepository struct {
	*Repository
}

// NewPeopleRepository creates a new people repository
func NewPeopleRepository(repo *Repository) *PeopleRepository {
	return &PeopleRepository{Repository: repo}
}

// GetByAccountID retrieves a person by (platform, account id)
func (r *PeopleRepository) GetByAccountID(ctx context.Context, platform, accountID string) (*models.Person, error) {
	var person models.Person
	if err := r.db.WithContext(ctx).
		Where("platform = ? AND account_id = ?", platform, accountID).
		First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &person, nil
}

// List returns all tracked people on a platform
func (r *PeopleRepository) List(ctx context.Context, platform string) ([]*models.Person, error) {
	var people []*models.Person
	if err := r.db.WithContext(ctx).
		Where("platform = ?", platform).
		Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

// Create creates a new person
func (r *PeopleRepository) Create(ctx context.Context, person *models.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

// TagRepository provides tracked-keyword database operations
type TagRepository struct {
	*Repository
}

// NewTagRepository creates a new tag repository
func NewTagRepository(repo *Repository) *TagRepository {
	return &TagRepository{Repository: repo}
}

// List returns all tracked keywords
func (r *TagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	if err := r.db.WithContext(ctx).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// MetricRepository provides public-metric database operations
type MetricRepository struct {
	*Repository
}

// NewMetricRepository creates a new metric repository
func NewMetricRepository(repo *Repository) *MetricRepository {
	return &MetricRepository{Repository: repo}
}

// Create creates a new metric row
func (r *MetricRepository) Create(ctx context.Context, metric *models.PublicMetric) error {
	return r.db.WithContext(ctx).Create(metric).Error
}

// LinkRepository provides account-link database operations
type LinkRepository struct {
	*Repository
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(repo *Repository) *LinkRepository {
	return &LinkRepository{Repository: repo}
}

// GetVerified retrieves the verified link for (person, platform)
func (r *LinkRepository) GetVerified(ctx context.Context, personID, platform string) (*models.AccountLink, error) {
	var link models.AccountLink
	if err := r.db.WithContext(ctx).
		Where("person_id = ? AND platform = ? AND verified = ?", personID, platform, true).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// CountByUser counts a user's links across all platforms
func (r *LinkRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AccountLink{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create creates a new account link
func (r *LinkRepository) Create(ctx context.Context, link *models.AccountLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// Delete removes an account link
func (r *LinkRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.AccountLink{}, "id = ?", id).Error
}
