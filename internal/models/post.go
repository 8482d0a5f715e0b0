package models

import (
	"database/sql"
	"time"
)

// Post represents a harvested content item, stored canonically once per
// (platform, text_id). The tag set only ever grows across re-ingestion.
type Post struct {
	ID       string `gorm:"type:uuid;primaryKey;column:id"`
	Platform string `gorm:"type:varchar(16);not null;uniqueIndex:posts_platform_text_ux;column:platform"`
	TextID   string `gorm:"type:varchar(64);not null;uniqueIndex:posts_platform_text_ux;column:text_id"`

	PersonID sql.NullString `gorm:"type:uuid;column:person_id"`

	// Author identity as reported by the platform at harvest time.
	Username  string `gorm:"type:varchar(64);not null;default:'';column:username"`
	AccountID string `gorm:"type:varchar(64);not null;default:'';column:account_id"`

	Tags     []string `gorm:"serializer:json;type:jsonb;column:tags"`
	Title    string   `gorm:"type:text;not null;default:'';column:title"`
	Text     string   `gorm:"type:text;not null;default:'';column:text"`
	HasMedia bool     `gorm:"not null;default:false;column:has_media"`
	Link     string   `gorm:"type:varchar(1024);not null;default:'';column:link"`

	WalletAddress string `gorm:"type:varchar(64);not null;default:'';column:wallet_address"`

	PlatformCreatedAt time.Time `gorm:"not null;column:platform_created_at"`
	CreatedAt         time.Time `gorm:"not null;column:created_at"`
	UpdatedAt         time.Time `gorm:"not null;column:updated_at"`

	Person *Person `gorm:"foreignKey:PersonID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}
