package models

import (
	"time"
)

// Tag is a tracked keyword. The primary key is the case-folded keyword text.
type Tag struct {
	ID        string    `gorm:"type:varchar(64);primaryKey;column:id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Tag
func (Tag) TableName() string {
	return "tags"
}
