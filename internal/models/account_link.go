package models

import (
	"time"
)

// AccountLink binds a Person to a native user. At most one verified link
// exists per (user, platform); at most one link per user is primary, set
// only on the user's very first link.
type AccountLink struct {
	ID        string    `gorm:"type:uuid;primaryKey;column:id"`
	PersonID  string    `gorm:"type:uuid;not null;column:person_id"`
	UserID    string    `gorm:"type:varchar(66);not null;uniqueIndex:links_user_platform_ux;column:user_id"`
	Platform  string    `gorm:"type:varchar(16);not null;uniqueIndex:links_user_platform_ux;column:platform"`
	Verified  bool      `gorm:"not null;default:false;column:verified"`
	Primary   bool      `gorm:"not null;default:false;column:is_primary"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	Person *Person `gorm:"foreignKey:PersonID;references:ID"`
}

// TableName specifies the table name for AccountLink
func (AccountLink) TableName() string {
	return "account_links"
}
