package models

import (
	"time"
)

// Person represents a tracked external platform identity. It exists
// independently of whether a native user has claimed it.
type Person struct {
	ID            string    `gorm:"type:uuid;primaryKey;column:id"`
	Platform      string    `gorm:"type:varchar(16);not null;uniqueIndex:people_platform_account_ux;column:platform"`
	Username      string    `gorm:"type:varchar(64);not null;column:username"`
	AccountID     string    `gorm:"type:varchar(64);not null;uniqueIndex:people_platform_account_ux;column:account_id"`
	Name          string    `gorm:"type:varchar(128);not null;default:'';column:name"`
	AvatarURL     string    `gorm:"type:varchar(1024);not null;default:'';column:avatar_url"`
	WalletAddress string    `gorm:"type:varchar(64);not null;default:'';column:wallet_address"`
	CreatedAt     time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Person
func (Person) TableName() string {
	return "people"
}
