package models

// PublicMetric holds per-post public counters. One row is created alongside
// each post, at zero, and updated out of band.
type PublicMetric struct {
	ID      int64  `gorm:"primaryKey;autoIncrement;column:id"`
	PostID  string `gorm:"type:uuid;not null;uniqueIndex:metrics_post_ux;column:post_id"`
	Liked   int64  `gorm:"not null;default:0;column:liked"`
	Comment int64  `gorm:"not null;default:0;column:comment"`

	Post *Post `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for PublicMetric
func (PublicMetric) TableName() string {
	return "public_metrics"
}
