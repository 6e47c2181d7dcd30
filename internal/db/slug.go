package db

import "time"

// SlugRecord maps a human readable slug to a post. A non-nil NewSlug marks
// the record as superseded; readers follow it to reach the current slug.
type SlugRecord struct {
	Slug      string    `gorm:"primaryKey;not null" json:"slug"`
	PostID    PostID    `gorm:"column:id;not null;index" json:"postId"`
	NewSlug   *string   `gorm:"column:newslug;index" json:"newSlug,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName 指定自定义表名。
func (SlugRecord) TableName() string {
	return "slug"
}

// Live reports whether the record is the end of its chain.
func (r SlugRecord) Live() bool {
	return r.NewSlug == nil
}
