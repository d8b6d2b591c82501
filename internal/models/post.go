package models

import "time"

// Post is owned by exactly one User. Comments and Likes referencing it
// are removed before the post itself.
type Post struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Content   string `gorm:"type:text;not null" json:"content"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Views     int64  `gorm:"not null;default:0" json:"views"`
	UserID    uint   `gorm:"not null;index" json:"userId"`
	User      User   `gorm:"foreignKey:UserID" json:"author"`
	// LikesCount is not persisted; computed at query time
	LikesCount int64 `gorm:"->;-:migration" json:"likes"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int64     `gorm:"->;-:migration" json:"comments"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
