package models

import "time"

// Post is a blog post. Tags and Embedding are JSON-encoded; the embedding is
// ranked in application code since the sqlite backend has no vector type.
type Post struct {
	ID          uint   `gorm:"primaryKey"`
	UUID        string `gorm:"size:36;uniqueIndex;not null"`
	Title       string `gorm:"size:255;not null"`
	Excerpt     string `gorm:"size:512;not null"`
	Content     string `gorm:"type:text;not null"`
	Slug        string `gorm:"size:255;uniqueIndex;not null"`
	Published   bool   `gorm:"default:false"`
	ReadingTime int    `gorm:"not null"`
	Tags        string `gorm:"type:text"` // JSON array of strings
	Embedding   string `gorm:"type:text"` // JSON array of floats
	AuthorID    uint   `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}
