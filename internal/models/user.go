package models

import "time"

// User represents an application user.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	UUID         string `gorm:"size:36;uniqueIndex;not null"`
	Username     string `gorm:"size:64;uniqueIndex;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	IsSuperuser  bool   `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
