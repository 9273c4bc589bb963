// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that can post to the community and save keywords.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Nickname  string         `gorm:"not null" json:"nickname"`
	Avatar    string         `json:"avatar"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserKeyword is a saved interest keyword used to personalize listings of one category.
// The combination of UserID, Path and Keyword must be unique.
type UserKeyword struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_path_keyword" json:"userId"`
	Path      string    `gorm:"not null;size:32;uniqueIndex:idx_user_path_keyword" json:"path"`
	Keyword   string    `gorm:"not null;uniqueIndex:idx_user_path_keyword" json:"keyword"`
	CreatedAt time.Time `json:"createdAt"`
}
