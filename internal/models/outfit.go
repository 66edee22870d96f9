package models

import (
	"time"
)

// OutfitItem references a post included in an outfit.
type OutfitItem struct {
	PostID uint `json:"postId"`
}

// Outfit is a user-assembled collection of posts.
// Items is a JSON-encoded []OutfitItem, matching the original storage shape.
type Outfit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	Name        string    `gorm:"not null" json:"name"`
	Items       string    `gorm:"type:text" json:"-"`
	DateCreated time.Time `gorm:"autoCreateTime" json:"dateCreated"`
}

// Search is a saved search-history row.
type Search struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	SearchQuery string    `gorm:"not null" json:"searchQuery"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}
