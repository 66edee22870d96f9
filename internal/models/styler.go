package models

import (
	"time"
)

// StylerPreferences stores a user's style preferences as a JSON document.
type StylerPreferences struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Preferences string `gorm:"type:text;not null" json:"-"`
}

// ConversationLog records one styler chat exchange.
type ConversationLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	UserMessage string    `gorm:"type:text" json:"userMessage"`
	AIResponse  string    `gorm:"type:text" json:"aiResponse"`
	RequestType string    `json:"requestType"`
	ModelUsed   string    `json:"modelUsed"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}

// PasswordResetToken is the single active reset token for a user.
// Upsert-on-conflict keeps at most one row per user; the row is deleted
// when the token is consumed.
type PasswordResetToken struct {
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	Token     string    `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
}
