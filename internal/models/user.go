// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a GearSwap account.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	ProfileInfo string    `gorm:"type:text" json:"profileInfo"`
	JoinDate    time.Time `gorm:"autoCreateTime" json:"joinDate"`
	LikeCount   int       `gorm:"default:0" json:"likeCount"`
}

// UserProfile is the 1:1 public profile attached to a user.
type UserProfile struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Bio            string `gorm:"type:text" json:"bio"`
	Location       string `json:"location"`
	ProfilePicture []byte `gorm:"type:bytea" json:"-"`
	ContentType    string `json:"contentType,omitempty"`
}

// Follow is a directed follower edge between two users.
type Follow struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	FollowerID uint `gorm:"not null;uniqueIndex:idx_follow_edge" json:"followerId"`
	FollowedID uint `gorm:"not null;uniqueIndex:idx_follow_edge" json:"followedId"`
}
