package models

import (
	"time"
)

// Post is a clothing listing.
type Post struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	UserID       uint        `gorm:"not null;index" json:"userId"`
	User         User        `gorm:"foreignKey:UserID" json:"-"`
	Price        float64     `gorm:"not null" json:"price"`
	Description  string      `gorm:"type:text;not null" json:"description"`
	Size         string      `gorm:"not null;index" json:"size"`
	Category     string      `gorm:"not null;index" json:"category"`
	ClothingType string      `gorm:"not null;index" json:"clothingType"`
	Condition    string      `json:"condition"`
	Tags         string      `gorm:"type:text" json:"-"` // JSON-encoded []string
	IsSold       bool        `gorm:"default:false" json:"isSold"`
	DatePosted   time.Time   `gorm:"autoCreateTime;index" json:"datePosted"`
	LikeCount    int         `gorm:"default:0" json:"likeCount"`
	Images       []PostImage `gorm:"foreignKey:PostID" json:"-"`

	// Username is not persisted; joined from users at query time.
	Username string `gorm:"->" json:"username,omitempty"`
}

// PostImage holds a listing photo as a binary column.
type PostImage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"not null;index" json:"postId"`
	ImageData   []byte    `gorm:"type:bytea" json:"-"`
	ContentType string    `gorm:"not null" json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LikedPost records a user liking a post. One row per (user, post) pair.
type LikedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post_like" json:"userId"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post_like" json:"postId"`
	Post      Post      `gorm:"foreignKey:PostID" json:"post,omitempty"`
	DateLiked time.Time `gorm:"autoCreateTime" json:"dateLiked"`
}

// CartItem is an entry in a user's shopping cart.
type CartItem struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_user_post_cart" json:"userId"`
	PostID   uint `gorm:"not null;uniqueIndex:idx_user_post_cart" json:"postId"`
	Post     Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Quantity int  `gorm:"not null;default:1" json:"quantity"`
}
