package repository

import (
	"context"
	"errors"

	"gearswap/internal/cache"
	"gearswap/internal/models"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for post likes.
type LikeRepository interface {
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	Get(ctx context.Context, userID, postID uint) (*models.LikedPost, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.LikedPost, error)
	RecentLikedPosts(ctx context.Context, userID uint, limit int) ([]models.Post, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Like records the like and bumps the post's like counter in one transaction.
// A second like of the same post is a conflict, not a no-op.
func (r *likeRepository) Like(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return err
		}

		like := models.LikedPost{UserID: userID, PostID: postID}
		if err := tx.Create(&like).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("Post already liked")
			}
			return err
		}

		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

// Unlike removes the like and decrements the counter, never below zero.
func (r *likeRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.LikedPost{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Like", postID)
		}

		return tx.Model(&models.Post{}).
			Where("id = ? AND like_count > 0", postID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *likeRepository) Get(ctx context.Context, userID, postID uint) (*models.LikedPost, error) {
	var like models.LikedPost
	err := readDB(r.db).WithContext(ctx).
		Preload("Post").
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Like", postID)
		}
		return nil, models.NewInternalError(err)
	}
	return &like, nil
}

func (r *likeRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.LikedPost, error) {
	var likes []models.LikedPost
	err := readDB(r.db).WithContext(ctx).
		Preload("Post").
		Where("user_id = ?", userID).
		Order("date_liked DESC").
		Limit(limit).
		Offset(offset).
		Find(&likes).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}

// RecentLikedPosts returns the posts behind a user's most recent likes,
// newest first. Used to build the styler's taste context.
func (r *likeRepository) RecentLikedPosts(ctx context.Context, userID uint, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Post{}).
		Joins("JOIN liked_posts ON liked_posts.post_id = posts.id").
		Where("liked_posts.user_id = ?", userID).
		Order("liked_posts.date_liked DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *likeRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.LikedPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
