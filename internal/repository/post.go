package repository

import (
	"context"
	"errors"

	"gearswap/internal/cache"
	"gearswap/internal/models"

	"gorm.io/gorm"
)

// PostFilter carries the allow-listed listing filters. Zero values are skipped.
type PostFilter struct {
	ClothingType string
	Size         string
	Category     string
	Condition    string
	Tag          string
	UserID       uint
	MinPrice     *float64
	MaxPrice     *float64
}

// MaxImagesPerPost caps how many photos a single listing can carry.
const MaxImagesPerPost = 5

// PostRepository defines the interface for listing data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, int64, error)
	Trending(ctx context.Context, limit int) ([]*models.Post, error)
	Similar(ctx context.Context, seed *models.Post, limit int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	SetSold(ctx context.Context, id uint, sold bool) error
	Delete(ctx context.Context, id uint) error

	AddImage(ctx context.Context, image *models.PostImage) error
	GetImage(ctx context.Context, postID, imageID uint) (*models.PostImage, error)
	FirstImage(ctx context.Context, postID uint) (*models.PostImage, error)
	ListImages(ctx context.Context, postID uint) ([]models.PostImage, error)
	ListImageIDs(ctx context.Context, postID uint) ([]uint, error)
	CountImages(ctx context.Context, postID uint) (int64, error)
	DeleteImage(ctx context.Context, postID, imageID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// withUsername joins the seller's username into the result set.
func withUsername(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Post{}).
		Select("posts.*, users.username as username").
		Joins("JOIN users ON users.id = posts.user_id")
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		if err := withUsername(readDB(r.db).WithContext(ctx)).
			Where("posts.id = ?", id).
			First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := withUsername(readDB(r.db).WithContext(ctx)).
		Where("posts.user_id = ?", userID).
		Order("posts.date_posted DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, int64, error) {
	base := readDB(r.db).WithContext(ctx).Model(&models.Post{})

	if filter.ClothingType != "" {
		base = base.Where("posts.clothing_type = ?", filter.ClothingType)
	}
	if filter.Size != "" {
		base = base.Where("posts.size = ?", filter.Size)
	}
	if filter.Category != "" {
		base = base.Where("posts.category = ?", filter.Category)
	}
	if filter.Condition != "" {
		base = base.Where("posts.condition = ?", filter.Condition)
	}
	if filter.Tag != "" {
		// Tags is a JSON-encoded array of strings, so a quoted substring
		// match finds exact tag membership.
		base = base.Where("posts.tags LIKE ?", "%\""+filter.Tag+"\"%")
	}
	if filter.UserID != 0 {
		base = base.Where("posts.user_id = ?", filter.UserID)
	}
	if filter.MinPrice != nil {
		base = base.Where("posts.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		base = base.Where("posts.price <= ?", *filter.MaxPrice)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []*models.Post
	err := base.Session(&gorm.Session{}).
		Select("posts.*, users.username as username").
		Joins("JOIN users ON users.id = posts.user_id").
		Order("posts.date_posted DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

// Trending returns the most-liked unsold listings, cached platform-wide.
func (r *postRepository) Trending(ctx context.Context, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := cache.Aside(ctx, cache.TrendingItemsKey, &posts, cache.TrendingTTL, func() error {
		return withUsername(readDB(r.db).WithContext(ctx)).
			Where("posts.is_sold = ?", false).
			Order("posts.like_count DESC, posts.date_posted DESC").
			Limit(limit).
			Find(&posts).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Similar returns listings sharing the seed's category and size, most liked
// first, excluding the seed itself.
func (r *postRepository) Similar(ctx context.Context, seed *models.Post, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := withUsername(readDB(r.db).WithContext(ctx)).
		Where("posts.id != ?", seed.ID).
		Where("posts.category = ? AND posts.size = ?", seed.Category, seed.Size).
		Order("posts.like_count DESC, posts.date_posted DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) SetSold(ctx context.Context, id uint, sold bool) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("is_sold", sold)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// Delete removes the listing along with its images, likes and cart references.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.LikedPost{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) AddImage(ctx context.Context, image *models.PostImage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, image.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", image.PostID)
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.PostImage{}).Where("post_id = ?", image.PostID).Count(&count).Error; err != nil {
			return err
		}
		if count >= MaxImagesPerPost {
			return models.NewValidationError("A listing can have at most 5 images")
		}
		return tx.Create(image).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, image.PostID)
	return nil
}

func (r *postRepository) GetImage(ctx context.Context, postID, imageID uint) (*models.PostImage, error) {
	var image models.PostImage
	err := readDB(r.db).WithContext(ctx).
		Where("id = ? AND post_id = ?", imageID, postID).
		First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Image", imageID)
		}
		return nil, models.NewInternalError(err)
	}
	return &image, nil
}

// FirstImage returns the oldest image of a listing, or nil when it has none.
func (r *postRepository) FirstImage(ctx context.Context, postID uint) (*models.PostImage, error) {
	var image models.PostImage
	err := readDB(r.db).WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id").
		First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &image, nil
}

func (r *postRepository) ListImages(ctx context.Context, postID uint) ([]models.PostImage, error) {
	var images []models.PostImage
	err := readDB(r.db).WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id").
		Find(&images).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return images, nil
}

func (r *postRepository) ListImageIDs(ctx context.Context, postID uint) ([]uint, error) {
	var ids []uint
	err := readDB(r.db).WithContext(ctx).
		Model(&models.PostImage{}).
		Where("post_id = ?", postID).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *postRepository) CountImages(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.PostImage{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) DeleteImage(ctx context.Context, postID, imageID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND post_id = ?", imageID, postID).Delete(&models.PostImage{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Image", imageID)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}
