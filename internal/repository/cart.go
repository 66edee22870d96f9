package repository

import (
	"context"
	"errors"

	"gearswap/internal/cache"
	"gearswap/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines persistence operations for the shopping cart.
type CartRepository interface {
	AddItem(ctx context.Context, userID, postID uint, quantity int) error
	List(ctx context.Context, userID uint) ([]models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, postID uint, quantity int) error
	RemoveItem(ctx context.Context, userID, postID uint) error
	Clear(ctx context.Context, userID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository.
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// AddItem inserts the item or, when it is already in the cart, bumps the quantity.
func (r *cartRepository) AddItem(ctx context.Context, userID, postID uint, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return err
		}

		item := models.CartItem{UserID: userID, PostID: postID, Quantity: quantity}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + ?", quantity),
			}),
		}).Create(&item).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateCart(ctx, userID)
	return nil
}

func (r *cartRepository) List(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := cache.Aside(ctx, cache.CartKey(userID), &items, cache.CartTTL, func() error {
		return readDB(r.db).WithContext(ctx).
			Preload("Post").
			Where("user_id = ?", userID).
			Order("id").
			Find(&items).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, postID uint, quantity int) error {
	if quantity <= 0 {
		return r.RemoveItem(ctx, userID, postID)
	}

	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Update("quantity", quantity)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Cart item", postID)
	}
	cache.InvalidateCart(ctx, userID)
	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, userID, postID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Cart item", postID)
	}
	cache.InvalidateCart(ctx, userID)
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCart(ctx, userID)
	return nil
}
