package repository

import (
	"context"
	"encoding/json"
	"errors"

	"gearswap/internal/models"

	"gorm.io/gorm"
)

// OutfitRepository defines persistence operations for user-assembled outfits.
type OutfitRepository interface {
	Create(ctx context.Context, outfit *models.Outfit) error
	GetByID(ctx context.Context, userID, outfitID uint) (*models.Outfit, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Outfit, error)
	Update(ctx context.Context, outfit *models.Outfit) error
	Delete(ctx context.Context, userID, outfitID uint) error
	AddItem(ctx context.Context, userID, outfitID, postID uint) error
	RemoveItem(ctx context.Context, userID, outfitID, postID uint) error
}

type outfitRepository struct {
	db *gorm.DB
}

// NewOutfitRepository creates a new outfit repository.
func NewOutfitRepository(db *gorm.DB) OutfitRepository {
	return &outfitRepository{db: db}
}

func (r *outfitRepository) Create(ctx context.Context, outfit *models.Outfit) error {
	if outfit.Items == "" {
		outfit.Items = "[]"
	}
	if err := r.db.WithContext(ctx).Create(outfit).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *outfitRepository) GetByID(ctx context.Context, userID, outfitID uint) (*models.Outfit, error) {
	var outfit models.Outfit
	err := readDB(r.db).WithContext(ctx).
		Where("id = ? AND user_id = ?", outfitID, userID).
		First(&outfit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Outfit", outfitID)
		}
		return nil, models.NewInternalError(err)
	}
	return &outfit, nil
}

func (r *outfitRepository) ListByUser(ctx context.Context, userID uint) ([]models.Outfit, error) {
	var outfits []models.Outfit
	err := readDB(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date_created DESC").
		Find(&outfits).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return outfits, nil
}

func (r *outfitRepository) Update(ctx context.Context, outfit *models.Outfit) error {
	res := r.db.WithContext(ctx).
		Model(&models.Outfit{}).
		Where("id = ? AND user_id = ?", outfit.ID, outfit.UserID).
		Updates(map[string]interface{}{"name": outfit.Name, "items": outfit.Items})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Outfit", outfit.ID)
	}
	return nil
}

func (r *outfitRepository) Delete(ctx context.Context, userID, outfitID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", outfitID, userID).
		Delete(&models.Outfit{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Outfit", outfitID)
	}
	return nil
}

// AddItem appends the post to the outfit's item list if not already present.
func (r *outfitRepository) AddItem(ctx context.Context, userID, outfitID, postID uint) error {
	return r.mutateItems(ctx, userID, outfitID, func(items []models.OutfitItem) ([]models.OutfitItem, error) {
		for _, it := range items {
			if it.PostID == postID {
				return nil, models.NewConflictError("Post already in outfit")
			}
		}
		return append(items, models.OutfitItem{PostID: postID}), nil
	})
}

func (r *outfitRepository) RemoveItem(ctx context.Context, userID, outfitID, postID uint) error {
	return r.mutateItems(ctx, userID, outfitID, func(items []models.OutfitItem) ([]models.OutfitItem, error) {
		kept := items[:0]
		for _, it := range items {
			if it.PostID != postID {
				kept = append(kept, it)
			}
		}
		if len(kept) == len(items) {
			return nil, models.NewNotFoundError("Outfit item", postID)
		}
		return kept, nil
	})
}

// mutateItems loads, transforms and persists the JSON item list in one transaction.
func (r *outfitRepository) mutateItems(ctx context.Context, userID, outfitID uint, mutate func([]models.OutfitItem) ([]models.OutfitItem, error)) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var outfit models.Outfit
		if err := tx.Where("id = ? AND user_id = ?", outfitID, userID).First(&outfit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Outfit", outfitID)
			}
			return err
		}

		var items []models.OutfitItem
		if outfit.Items != "" {
			if err := json.Unmarshal([]byte(outfit.Items), &items); err != nil {
				items = nil
			}
		}

		updated, err := mutate(items)
		if err != nil {
			return err
		}
		if updated == nil {
			updated = []models.OutfitItem{}
		}

		raw, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		return tx.Model(&models.Outfit{}).
			Where("id = ?", outfitID).
			Update("items", string(raw)).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}
