package repository

import (
	"context"

	"gearswap/internal/models"

	"gorm.io/gorm"
)

// RecentSearchLimit is how many history rows a user gets back.
const RecentSearchLimit = 5

// SearchRepository defines persistence operations for search history.
type SearchRepository interface {
	Add(ctx context.Context, search *models.Search) error
	Recent(ctx context.Context, userID uint) ([]models.Search, error)
	Delete(ctx context.Context, userID, searchID uint) error
	Clear(ctx context.Context, userID uint) error
}

type searchRepository struct {
	db *gorm.DB
}

// NewSearchRepository creates a new search history repository.
func NewSearchRepository(db *gorm.DB) SearchRepository {
	return &searchRepository{db: db}
}

func (r *searchRepository) Add(ctx context.Context, search *models.Search) error {
	if err := r.db.WithContext(ctx).Create(search).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *searchRepository) Recent(ctx context.Context, userID uint) ([]models.Search, error) {
	var searches []models.Search
	err := readDB(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(RecentSearchLimit).
		Find(&searches).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return searches, nil
}

// Delete removes a single history row, scoped to its owner.
func (r *searchRepository) Delete(ctx context.Context, userID, searchID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", searchID, userID).
		Delete(&models.Search{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Search", searchID)
	}
	return nil
}

func (r *searchRepository) Clear(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Search{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
