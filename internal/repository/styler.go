package repository

import (
	"context"
	"errors"

	"gearswap/internal/cache"
	"gearswap/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StylerRepository defines persistence for styler preferences and chat logs.
type StylerRepository interface {
	GetPreferences(ctx context.Context, userID uint) (*models.StylerPreferences, error)
	UpsertPreferences(ctx context.Context, prefs *models.StylerPreferences) error
	LogConversation(ctx context.Context, log *models.ConversationLog) error
	ConversationHistory(ctx context.Context, userID uint, limit, offset int) ([]models.ConversationLog, error)
}

type stylerRepository struct {
	db *gorm.DB
}

// NewStylerRepository creates a new styler repository.
func NewStylerRepository(db *gorm.DB) StylerRepository {
	return &stylerRepository{db: db}
}

func (r *stylerRepository) GetPreferences(ctx context.Context, userID uint) (*models.StylerPreferences, error) {
	var prefs models.StylerPreferences
	err := cache.Aside(ctx, cache.StylerPrefsKey(userID), &prefs, cache.StylerPrefsTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Styler preferences", userID)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *stylerRepository) UpsertPreferences(ctx context.Context, prefs *models.StylerPreferences) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"preferences"}),
	}).Create(prefs).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateStylerPrefs(ctx, prefs.UserID)
	return nil
}

func (r *stylerRepository) LogConversation(ctx context.Context, log *models.ConversationLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *stylerRepository) ConversationHistory(ctx context.Context, userID uint, limit, offset int) ([]models.ConversationLog, error) {
	var logs []models.ConversationLog
	err := readDB(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return logs, nil
}
