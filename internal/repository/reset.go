package repository

import (
	"context"
	"errors"
	"time"

	"gearswap/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResetRepository defines persistence for password reset tokens.
// A user has at most one active token; issuing a new one replaces it.
type ResetRepository interface {
	Upsert(ctx context.Context, token *models.PasswordResetToken) error
	GetValid(ctx context.Context, token string) (*models.PasswordResetToken, error)
	Delete(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type resetRepository struct {
	db *gorm.DB
}

// NewResetRepository creates a new password reset token repository.
func NewResetRepository(db *gorm.DB) ResetRepository {
	return &resetRepository{db: db}
}

func (r *resetRepository) Upsert(ctx context.Context, token *models.PasswordResetToken) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at"}),
	}).Create(token).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetValid returns the row for an unexpired token, or UNAUTHORIZED otherwise.
func (r *resetRepository) GetValid(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var row models.PasswordResetToken
	err := readDB(r.db).WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("Invalid or expired reset token")
		}
		return nil, models.NewInternalError(err)
	}
	return &row, nil
}

func (r *resetRepository) Delete(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteExpired clears stale tokens; run periodically by the reset worker.
func (r *resetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&models.PasswordResetToken{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
