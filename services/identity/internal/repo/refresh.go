package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ntsvetkov/identity-platform/services/identity/internal/models"
)

func (r *GormRepo) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	if err := r.DB.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("repo: create refresh token: %w", err)
	}
	return nil
}

func (r *GormRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshNotFound
		}
		return nil, fmt.Errorf("repo: find refresh token: %w", err)
	}
	return &stored, nil
}

// ConsumeRefreshToken deletes the token in a single statement and
// reports whether this caller claimed it. Concurrent refreshes with the
// same token race on the delete; exactly one observes an affected row.
func (r *GormRepo) ConsumeRefreshToken(ctx context.Context, token string) (bool, error) {
	result := r.DB.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		return false, fmt.Errorf("repo: consume refresh token: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteRefreshToken removes the token if present. Deleting an absent
// token is not an error; logout is idempotent.
func (r *GormRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	if err := r.DB.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.RefreshToken{}).Error; err != nil {
		return fmt.Errorf("repo: delete refresh token: %w", err)
	}
	return nil
}
