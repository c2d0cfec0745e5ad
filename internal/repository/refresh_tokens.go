package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sghss/sghss-api/internal/models"
)

type RefreshTokens struct {
	db *gorm.DB
}

func NewRefreshTokens(db *gorm.DB) *RefreshTokens {
	return &RefreshTokens{db: db}
}

func (r *RefreshTokens) Create(ctx context.Context, t *models.RefreshToken) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *RefreshTokens) GetActiveByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND revoked = false", hash).
		First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *RefreshTokens) Revoke(ctx context.Context, hash string) error {
	return affected(r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked = false", hash).
		Update("revoked", true))
}
