package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sghss/sghss-api/internal/models"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (r *Users) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *Users) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *Users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("lower(username) = lower(?)", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *Users) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("lower(email) = lower(?)", email).
		Count(&count).Error
	return count > 0, translate(err)
}

func (r *Users) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return affected(r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("password", hash))
}

func (r *Users) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Scopes(ActiveOnly).
		Where("role = ?", role).
		Order("username ASC").
		Find(&users).Error
	return users, translate(err)
}
