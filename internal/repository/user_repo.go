package repository

import (
	"context"
	"fmt"

	"socialexplore/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return wrap("create user", r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, wrap(fmt.Sprintf("get user %d", id), err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, wrap("get user by email", err)
	}
	return &u, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&list).Error
	return list, wrap("list users", err)
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	return wrap("update user", r.db.WithContext(ctx).Save(u).Error)
}
