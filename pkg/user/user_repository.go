package user

import (
	"context"

	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"gorm.io/gorm"
)

type (
	UserRepository interface {
		CreateUser(ctx context.Context, p database.Principal, user *entities.User) error
		GetUserByID(ctx context.Context, p database.Principal, id string) (*entities.User, error)
		GetUserByEmail(ctx context.Context, p database.Principal, email string) (*entities.User, error)
		UpdateUser(ctx context.Context, p database.Principal, id string, updates map[string]any) (*entities.User, error)
	}

	userRepository struct {
		gw database.Gateway
	}
)

func NewUserRepository(gw database.Gateway) UserRepository {
	return &userRepository{gw: gw}
}

func (r *userRepository) CreateUser(ctx context.Context, p database.Principal, user *entities.User) error {
	return r.gw.Client(ctx, p).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, p database.Principal, id string) (*entities.User, error) {
	var user entities.User
	if err := r.gw.Client(ctx, p).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, p database.Principal, email string) (*entities.User, error) {
	var user entities.User
	if err := r.gw.Client(ctx, p).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies updates and returns the fresh row. A row hidden by the
// caller's policy reports gorm.ErrRecordNotFound.
func (r *userRepository) UpdateUser(ctx context.Context, p database.Principal, id string, updates map[string]any) (*entities.User, error) {
	var user entities.User
	err := r.gw.Transaction(ctx, p, func(tx *gorm.DB) error {
		res := tx.Model(&entities.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
