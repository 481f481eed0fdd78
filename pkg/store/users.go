package store

import (
	"context"

	"github.com/jinzhu/gorm"

	"pureplay/pkg/models"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (r *Users) Create(ctx context.Context, user *models.User) error {
	return r.db.Create(user).Error
}

// GetByEmail returns nil, nil when no user matches.
func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Users) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash).Error
}
