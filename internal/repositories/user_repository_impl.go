package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"tutorlink/internal/models"
	"tutorlink/internal/repositories/cache"
)

type userRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

// NewUserRepository creates a user repository backed by GORM with a
// read-through cache for id lookups.
func NewUserRepository(db *gorm.DB, cacheService *cache.CacheService) UserRepository {
	return &userRepository{db: db, cache: cacheService}
}

func (r *userRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	if r.cache != nil {
		var cached models.User
		found, err := r.cache.Get(context.Background(), r.cache.GenerateKey("user", "id", id), &cached)
		if err == nil && found {
			return &cached, nil
		}
	}

	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if r.cache != nil {
		_ = r.cache.Set(context.Background(), r.cache.GenerateKey("user", "id", user.ID), &user)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return err
	}
	r.invalidate(user.ID)
	return nil
}

func (r *userRepository) IncrementTokenVersion(userID uint) error {
	err := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error
	if err != nil {
		return err
	}
	r.invalidate(userID)
	return nil
}

func (r *userRepository) UpdateKYCStatus(userID uint, status string) error {
	err := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("kyc_status", status).Error
	if err != nil {
		return err
	}
	r.invalidate(userID)
	return nil
}

func (r *userRepository) List(offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) invalidate(userID uint) {
	if r.cache != nil {
		_ = r.cache.Delete(context.Background(), r.cache.GenerateKey("user", "id", userID))
	}
}
