package storage

import (
	"context"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/diewo77/go-workhours/internal/services"
	"gorm.io/gorm"
)

// UserStore implements services.UserStore.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.WithContext(ctx).Preload("Profile").Order("id ASC").Find(&users).Error
	return users, translate(err)
}

func (s *UserStore) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *UserStore) SetProfile(ctx context.Context, userID uint, profileID *uint) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("profile_id", profileID)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *UserStore) SetActive(ctx context.Context, userID uint, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("is_active", active)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *UserStore) Profiles(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	err := s.db.WithContext(ctx).Preload("Permissions").Order("name ASC").Find(&profiles).Error
	return profiles, translate(err)
}

func (s *UserStore) ProfileExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Count(&n).Error
	return n > 0, translate(err)
}
