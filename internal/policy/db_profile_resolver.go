package policy

import (
	"context"
	"errors"

	"github.com/diewo77/go-workhours/gate"
	"github.com/diewo77/go-workhours/internal/models"
	"gorm.io/gorm"
)

// DBProfileResolver loads a user's profile and permissions with one preload.
type DBProfileResolver struct {
	DB *gorm.DB
}

func NewDBProfileResolver(db *gorm.DB) *DBProfileResolver {
	return &DBProfileResolver{DB: db}
}

// Resolve returns nil, nil for unknown users and users without a profile,
// which the gate treats as "no permissions".
func (r *DBProfileResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Profile.Permissions").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		return nil, nil
	}
	return gate.FromCodes(user.Profile.Name, user.Profile.Codes()), nil
}

// UserActive backs auth.Verifier's user check: the user exists, is not
// deleted and has not been deactivated.
func (r *DBProfileResolver) UserActive(ctx context.Context, userID uint) bool {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_active = ?", userID, true).
		Count(&n).Error
	if err != nil {
		return false
	}
	return n > 0
}
