package services

import (
	"context"

	"github.com/diewo77/go-workhours/internal/models"
)

// UserStore persists users and lists profiles for the admin API.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id uint) (*models.User, error)
	SetProfile(ctx context.Context, userID uint, profileID *uint) error
	SetActive(ctx context.Context, userID uint, active bool) error
	Delete(ctx context.Context, id uint) error
	Profiles(ctx context.Context) ([]models.Profile, error)
	ProfileExists(ctx context.Context, id uint) (bool, error)
}

// UserService manages profile assignment. Every change calls onChange so
// cached permissions are dropped.
type UserService struct {
	store    UserStore
	onChange func(userID uint)
}

func NewUserService(store UserStore, onChange func(userID uint)) *UserService {
	if onChange == nil {
		onChange = func(uint) {}
	}
	return &UserService{store: store, onChange: onChange}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.List(ctx)
}

func (s *UserService) Profiles(ctx context.Context) ([]models.Profile, error) {
	return s.store.Profiles(ctx)
}

// AssignProfile sets or, with a nil profileID, clears the user's profile.
func (s *UserService) AssignProfile(ctx context.Context, userID uint, profileID *uint) (*models.User, error) {
	if profileID != nil {
		ok, err := s.store.ProfileExists(ctx, *profileID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ValidationError{Violations: map[string]string{"profile_id": "not_found"}}
		}
	}
	if err := s.store.SetProfile(ctx, userID, profileID); err != nil {
		return nil, err
	}
	s.onChange(userID)
	return s.store.Get(ctx, userID)
}

// Delete removes a user. Callers cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor, userID uint) error {
	if actor == userID {
		return invalidf("cannot delete yourself")
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return err
	}
	s.onChange(userID)
	return nil
}

// SetActive activates or deactivates a user. A deactivated user's tokens
// stop authenticating; callers cannot deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, actor, userID uint, active bool) (*models.User, error) {
	if !active && actor == userID {
		return nil, invalidf("cannot deactivate yourself")
	}
	if err := s.store.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	s.onChange(userID)
	return s.store.Get(ctx, userID)
}
