package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users    map[uint]*models.User
	profiles map[uint]bool
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Get(_ context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SetProfile(_ context.Context, userID uint, profileID *uint) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.ProfileID = profileID
	return nil
}

func (f *fakeUsers) SetActive(_ context.Context, userID uint, active bool) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint) error {
	if _, ok := f.users[id]; !ok {
		return ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) Profiles(context.Context) ([]models.Profile, error) { return nil, nil }

func (f *fakeUsers) ProfileExists(_ context.Context, id uint) (bool, error) {
	return f.profiles[id], nil
}

func TestUserServiceAssignProfile(t *testing.T) {
	store := &fakeUsers{
		users:    map[uint]*models.User{1: {ID: 1}, 2: {ID: 2}},
		profiles: map[uint]bool{10: true},
	}
	var changed []uint
	svc := NewUserService(store, func(id uint) { changed = append(changed, id) })

	profile := uint(10)
	u, err := svc.AssignProfile(context.Background(), 2, &profile)
	require.NoError(t, err)
	require.NotNil(t, u.ProfileID)
	assert.Equal(t, uint(10), *u.ProfileID)
	assert.Equal(t, []uint{2}, changed)

	missing := uint(99)
	_, err = svc.AssignProfile(context.Background(), 2, &missing)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	u, err = svc.AssignProfile(context.Background(), 2, nil)
	require.NoError(t, err)
	assert.Nil(t, u.ProfileID)

	_, err = svc.AssignProfile(context.Background(), 42, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserServiceDelete(t *testing.T) {
	store := &fakeUsers{users: map[uint]*models.User{1: {ID: 1}, 2: {ID: 2}}}
	svc := NewUserService(store, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1, 1), ErrInvalidArgument)
	require.NoError(t, svc.Delete(context.Background(), 1, 2))
	assert.ErrorIs(t, svc.Delete(context.Background(), 1, 2), ErrNotFound)
}

func TestUserServiceSetActive(t *testing.T) {
	store := &fakeUsers{users: map[uint]*models.User{1: {ID: 1, IsActive: true}, 2: {ID: 2, IsActive: true}}}
	var changed []uint
	svc := NewUserService(store, func(id uint) { changed = append(changed, id) })
	ctx := context.Background()

	u, err := svc.SetActive(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	assert.Equal(t, []uint{2}, changed)

	u, err = svc.SetActive(ctx, 1, 2, true)
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	_, err = svc.SetActive(ctx, 1, 1, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.True(t, store.users[1].IsActive)

	_, err = svc.SetActive(ctx, 1, 42, true)
	assert.ErrorIs(t, err, ErrNotFound)
}
