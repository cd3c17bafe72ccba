package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkLogStore struct {
	WorkLogStore
	created []models.WorkLog
	prev    models.WorkLog
	next    models.WorkLog
}

func (f *fakeWorkLogStore) Create(_ context.Context, w *models.WorkLog) error {
	f.created = append(f.created, *w)
	return nil
}

func (f *fakeWorkLogStore) Update(_ context.Context, prev models.WorkLog, next *models.WorkLog) error {
	f.prev, f.next = prev, *next
	return nil
}

func TestWorkLogCreateValidation(t *testing.T) {
	store := &fakeWorkLogStore{}
	svc := NewWorkLogService(store)

	_, err := svc.Create(context.Background(), 0, WorkLogInput{DurationMinutes: ptr(0)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "required", verr.Violations["project_id"])
	assert.Equal(t, "required", verr.Violations["work_date"])
	assert.Equal(t, "must_be_positive", verr.Violations["duration_minutes"])
	assert.Equal(t, "required", verr.Violations["user_id"])
	assert.Empty(t, store.created)
}

func TestWorkLogCreate(t *testing.T) {
	store := &fakeWorkLogStore{}
	svc := NewWorkLogService(store)
	day, _ := models.ParseDate("2025-10-01")
	project := uuid.New()

	w, err := svc.Create(context.Background(), 5, WorkLogInput{
		ProjectID:       &project,
		WorkDate:        &day,
		DurationMinutes: ptr(90),
		Memo:            ptr("wiring"),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), w.UserID)
	assert.Equal(t, 90, w.DurationMinutes)
	assert.Equal(t, "wiring", w.Memo)
	require.Len(t, store.created, 1)
}

func TestWorkLogUpdatePassesPreviousState(t *testing.T) {
	store := &fakeWorkLogStore{}
	svc := NewWorkLogService(store)
	day, _ := models.ParseDate("2025-10-01")
	current := &models.WorkLog{ID: uuid.New(), ProjectID: uuid.New(), UserID: 1, WorkDate: day, DurationMinutes: 60}
	moved := uuid.New()

	next, err := svc.Update(context.Background(), current, WorkLogInput{ProjectID: &moved, DurationMinutes: ptr(30)})
	require.NoError(t, err)
	assert.Equal(t, 60, store.prev.DurationMinutes)
	assert.Equal(t, current.ProjectID, store.prev.ProjectID)
	assert.Equal(t, moved, next.ProjectID)
	assert.Equal(t, 30, next.DurationMinutes)

	_, err = svc.Update(context.Background(), current, WorkLogInput{DurationMinutes: ptr(-1)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
