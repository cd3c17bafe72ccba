package services

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecklists struct {
	items    map[uuid.UUID]models.ChecklistItem
	projects map[uuid.UUID]bool
}

func newFakeChecklists(projects ...uuid.UUID) *fakeChecklists {
	f := &fakeChecklists{items: map[uuid.UUID]models.ChecklistItem{}, projects: map[uuid.UUID]bool{}}
	for _, p := range projects {
		f.projects[p] = true
	}
	return f
}

func (f *fakeChecklists) Create(_ context.Context, item *models.ChecklistItem) error {
	if !f.projects[item.ProjectID] {
		return ErrNotFound
	}
	item.ID = uuid.New()
	f.items[item.ID] = *item
	return nil
}

func (f *fakeChecklists) Get(_ context.Context, id uuid.UUID) (*models.ChecklistItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (f *fakeChecklists) List(_ context.Context, projectID uuid.UUID) ([]models.ChecklistItem, error) {
	var out []models.ChecklistItem
	for _, it := range f.items {
		if projectID == uuid.Nil || it.ProjectID == projectID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeChecklists) Mutate(_ context.Context, id uuid.UUID, fn func(*models.ChecklistItem) error) (*models.ChecklistItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&item); err != nil {
		return nil, err
	}
	f.items[id] = item
	return &item, nil
}

func (f *fakeChecklists) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func newTestChecklistService(projects ...uuid.UUID) (*ChecklistService, *fakeChecklists) {
	store := newFakeChecklists(projects...)
	svc := NewChecklistService(store)
	svc.now = func() time.Time { return time.Date(2025, 10, 6, 8, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestChecklistCreateValidation(t *testing.T) {
	svc, _ := newTestChecklistService()
	tests := []struct {
		name  string
		in    ChecklistInput
		field string
	}{
		{"missing project", ChecklistInput{Title: ptr("Check wiring")}, "project_id"},
		{"missing title", ChecklistInput{ProjectID: ptr(uuid.New())}, "title"},
		{"blank title", ChecklistInput{ProjectID: ptr(uuid.New()), Title: ptr("   ")}, "title"},
		{"negative order", ChecklistInput{ProjectID: ptr(uuid.New()), Title: ptr("x"), SortOrder: ptr(-1)}, "sort_order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Violations, tt.field)
		})
	}
}

func TestChecklistCreateUnknownProject(t *testing.T) {
	svc, _ := newTestChecklistService()
	_, err := svc.Create(context.Background(), 1, ChecklistInput{ProjectID: ptr(uuid.New()), Title: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChecklistToggleStampsCompletion(t *testing.T) {
	project := uuid.New()
	svc, _ := newTestChecklistService(project)
	ctx := context.Background()

	item, err := svc.Create(ctx, 1, ChecklistInput{ProjectID: &project, Title: ptr(" Drawing review "), IsRequired: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "Drawing review", item.Title)
	assert.False(t, item.IsCompleted)
	assert.Equal(t, uint(1), item.CreatedBy)

	done, err := svc.Toggle(ctx, item.ID, 7)
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedBy)
	assert.Equal(t, uint(7), *done.CompletedBy)
	assert.Equal(t, svc.now(), *done.CompletedAt)

	undone, err := svc.Toggle(ctx, item.ID, 7)
	require.NoError(t, err)
	assert.False(t, undone.IsCompleted)
	assert.Nil(t, undone.CompletedBy)
	assert.Nil(t, undone.CompletedAt)

	_, err = svc.Toggle(ctx, uuid.New(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChecklistUpdate(t *testing.T) {
	project := uuid.New()
	svc, _ := newTestChecklistService(project)
	ctx := context.Background()
	item, err := svc.Create(ctx, 1, ChecklistInput{ProjectID: &project, Title: ptr("Harness check")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, item.ID, 2, ChecklistInput{SortOrder: ptr(5), IsCompleted: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "Harness check", updated.Title)
	assert.Equal(t, 5, updated.SortOrder)
	require.NotNil(t, updated.CompletedBy)
	assert.Equal(t, uint(2), *updated.CompletedBy)

	_, err = svc.Update(ctx, item.ID, 2, ChecklistInput{ProjectID: ptr(uuid.New())})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "immutable", verr.Violations["project_id"])

	_, err = svc.Update(ctx, item.ID, 2, ChecklistInput{Title: ptr("")})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
