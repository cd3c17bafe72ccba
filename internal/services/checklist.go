package services

import (
	"context"
	"strings"
	"time"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/diewo77/go-workhours/validation"
	"github.com/google/uuid"
)

// ChecklistStore persists project checklist items.
type ChecklistStore interface {
	// Create returns ErrNotFound when the item's project does not exist.
	Create(ctx context.Context, item *models.ChecklistItem) error
	Get(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, error)
	// List orders by sort_order then created_at. uuid.Nil lists every project.
	List(ctx context.Context, projectID uuid.UUID) ([]models.ChecklistItem, error)
	// Mutate loads the row inside a transaction, applies fn and writes it back.
	Mutate(ctx context.Context, id uuid.UUID, fn func(*models.ChecklistItem) error) (*models.ChecklistItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ChecklistInput is the writable part of an item. Nil fields are left
// unchanged on update; project_id is fixed once created.
type ChecklistInput struct {
	ProjectID   *uuid.UUID `json:"project_id"`
	Title       *string    `json:"title"`
	SortOrder   *int       `json:"sort_order"`
	IsRequired  *bool      `json:"is_required"`
	IsCompleted *bool      `json:"is_completed"`
	Memo        *string    `json:"memo"`
}

// ChecklistService manages per-project checklist items.
type ChecklistService struct {
	store ChecklistStore
	now   func() time.Time
}

func NewChecklistService(store ChecklistStore) *ChecklistService {
	return &ChecklistService{store: store, now: time.Now}
}

func validateChecklist(in ChecklistInput, v validation.Violations) {
	if in.Title != nil {
		validation.Required("title", strings.TrimSpace(*in.Title), v)
		validation.MaxLen("title", *in.Title, 255, v)
	}
	if in.SortOrder != nil {
		validation.NonNegativeInt("sort_order", *in.SortOrder, v)
	}
}

func (s *ChecklistService) Create(ctx context.Context, actor uint, in ChecklistInput) (*models.ChecklistItem, error) {
	v := validation.Violations{}
	if in.ProjectID == nil || *in.ProjectID == uuid.Nil {
		v["project_id"] = "required"
	}
	if in.Title == nil {
		v["title"] = "required"
	}
	validateChecklist(in, v)
	if err := violations(v); err != nil {
		return nil, err
	}

	item := &models.ChecklistItem{ProjectID: *in.ProjectID, CreatedBy: actor}
	s.apply(item, actor, in)
	if err := s.store.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ChecklistService) Get(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, error) {
	return s.store.Get(ctx, id)
}

func (s *ChecklistService) List(ctx context.Context, projectID uuid.UUID) ([]models.ChecklistItem, error) {
	return s.store.List(ctx, projectID)
}

// Update applies in. Setting is_completed stamps or clears the completion.
func (s *ChecklistService) Update(ctx context.Context, id uuid.UUID, actor uint, in ChecklistInput) (*models.ChecklistItem, error) {
	v := validation.Violations{}
	validateChecklist(in, v)
	if err := violations(v); err != nil {
		return nil, err
	}
	return s.store.Mutate(ctx, id, func(item *models.ChecklistItem) error {
		if in.ProjectID != nil && *in.ProjectID != item.ProjectID {
			return &ValidationError{Violations: map[string]string{"project_id": "immutable"}}
		}
		s.apply(item, actor, in)
		return nil
	})
}

// Toggle flips completion, stamping actor when the item becomes done.
func (s *ChecklistService) Toggle(ctx context.Context, id uuid.UUID, actor uint) (*models.ChecklistItem, error) {
	return s.store.Mutate(ctx, id, func(item *models.ChecklistItem) error {
		item.SetCompleted(!item.IsCompleted, actor, s.now())
		return nil
	})
}

func (s *ChecklistService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *ChecklistService) apply(item *models.ChecklistItem, actor uint, in ChecklistInput) {
	if in.Title != nil {
		item.Title = strings.TrimSpace(*in.Title)
	}
	if in.SortOrder != nil {
		item.SortOrder = *in.SortOrder
	}
	if in.IsRequired != nil {
		item.IsRequired = *in.IsRequired
	}
	if in.Memo != nil {
		item.Memo = *in.Memo
	}
	if in.IsCompleted != nil {
		item.SetCompleted(*in.IsCompleted, actor, s.now())
	}
}
