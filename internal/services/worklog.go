package services

import (
	"context"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/diewo77/go-workhours/validation"
	"github.com/google/uuid"
)

// WorkLogFilter narrows a worklog listing. Zero values mean "any".
type WorkLogFilter struct {
	ProjectID uuid.UUID
	UserID    uint
	WorkDate  *models.Date
	Page      Page
}

// MinutesByUser is one row of a project summary.
type MinutesByUser struct {
	UserID       uint  `json:"user_id"`
	TotalMinutes int64 `json:"total_minutes"`
}

// MinutesByDate is one row of a project summary.
type MinutesByDate struct {
	WorkDate     models.Date `json:"work_date"`
	TotalMinutes int64       `json:"total_minutes"`
}

// WorkLogSummary totals a project's ledger by user and by day.
type WorkLogSummary struct {
	ProjectID    uuid.UUID       `json:"project_id"`
	TotalMinutes int64           `json:"total_minutes"`
	ByUser       []MinutesByUser `json:"by_user"`
	ByDate       []MinutesByDate `json:"by_date"`
}

// WorkLogStore persists ledger entries. Every write keeps the owning
// project's actual_minutes in step within the same transaction.
type WorkLogStore interface {
	// Create returns ErrNotFound when the project does not exist.
	Create(ctx context.Context, w *models.WorkLog) error
	Get(ctx context.Context, id uuid.UUID) (*models.WorkLog, error)
	// Update writes next and moves minutes from prev's project total to next's.
	Update(ctx context.Context, prev models.WorkLog, next *models.WorkLog) error
	Delete(ctx context.Context, w *models.WorkLog) error
	List(ctx context.Context, f WorkLogFilter) ([]models.WorkLog, int64, error)
	Summary(ctx context.Context, projectID uuid.UUID) (*WorkLogSummary, error)
}

// WorkLogInput is the writable part of a worklog. Nil fields are left unchanged on update.
type WorkLogInput struct {
	ProjectID       *uuid.UUID   `json:"project_id"`
	WorkDate        *models.Date `json:"work_date"`
	DurationMinutes *int         `json:"duration_minutes"`
	WorkCategory    *string      `json:"work_category"`
	Memo            *string      `json:"memo"`
}

// WorkLogService is the time-entry ledger.
type WorkLogService struct {
	store WorkLogStore
}

func NewWorkLogService(store WorkLogStore) *WorkLogService {
	return &WorkLogService{store: store}
}

func (s *WorkLogService) Create(ctx context.Context, userID uint, in WorkLogInput) (*models.WorkLog, error) {
	v := validation.Violations{}
	if in.ProjectID == nil || *in.ProjectID == uuid.Nil {
		v["project_id"] = "required"
	}
	if in.WorkDate == nil || in.WorkDate.IsZero() {
		v["work_date"] = "required"
	}
	if in.DurationMinutes == nil {
		v["duration_minutes"] = "required"
	} else {
		validation.PositiveInt("duration_minutes", *in.DurationMinutes, v)
	}
	if userID == 0 {
		v["user_id"] = "required"
	}
	if err := violations(v); err != nil {
		return nil, err
	}

	w := &models.WorkLog{
		ProjectID:       *in.ProjectID,
		UserID:          userID,
		WorkDate:        models.NewDate(in.WorkDate.Time),
		DurationMinutes: *in.DurationMinutes,
	}
	applyOptional(w, in)
	if err := s.store.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WorkLogService) Get(ctx context.Context, id uuid.UUID) (*models.WorkLog, error) {
	return s.store.Get(ctx, id)
}

// Update applies a partial change to current, which the caller has already loaded and authorized.
func (s *WorkLogService) Update(ctx context.Context, current *models.WorkLog, in WorkLogInput) (*models.WorkLog, error) {
	v := validation.Violations{}
	if in.ProjectID != nil && *in.ProjectID == uuid.Nil {
		v["project_id"] = "required"
	}
	if in.DurationMinutes != nil {
		validation.PositiveInt("duration_minutes", *in.DurationMinutes, v)
	}
	if err := violations(v); err != nil {
		return nil, err
	}

	prev := *current
	next := *current
	if in.ProjectID != nil {
		next.ProjectID = *in.ProjectID
	}
	if in.WorkDate != nil && !in.WorkDate.IsZero() {
		next.WorkDate = models.NewDate(in.WorkDate.Time)
	}
	if in.DurationMinutes != nil {
		next.DurationMinutes = *in.DurationMinutes
	}
	applyOptional(&next, in)
	if err := s.store.Update(ctx, prev, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *WorkLogService) Delete(ctx context.Context, w *models.WorkLog) error {
	return s.store.Delete(ctx, w)
}

func (s *WorkLogService) List(ctx context.Context, f WorkLogFilter) ([]models.WorkLog, int64, error) {
	f.Page = NewPage(f.Page.Page, f.Page.PerPage)
	return s.store.List(ctx, f)
}

func (s *WorkLogService) Summary(ctx context.Context, projectID uuid.UUID) (*WorkLogSummary, error) {
	return s.store.Summary(ctx, projectID)
}

func applyOptional(w *models.WorkLog, in WorkLogInput) {
	if in.WorkCategory != nil {
		w.WorkCategory = *in.WorkCategory
	}
	if in.Memo != nil {
		w.Memo = *in.Memo
	}
}
