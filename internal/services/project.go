package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/diewo77/go-workhours/validation"
	"github.com/google/uuid"
)

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	ManagementNo    string // substring
	MachineNo       string // substring
	IncludeInactive bool
	Page            Page
}

// ProjectStore persists projects. Create and Update return ErrConflict on a duplicate management_no.
type ProjectStore interface {
	Create(ctx context.Context, p *models.Project) error
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	List(ctx context.Context, f ProjectFilter) ([]models.Project, int64, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	ManagementNoTaken(ctx context.Context, managementNo string, except uuid.UUID) (bool, error)
}

// ProgressLookup finds the progress master row named by a project status.
type ProgressLookup interface {
	FindByName(ctx context.Context, name string) (*models.ProgressStatus, error)
}

// ProjectInput is the writable part of a project. Nil fields are left unchanged on update.
type ProjectInput struct {
	ManagementNo      *string      `json:"management_no"`
	MachineNo         *string      `json:"machine_no"`
	Series            *string      `json:"series"`
	Generation        *string      `json:"generation"`
	Tonnage           *string      `json:"tonnage"`
	SpecTags          *string      `json:"spec_tags"`
	CommissionContent *string      `json:"commission_content"`
	InquiryType       *string      `json:"inquiry_type"`
	WorkCategory      *string      `json:"work_category"`
	EstimatedMinutes  *int         `json:"estimated_minutes"`
	Status            *string      `json:"status"`
	StartDate         *models.Date `json:"start_date"`
	CompletionDate    *models.Date `json:"completion_date"`
	DrawingDeadline   *models.Date `json:"drawing_deadline"`
}

// ProjectService manages projects and applies progress-status date triggers.
type ProjectService struct {
	store    ProjectStore
	progress ProgressLookup
	now      func() time.Time
}

func NewProjectService(store ProjectStore, progress ProgressLookup) *ProjectService {
	return &ProjectService{store: store, progress: progress, now: time.Now}
}

func (s *ProjectService) Create(ctx context.Context, createdBy uint, in ProjectInput) (*models.Project, error) {
	v := validation.Violations{}
	if in.ManagementNo == nil {
		v["management_no"] = "required"
	} else {
		validation.Required("management_no", *in.ManagementNo, v)
		validation.MaxLen("management_no", *in.ManagementNo, 100, v)
	}
	if in.EstimatedMinutes != nil {
		validation.NonNegativeInt("estimated_minutes", *in.EstimatedMinutes, v)
	}
	if err := violations(v); err != nil {
		return nil, err
	}

	p := &models.Project{
		Status:    models.ProjectStatusInProgress,
		CreatedBy: createdBy,
		IsActive:  true,
	}
	applyProjectInput(p, in)
	if err := s.ensureUnique(ctx, p.ManagementNo, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.applyTriggers(ctx, p); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.store.Get(ctx, id)
}

func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	v := validation.Violations{}
	if in.ManagementNo != nil {
		validation.Required("management_no", *in.ManagementNo, v)
		validation.MaxLen("management_no", *in.ManagementNo, 100, v)
	}
	if in.EstimatedMinutes != nil {
		validation.NonNegativeInt("estimated_minutes", *in.EstimatedMinutes, v)
	}
	if err := violations(v); err != nil {
		return nil, err
	}

	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	statusChanged := in.Status != nil && *in.Status != p.Status
	applyProjectInput(p, in)
	if in.ManagementNo != nil {
		if err := s.ensureUnique(ctx, p.ManagementNo, p.ID); err != nil {
			return nil, err
		}
	}
	if statusChanged {
		if err := s.applyTriggers(ctx, p); err != nil {
			return nil, err
		}
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) List(ctx context.Context, f ProjectFilter) ([]models.Project, int64, error) {
	f.Page = NewPage(f.Page.Page, f.Page.PerPage)
	return s.store.List(ctx, f)
}

// Delete is a soft delete: logged time keeps resolving to the project.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Deactivate(ctx, id)
}

func (s *ProjectService) ensureUnique(ctx context.Context, managementNo string, except uuid.UUID) error {
	taken, err := s.store.ManagementNoTaken(ctx, managementNo, except)
	if err != nil {
		return err
	}
	if taken {
		return ErrConflict
	}
	return nil
}

// applyTriggers fills empty start/completion dates when the project's status
// names a progress master row with the matching trigger set.
func (s *ProjectService) applyTriggers(ctx context.Context, p *models.Project) error {
	if s.progress == nil || p.Status == "" {
		return nil
	}
	ps, err := s.progress.FindByName(ctx, p.Status)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	today := models.NewDate(s.now())
	if ps.StartDateTrigger && p.StartDate == nil {
		p.StartDate = &today
	}
	if ps.CompletionTrigger && p.CompletionDate == nil {
		p.CompletionDate = &today
	}
	return nil
}

func applyProjectInput(p *models.Project, in ProjectInput) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&p.ManagementNo, in.ManagementNo)
	setString(&p.MachineNo, in.MachineNo)
	setString(&p.Series, in.Series)
	setString(&p.Generation, in.Generation)
	setString(&p.Tonnage, in.Tonnage)
	setString(&p.SpecTags, in.SpecTags)
	setString(&p.CommissionContent, in.CommissionContent)
	setString(&p.InquiryType, in.InquiryType)
	setString(&p.WorkCategory, in.WorkCategory)
	setString(&p.Status, in.Status)
	if in.EstimatedMinutes != nil {
		p.EstimatedMinutes = *in.EstimatedMinutes
	}
	if in.StartDate != nil {
		p.StartDate = in.StartDate
	}
	if in.CompletionDate != nil {
		p.CompletionDate = in.CompletionDate
	}
	if in.DrawingDeadline != nil {
		p.DrawingDeadline = in.DrawingDeadline
	}
}
