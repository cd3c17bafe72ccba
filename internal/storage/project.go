package storage

import (
	"context"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStore implements services.ProjectStore and services.ProjectResolver.
type ProjectStore struct {
	db *gorm.DB
}

func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// ResolveProjects fetches every id in one IN query, inactive projects included.
func (s *ProjectStore) ResolveProjects(ctx context.Context, ids []uuid.UUID) ([]services.ProjectRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Project
	err := s.db.WithContext(ctx).
		Select("id", "management_no", "machine_no").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	refs := make([]services.ProjectRef, len(rows))
	for i, p := range rows {
		refs[i] = services.ProjectRef{ID: p.ID, ManagementNo: p.ManagementNo, MachineNo: p.MachineNo}
	}
	return refs, nil
}

func (s *ProjectStore) Create(ctx context.Context, p *models.Project) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *ProjectStore) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Update writes every column except the ledger-maintained actual_minutes.
func (s *ProjectStore) Update(ctx context.Context, p *models.Project) error {
	res := s.db.WithContext(ctx).Model(p).
		Select("*").Omit("id", "actual_minutes", "created_at", "created_by").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *ProjectStore) List(ctx context.Context, f services.ProjectFilter) ([]models.Project, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Project{})
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.ManagementNo != "" {
		q = q.Where(`management_no LIKE ? ESCAPE '\'`, containsPattern(f.ManagementNo))
	}
	if f.MachineNo != "" {
		q = q.Where(`machine_no LIKE ? ESCAPE '\'`, containsPattern(f.MachineNo))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	projects := []models.Project{}
	err := q.Order("management_no ASC").
		Offset(f.Page.Offset()).Limit(f.Page.PerPage).
		Find(&projects).Error
	return projects, total, translate(err)
}

func (s *ProjectStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *ProjectStore) ManagementNoTaken(ctx context.Context, managementNo string, except uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("management_no = ? AND id <> ?", managementNo, except).
		Count(&n).Error
	return n > 0, translate(err)
}
