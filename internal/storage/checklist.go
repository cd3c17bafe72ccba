package storage

import (
	"context"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChecklistStore implements services.ChecklistStore.
type ChecklistStore struct {
	db *gorm.DB
}

func NewChecklistStore(db *gorm.DB) *ChecklistStore {
	return &ChecklistStore{db: db}
}

func (s *ChecklistStore) Create(ctx context.Context, item *models.ChecklistItem) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := projectExists(tx, item.ProjectID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(item).Error
	}))
}

func (s *ChecklistStore) Get(ctx context.Context, id uuid.UUID) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *ChecklistStore) List(ctx context.Context, projectID uuid.UUID) ([]models.ChecklistItem, error) {
	q := s.db.WithContext(ctx).Model(&models.ChecklistItem{})
	if projectID != uuid.Nil {
		q = q.Where("project_id = ?", projectID)
	}
	items := []models.ChecklistItem{}
	err := q.Order("sort_order ASC").Order("created_at ASC").Find(&items).Error
	return items, translate(err)
}

func (s *ChecklistStore) Mutate(ctx context.Context, id uuid.UUID, fn func(*models.ChecklistItem) error) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&item); err != nil {
			return err
		}
		return tx.Model(&item).
			Select("title", "sort_order", "is_required", "is_completed", "completed_by", "completed_at", "memo", "updated_at").
			Updates(&item).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *ChecklistStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.ChecklistItem{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}
