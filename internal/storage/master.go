package storage

import (
	"context"

	"github.com/diewo77/go-workhours/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MasterStore persists one lookup table.
type MasterStore[T any, P services.MasterPtr[T]] struct {
	db *gorm.DB
}

func NewMasterStore[T any, P services.MasterPtr[T]](db *gorm.DB) *MasterStore[T, P] {
	return &MasterStore[T, P]{db: db}
}

func (s *MasterStore[T, P]) nameColumn() string {
	return P(new(T)).NameColumn()
}

// List orders by sort_order, then name.
func (s *MasterStore[T, P]) List(ctx context.Context, includeInactive bool) ([]T, error) {
	q := s.db.WithContext(ctx).Model(new(T))
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	rows := []T{}
	err := q.Order("sort_order ASC").Order(s.nameColumn() + " ASC").Find(&rows).Error
	return rows, translate(err)
}

func (s *MasterStore[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	row := new(T)
	if err := s.db.WithContext(ctx).First(row, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return row, nil
}

// FindByName looks a row up by its unique name.
func (s *MasterStore[T, P]) FindByName(ctx context.Context, name string) (*T, error) {
	row := new(T)
	if err := s.db.WithContext(ctx).Where(s.nameColumn()+" = ?", name).First(row).Error; err != nil {
		return nil, translate(err)
	}
	return row, nil
}

func (s *MasterStore[T, P]) Create(ctx context.Context, row *T) error {
	return translate(s.db.WithContext(ctx).Create(row).Error)
}

func (s *MasterStore[T, P]) Update(ctx context.Context, row *T) error {
	res := s.db.WithContext(ctx).Model(row).Select("*").Omit("id", "created_at").Updates(row)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *MasterStore[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *MasterStore[T, P]) NameTaken(ctx context.Context, name string, except uuid.UUID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(new(T)).
		Where(s.nameColumn()+" = ? AND id <> ?", name, except).
		Count(&n).Error
	return n > 0, translate(err)
}
