package services

import (
	"context"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/diewo77/go-workhours/validation"
	"github.com/google/uuid"
)

// MasterPtr constrains P to be *T and a lookup table row.
type MasterPtr[T any] interface {
	*T
	models.MasterRecord
}

// MasterStore persists rows of one lookup table.
type MasterStore[T any] interface {
	List(ctx context.Context, includeInactive bool) ([]T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, row *T) error
	Update(ctx context.Context, row *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	NameTaken(ctx context.Context, name string, except uuid.UUID) (bool, error)
}

// MasterService implements CRUD for any lookup table.
type MasterService[T any, P MasterPtr[T]] struct {
	store MasterStore[T]
}

func NewMasterService[T any, P MasterPtr[T]](store MasterStore[T]) *MasterService[T, P] {
	return &MasterService[T, P]{store: store}
}

// New returns a blank row that defaults to active, ready for decoding a request into.
func (s *MasterService[T, P]) New() *T {
	row := new(T)
	P(row).Base().IsActive = true
	return row
}

func (s *MasterService[T, P]) List(ctx context.Context, includeInactive bool) ([]T, error) {
	return s.store.List(ctx, includeInactive)
}

func (s *MasterService[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.store.Get(ctx, id)
}

func (s *MasterService[T, P]) Create(ctx context.Context, row *T) error {
	p := P(row)
	p.Base().ID = uuid.Nil
	if err := s.validate(ctx, p, uuid.Nil); err != nil {
		return err
	}
	return s.store.Create(ctx, row)
}

// Update replaces every writable column of the row identified by id.
func (s *MasterService[T, P]) Update(ctx context.Context, id uuid.UUID, row *T) (*T, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := P(row)
	base := p.Base()
	base.ID = id
	base.CreatedAt = P(current).Base().CreatedAt
	if err := s.validate(ctx, p, id); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *MasterService[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *MasterService[T, P]) validate(ctx context.Context, p P, except uuid.UUID) error {
	v := validation.Violations{}
	validation.Required(p.NameColumn(), p.MasterName(), v)
	validation.MaxLen(p.NameColumn(), p.MasterName(), 100, v)
	validation.Color("background_color", p.Base().BackgroundColor, v)
	if err := violations(v); err != nil {
		return err
	}
	taken, err := s.store.NameTaken(ctx, p.MasterName(), except)
	if err != nil {
		return err
	}
	if taken {
		return ErrConflict
	}
	return nil
}
