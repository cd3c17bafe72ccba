package storage

import (
	"context"
	"time"

	"github.com/diewo77/go-workhours/internal/logger"
	"github.com/diewo77/go-workhours/internal/models"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const itemBatchSize = 100

const itemsSavepoint = "invoice_items"

// InvoiceStore is the gorm-backed services.InvoiceStore.
type InvoiceStore struct {
	db   *gorm.DB
	log  zerolog.Logger
	inTx bool
}

func NewInvoiceStore(db *gorm.DB, log zerolog.Logger) *InvoiceStore {
	return &InvoiceStore{db: db, log: log}
}

// WithinTx begins a transaction, commits when fn succeeds and rolls back otherwise.
// A failed rollback is logged, not swallowed.
func (s *InvoiceStore) WithinTx(ctx context.Context, fn func(tx services.InvoiceStore) error) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(&InvoiceStore{db: tx, log: s.log, inTx: true}); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			s.log.Error().Err(rbErr).Str(logger.FieldStage, "rollback").Msg("transaction rollback failed")
		}
		return err
	}
	return translate(tx.Commit().Error)
}

func (s *InvoiceStore) InvoiceNumbersBetween(ctx context.Context, lo, hi string) ([]string, error) {
	var numbers []string
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("invoice_number BETWEEN ? AND ?", lo, hi).
		Pluck("invoice_number", &numbers).Error
	return numbers, translate(err)
}

func (s *InvoiceStore) CountForMonth(ctx context.Context, month string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).Where("billing_month = ?", month).Count(&n).Error
	return n, translate(err)
}

func (s *InvoiceStore) CreateHeader(ctx context.Context, inv *models.Invoice) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(inv).Error)
}

func (s *InvoiceStore) CreateItems(ctx context.Context, items []models.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	if !s.inTx {
		return translate(s.db.WithContext(ctx).CreateInBatches(items, itemBatchSize).Error)
	}
	// Postgres aborts the whole transaction on a failed statement. Rolling
	// back to the savepoint keeps it usable for the caller's cleanup.
	tx := s.db.WithContext(ctx)
	if err := tx.SavePoint(itemsSavepoint).Error; err != nil {
		return translate(err)
	}
	if err := tx.CreateInBatches(items, itemBatchSize).Error; err != nil {
		if rbErr := tx.RollbackTo(itemsSavepoint).Error; rbErr != nil {
			s.log.Warn().Err(rbErr).Str(logger.FieldStage, "rollback_items").Msg("rollback to savepoint failed")
		}
		return translate(err)
	}
	return nil
}

func (s *InvoiceStore) DeleteHeader(ctx context.Context, id uuid.UUID) error {
	return translate(s.db.WithContext(ctx).Delete(&models.Invoice{}, "id = ?", id).Error)
}

func (s *InvoiceStore) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items", orderItems).
		First(&inv, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

// List loads headers then all their items in one batched preload query.
func (s *InvoiceStore) List(ctx context.Context, status models.InvoiceStatus) ([]models.Invoice, error) {
	q := s.db.WithContext(ctx).Model(&models.Invoice{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	invoices := []models.Invoice{}
	err := q.Preload("Items", orderItems).
		Order("issue_date DESC").Order("invoice_number DESC").
		Find(&invoices).Error
	return invoices, translate(err)
}

func (s *InvoiceStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error) {
	res := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, services.ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes items then the header in one transaction.
func (s *InvoiceStore) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Invoice{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return services.ErrNotFound
		}
		return nil
	}))
}

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}
