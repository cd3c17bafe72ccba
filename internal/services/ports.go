package services

import (
	"context"
	"time"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/google/uuid"
)

// TimeEntry is the slice of a worklog the aggregator needs.
type TimeEntry struct {
	ProjectID       uuid.UUID
	WorkDate        time.Time
	DurationMinutes int
}

// Ledger answers range queries over logged time. The range is half-open: [start, end).
type Ledger interface {
	QueryTimeEntries(ctx context.Context, start, end time.Time) ([]TimeEntry, error)
}

// ProjectRef is the display data used to label an aggregated line.
type ProjectRef struct {
	ID           uuid.UUID
	ManagementNo string
	MachineNo    string
}

// ProjectResolver looks up many projects in a single round trip.
type ProjectResolver interface {
	ResolveProjects(ctx context.Context, ids []uuid.UUID) ([]ProjectRef, error)
}

// InvoiceStore persists closed invoices.
type InvoiceStore interface {
	// WithinTx runs fn against a store bound to one transaction.
	WithinTx(ctx context.Context, fn func(tx InvoiceStore) error) error
	// InvoiceNumbersBetween returns numbers in the inclusive range [lo, hi].
	InvoiceNumbersBetween(ctx context.Context, lo, hi string) ([]string, error)
	CountForMonth(ctx context.Context, month string) (int64, error)
	CreateHeader(ctx context.Context, inv *models.Invoice) error
	CreateItems(ctx context.Context, items []models.InvoiceItem) error
	DeleteHeader(ctx context.Context, id uuid.UUID) error
	// Get returns ErrNotFound when id is unknown. Items are ordered by sort_order.
	Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, status models.InvoiceStatus) ([]models.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error)
	// Delete removes items then header. Returns ErrNotFound when id is unknown.
	Delete(ctx context.Context, id uuid.UUID) error
}
