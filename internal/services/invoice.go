package services

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/go-workhours/internal/events"
	"github.com/diewo77/go-workhours/internal/logger"
	"github.com/diewo77/go-workhours/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InvoiceService reads closed invoices and applies the few changes allowed after closing.
type InvoiceService struct {
	store     InvoiceStore
	publisher events.Publisher
	log       zerolog.Logger
}

func NewInvoiceService(store InvoiceStore, publisher events.Publisher, log zerolog.Logger) *InvoiceService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &InvoiceService{store: store, publisher: publisher, log: log}
}

// Get returns one invoice with its items ordered by sort_order.
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	return s.store.Get(ctx, id)
}

// List returns invoices newest first, optionally filtered by status.
func (s *InvoiceService) List(ctx context.Context, status string) ([]models.Invoice, error) {
	st := models.InvoiceStatus(status)
	if status != "" && !st.Valid() {
		return nil, invalidf("unknown status %q", status)
	}
	return s.store.List(ctx, st)
}

// UpdateStatus changes only the status of an invoice.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor uint) (*models.Invoice, error) {
	st := models.InvoiceStatus(status)
	if !st.Valid() {
		return nil, invalidf("status must be one of sent, paid, cancelled")
	}
	inv, err := s.store.UpdateStatus(ctx, id, st)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Str(logger.FieldInvoiceID, id.String()).Uint(logger.FieldActor, actor).
				Str(logger.FieldStage, "update_status").Msg("invoice update failed")
		}
		return nil, err
	}
	publish(ctx, s.publisher, s.log, events.InvoiceEvent{
		Type:          events.TypeInvoiceStatusChanged,
		InvoiceID:     inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Month:         inv.BillingMonth,
		Status:        string(inv.Status),
		Actor:         actor,
		OccurredAt:    time.Now().UTC(),
	})
	return inv, nil
}

// Delete removes an invoice and every one of its items.
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID, actor uint) error {
	inv, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error().Err(err).Str(logger.FieldInvoiceID, id.String()).Uint(logger.FieldActor, actor).
				Str(logger.FieldStage, "delete").Msg("invoice delete failed")
		}
		return err
	}
	publish(ctx, s.publisher, s.log, events.InvoiceEvent{
		Type:          events.TypeInvoiceDeleted,
		InvoiceID:     inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Month:         inv.BillingMonth,
		Actor:         actor,
		OccurredAt:    time.Now().UTC(),
	})
	return nil
}
