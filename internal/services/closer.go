package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/diewo77/go-workhours/internal/events"
	"github.com/diewo77/go-workhours/internal/logger"
	"github.com/diewo77/go-workhours/internal/models"
	"github.com/rs/zerolog"
)

// Closer turns a month's preview into a persisted, numbered invoice.
type Closer struct {
	aggregator *Aggregator
	store      InvoiceStore
	policy     ReclosePolicy
	publisher  events.Publisher
	log        zerolog.Logger
	now        func() time.Time
	locks      monthLocks
}

// CloserOption customizes a Closer.
type CloserOption func(*Closer)

// WithReclosePolicy replaces the default AllowReclose policy.
func WithReclosePolicy(p ReclosePolicy) CloserOption {
	return func(c *Closer) { c.policy = p }
}

// WithPublisher sets where invoice.closed events go.
func WithPublisher(p events.Publisher) CloserOption {
	return func(c *Closer) { c.publisher = p }
}

// WithClock overrides time.Now, used for the issue date.
func WithClock(now func() time.Time) CloserOption {
	return func(c *Closer) { c.now = now }
}

func NewCloser(aggregator *Aggregator, store InvoiceStore, log zerolog.Logger, opts ...CloserOption) *Closer {
	c := &Closer{
		aggregator: aggregator,
		store:      store,
		policy:     AllowReclose{},
		publisher:  events.Nop{},
		log:        log,
		now:        time.Now,
		locks:      monthLocks{m: make(map[string]*monthLock)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close persists the month's invoice on behalf of actor and returns it as stored.
func (c *Closer) Close(ctx context.Context, month string, actor uint) (*models.Invoice, error) {
	if actor == 0 {
		return nil, invalidf("close requires an authenticated actor")
	}
	preview, err := c.aggregator.Preview(ctx, month)
	if err != nil {
		return nil, err
	}
	m, _ := ParseMonth(month)
	log := c.log.With().Str(logger.FieldMonth, m.String()).Uint(logger.FieldActor, actor).Logger()

	if len(preview.Lines) == 0 {
		log.Info().Str(logger.FieldStage, "preview").Msg("close rejected: nothing to invoice")
		return nil, opErr("close", m.String(), ErrNothingToInvoice, nil)
	}

	// Serializes sequence read and header insert within this process; the
	// unique index on invoice_number catches races with other processes.
	unlock := c.locks.lock(m.String())
	defer unlock()

	if err := c.policy.CheckReclose(ctx, c.store, m); err != nil {
		if errors.Is(err, ErrAlreadyClosed) {
			log.Info().Str(logger.FieldStage, "reclose_policy").Msg("close rejected: month already closed")
			return nil, opErr("close", m.String(), ErrAlreadyClosed, nil)
		}
		log.Error().Err(err).Str(logger.FieldStage, "reclose_policy").Msg("close failed")
		return nil, opErr("close", m.String(), ErrPersistenceFailed, err)
	}

	lo, hi := InvoiceNumberRange(m)
	numbers, err := c.store.InvoiceNumbersBetween(ctx, lo, hi)
	if err != nil {
		log.Error().Err(err).Str(logger.FieldStage, "read_sequence").Msg("close failed")
		return nil, opErr("close", m.String(), ErrPersistenceFailed, err)
	}
	seq, err := NextInvoiceSequence(m, numbers)
	if err != nil {
		log.Warn().Str(logger.FieldStage, "read_sequence").Msg("close rejected: sequence exhausted")
		return nil, opErr("close", m.String(), ErrSequenceExhausted, nil)
	}

	inv := &models.Invoice{
		InvoiceNumber: FormatInvoiceNumber(m, seq),
		BillingMonth:  m.String(),
		IssueDate:     models.NewDate(c.now()),
		TotalAmount:   preview.TotalHours,
		Status:        models.InvoiceStatusSent,
		ClosedBy:      actor,
	}
	log = log.With().Str(logger.FieldInvoiceNo, inv.InvoiceNumber).Logger()

	err = c.store.WithinTx(ctx, func(tx InvoiceStore) error {
		if err := tx.CreateHeader(ctx, inv); err != nil {
			return &stageError{stage: "insert_header", err: err}
		}
		items := make([]models.InvoiceItem, len(preview.Lines))
		for i, line := range preview.Lines {
			items[i] = models.InvoiceItem{
				InvoiceID:    inv.ID,
				ManagementNo: line.ManagementNo,
				MachineNo:    line.MachineNo,
				ActualHours:  line.ActualHours,
				SortOrder:    i,
			}
		}
		if err := tx.CreateItems(ctx, items); err != nil {
			// A header must never outlive a failed item insert, even where
			// the store cannot roll back on its own.
			if delErr := tx.DeleteHeader(ctx, inv.ID); delErr != nil {
				log.Error().Err(delErr).Str(logger.FieldStage, "rollback_header").
					Str(logger.FieldInvoiceID, inv.ID.String()).Msg("compensating delete failed")
			}
			return &stageError{stage: "insert_items", err: err}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str(logger.FieldStage, stageOf(err, "commit")).Msg("close failed")
		if errors.Is(err, ErrConflict) {
			return nil, opErr("close", m.String(), ErrConflict, err)
		}
		return nil, opErr("close", m.String(), ErrPersistenceFailed, err)
	}

	saved, err := c.store.Get(ctx, inv.ID)
	if err != nil {
		log.Error().Err(err).Str(logger.FieldStage, "read_back").Msg("close failed")
		return nil, opErr("close", m.String(), ErrPersistenceFailed, err)
	}

	publish(ctx, c.publisher, log, events.InvoiceEvent{
		Type:          events.TypeInvoiceClosed,
		InvoiceID:     saved.ID.String(),
		InvoiceNumber: saved.InvoiceNumber,
		Month:         saved.BillingMonth,
		TotalAmount:   saved.TotalAmount.String(),
		Status:        string(saved.Status),
		Actor:         actor,
		OccurredAt:    c.now().UTC(),
	})
	log.Info().Str(logger.FieldInvoiceID, saved.ID.String()).Int("items", len(saved.Items)).Msg("invoice closed")
	return saved, nil
}

// publish is best effort: a broker outage never fails the request.
func publish(ctx context.Context, p events.Publisher, log zerolog.Logger, e events.InvoiceEvent) {
	if err := p.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("event", e.Type).Msg("event publish failed")
	}
}

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func stageOf(err error, fallback string) string {
	var se *stageError
	if errors.As(err, &se) {
		return se.stage
	}
	return fallback
}

// monthLocks hands out one mutex per month key. Entries are reference
// counted and dropped when the last holder or waiter unlocks.
type monthLocks struct {
	mu sync.Mutex
	m  map[string]*monthLock
}

type monthLock struct {
	sync.Mutex
	refs int
}

func (l *monthLocks) lock(key string) (unlock func()) {
	l.mu.Lock()
	ml, ok := l.m[key]
	if !ok {
		ml = &monthLock{}
		l.m[key] = ml
	}
	ml.refs++
	l.mu.Unlock()

	ml.Lock()
	return func() {
		ml.Unlock()
		l.mu.Lock()
		ml.refs--
		if ml.refs == 0 {
			delete(l.m, key)
		}
		l.mu.Unlock()
	}
}

func (l *monthLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
