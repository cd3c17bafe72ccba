package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/go-workhours/internal/events"
	"github.com/diewo77/go-workhours/internal/models"
	"github.com/google/uuid"
)

type fakeLedger struct {
	entries []TimeEntry
	err     error
	calls   int
	mu      sync.Mutex
}

func (l *fakeLedger) QueryTimeEntries(_ context.Context, start, end time.Time) ([]TimeEntry, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	var out []TimeEntry
	for _, e := range l.entries {
		if !e.WorkDate.Before(start) && e.WorkDate.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *fakeLedger) log(project uuid.UUID, day string, minutes int) {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	l.entries = append(l.entries, TimeEntry{ProjectID: project, WorkDate: d, DurationMinutes: minutes})
}

type fakeProjects struct {
	refs map[uuid.UUID]ProjectRef
	err  error
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{refs: make(map[uuid.UUID]ProjectRef)}
}

func (p *fakeProjects) add(managementNo, machineNo string) uuid.UUID {
	id := uuid.New()
	p.refs[id] = ProjectRef{ID: id, ManagementNo: managementNo, MachineNo: machineNo}
	return id
}

func (p *fakeProjects) ResolveProjects(_ context.Context, ids []uuid.UUID) ([]ProjectRef, error) {
	if p.err != nil {
		return nil, p.err
	}
	var out []ProjectRef
	for _, id := range ids {
		if ref, ok := p.refs[id]; ok {
			out = append(out, ref)
		}
	}
	return out, nil
}

// fakeInvoices keeps invoices in memory. WithinTx snapshots state and
// restores it when fn fails, mimicking a transaction rollback.
type fakeInvoices struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]models.Invoice

	failItems   error
	failHeader  error
	failNumbers error
}

func newFakeInvoices() *fakeInvoices {
	return &fakeInvoices{invoices: make(map[uuid.UUID]models.Invoice)}
}

func (s *fakeInvoices) WithinTx(_ context.Context, fn func(tx InvoiceStore) error) error {
	s.mu.Lock()
	snapshot := make(map[uuid.UUID]models.Invoice, len(s.invoices))
	for k, v := range s.invoices {
		snapshot[k] = v
	}
	s.mu.Unlock()
	if err := fn(s); err != nil {
		s.mu.Lock()
		s.invoices = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *fakeInvoices) InvoiceNumbersBetween(_ context.Context, lo, hi string) ([]string, error) {
	if s.failNumbers != nil {
		return nil, s.failNumbers
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, inv := range s.invoices {
		if inv.InvoiceNumber >= lo && inv.InvoiceNumber <= hi {
			out = append(out, inv.InvoiceNumber)
		}
	}
	return out, nil
}

func (s *fakeInvoices) CountForMonth(_ context.Context, month string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, inv := range s.invoices {
		if inv.BillingMonth == month {
			n++
		}
	}
	return n, nil
}

func (s *fakeInvoices) CreateHeader(_ context.Context, inv *models.Invoice) error {
	if s.failHeader != nil {
		return s.failHeader
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.invoices {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return ErrConflict
		}
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	stored := *inv
	stored.Items = nil
	s.invoices[inv.ID] = stored
	return nil
}

func (s *fakeInvoices) CreateItems(_ context.Context, items []models.InvoiceItem) error {
	if s.failItems != nil {
		return s.failItems
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		inv, ok := s.invoices[it.InvoiceID]
		if !ok {
			return errors.New("foreign key violation")
		}
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		inv.Items = append(inv.Items, it)
		s.invoices[it.InvoiceID] = inv
	}
	return nil
}

func (s *fakeInvoices) DeleteHeader(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.invoices, id)
	return nil
}

func (s *fakeInvoices) Get(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	inv.Items = append([]models.InvoiceItem(nil), inv.Items...)
	sort.SliceStable(inv.Items, func(i, j int) bool { return inv.Items[i].SortOrder < inv.Items[j].SortOrder })
	return &inv, nil
}

func (s *fakeInvoices) List(_ context.Context, status models.InvoiceStatus) ([]models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Invoice
	for _, inv := range s.invoices {
		if status == "" || inv.Status == status {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.Compare(out[i].InvoiceNumber, out[j].InvoiceNumber) > 0 })
	return out, nil
}

func (s *fakeInvoices) UpdateStatus(_ context.Context, id uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	inv.Status = status
	s.invoices[id] = inv
	return &inv, nil
}

func (s *fakeInvoices) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

func (s *fakeInvoices) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invoices)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.InvoiceEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.InvoiceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
