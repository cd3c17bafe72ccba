package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/go-workhours/internal/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// october2025 seeds the ledger with the reference month: two projects,
// one entry in September that must be ignored.
func october2025(t *testing.T) (*fakeLedger, *fakeProjects) {
	t.Helper()
	ledger := &fakeLedger{}
	projects := newFakeProjects()
	m1 := projects.add("M-001", "NEX-100")
	m2 := projects.add("M-002", "FNX-200")

	ledger.log(m1, "2025-10-01", 60)
	ledger.log(m1, "2025-10-15", 30)
	ledger.log(m2, "2025-10-31", 45)
	ledger.log(m1, "2025-09-30", 600)
	ledger.log(m2, "2025-11-01", 600)
	return ledger, projects
}

func TestPreviewReferenceMonth(t *testing.T) {
	ledger, projects := october2025(t)
	agg := NewAggregator(ledger, projects, logger.Nop())

	p, err := agg.Preview(context.Background(), "2025-10")
	require.NoError(t, err)

	assert.Equal(t, "2025-10", p.Month)
	assert.Equal(t, "2.25", p.TotalHours.String())
	require.Len(t, p.Lines, 2)
	assert.Equal(t, "M-001", p.Lines[0].ManagementNo)
	assert.Equal(t, "NEX-100", p.Lines[0].MachineNo)
	assert.Equal(t, "1.50", p.Lines[0].ActualHours.String())
	assert.Equal(t, "M-002", p.Lines[1].ManagementNo)
	assert.Equal(t, "0.75", p.Lines[1].ActualHours.String())
}

func TestPreviewRounding(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{90, "1.50"},
		{91, "1.52"},
		{89, "1.48"},
		{1, "0.02"},
		{60, "1.00"},
	}
	for _, tt := range tests {
		ledger := &fakeLedger{}
		projects := newFakeProjects()
		id := projects.add("M-001", "")
		ledger.log(id, "2025-10-10", tt.minutes)

		p, err := NewAggregator(ledger, projects, logger.Nop()).Preview(context.Background(), "2025-10")
		require.NoError(t, err)
		require.Len(t, p.Lines, 1)
		assert.Equal(t, tt.want, p.Lines[0].ActualHours.String(), "%d minutes", tt.minutes)
	}
}

func TestPreviewTotalDividesRawMinutes(t *testing.T) {
	// Three lines of 1 minute each: 0.02 apiece, but the total is 3/60 = 0.05.
	ledger := &fakeLedger{}
	projects := newFakeProjects()
	for _, no := range []string{"A", "B", "C"} {
		ledger.log(projects.add(no, ""), "2025-10-10", 1)
	}
	p, err := NewAggregator(ledger, projects, logger.Nop()).Preview(context.Background(), "2025-10")
	require.NoError(t, err)
	assert.Equal(t, "0.05", p.TotalHours.String())
}

func TestPreviewEmptyMonth(t *testing.T) {
	ledger, projects := october2025(t)
	p, err := NewAggregator(ledger, projects, logger.Nop()).Preview(context.Background(), "2024-01")
	require.NoError(t, err)
	assert.Empty(t, p.Lines)
	assert.NotNil(t, p.Lines)
	assert.Equal(t, "0.00", p.TotalHours.String())
}

func TestPreviewSkipsUnknownProjects(t *testing.T) {
	ledger, projects := october2025(t)
	ledger.log(uuid.New(), "2025-10-05", 120)

	p, err := NewAggregator(ledger, projects, logger.Nop()).Preview(context.Background(), "2025-10")
	require.NoError(t, err)
	assert.Len(t, p.Lines, 2)
	assert.Equal(t, "2.25", p.TotalHours.String())
}

func TestPreviewDecemberRollsIntoNextYear(t *testing.T) {
	ledger := &fakeLedger{}
	projects := newFakeProjects()
	id := projects.add("M-001", "")
	ledger.log(id, "2025-12-31", 60)
	ledger.log(id, "2026-01-01", 60)

	p, err := NewAggregator(ledger, projects, logger.Nop()).Preview(context.Background(), "2025-12")
	require.NoError(t, err)
	assert.Equal(t, "1.00", p.TotalHours.String())
}

func TestPreviewRejectsBadMonth(t *testing.T) {
	agg := NewAggregator(&fakeLedger{}, newFakeProjects(), logger.Nop())
	for _, month := range []string{"", "2025-13", "2025-00", "2025-1", "25-10", "2025/10", "2025-10-01"} {
		_, err := agg.Preview(context.Background(), month)
		assert.ErrorIs(t, err, ErrInvalidArgument, month)
	}
}

func TestPreviewAggregationFailures(t *testing.T) {
	boom := errors.New("db down")

	_, err := NewAggregator(&fakeLedger{err: boom}, newFakeProjects(), logger.Nop()).
		Preview(context.Background(), "2025-10")
	assert.ErrorIs(t, err, ErrAggregationFailed)
	assert.ErrorIs(t, err, boom)

	ledger, projects := october2025(t)
	projects.err = boom
	_, err = NewAggregator(ledger, projects, logger.Nop()).Preview(context.Background(), "2025-10")
	assert.ErrorIs(t, err, ErrAggregationFailed)

	var op *OpError
	require.ErrorAs(t, err, &op)
	assert.Equal(t, "preview", op.Op)
	assert.Equal(t, "2025-10", op.Month)
}

func TestPreviewReturnsIndependentCopies(t *testing.T) {
	ledger, projects := october2025(t)
	agg := NewAggregator(ledger, projects, logger.Nop())

	a, err := agg.Preview(context.Background(), "2025-10")
	require.NoError(t, err)
	a.Lines[0].ManagementNo = "mutated"

	b, err := agg.Preview(context.Background(), "2025-10")
	require.NoError(t, err)
	assert.Equal(t, "M-001", b.Lines[0].ManagementNo)
}

// blockingLedger holds every query until released or until the query's
// context ends.
type blockingLedger struct {
	*fakeLedger
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (l *blockingLedger) QueryTimeEntries(ctx context.Context, start, end time.Time) ([]TimeEntry, error) {
	l.once.Do(func() { close(l.entered) })
	select {
	case <-l.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return l.fakeLedger.QueryTimeEntries(ctx, start, end)
}

func TestPreviewCancelledCallerDoesNotFailSharedCall(t *testing.T) {
	ledger, projects := october2025(t)
	blocking := &blockingLedger{fakeLedger: ledger, entered: make(chan struct{}), release: make(chan struct{})}
	agg := NewAggregator(blocking, projects, logger.Nop())

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := agg.Preview(ctxA, "2025-10")
		errA <- err
	}()
	<-blocking.entered
	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	// The first computation is still in flight; this caller joins it.
	time.AfterFunc(50*time.Millisecond, func() { close(blocking.release) })
	p, err := agg.Preview(context.Background(), "2025-10")
	require.NoError(t, err)
	assert.Equal(t, "2.25", p.TotalHours.String())

	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	assert.Equal(t, 1, ledger.calls)
}
