package services

import (
	"context"
	"sort"

	"github.com/diewo77/go-workhours/internal/logger"
	"github.com/diewo77/go-workhours/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// PreviewLine is one project's hours for the month.
type PreviewLine struct {
	ManagementNo string       `json:"management_no"`
	MachineNo    string       `json:"machine_no"`
	ActualHours  models.Hours `json:"actual_hours"`
}

// Preview is the ephemeral draft of a month's invoice.
type Preview struct {
	Month      string        `json:"month"`
	TotalHours models.Hours  `json:"total_hours"`
	Lines      []PreviewLine `json:"lines"`
}

// Aggregator turns a month of ledger entries into a Preview.
// Preview, close and export all go through it so they cannot diverge.
type Aggregator struct {
	ledger   Ledger
	projects ProjectResolver
	log      zerolog.Logger
	flight   singleflight.Group
}

func NewAggregator(ledger Ledger, projects ProjectResolver, log zerolog.Logger) *Aggregator {
	return &Aggregator{ledger: ledger, projects: projects, log: log}
}

// Preview validates month and aggregates it. Concurrent calls for the same
// month share one computation, detached from any single caller's
// cancellation; each caller still stops waiting when its own ctx ends.
func (a *Aggregator) Preview(ctx context.Context, month string) (*Preview, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	shared := context.WithoutCancel(ctx)
	ch := a.flight.DoChan(m.String(), func() (any, error) {
		return a.aggregate(shared, m)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, opErr("preview", m.String(), ErrAggregationFailed, ctx.Err())
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return copyPreview(res.Val.(*Preview)), nil
}

func copyPreview(shared *Preview) *Preview {
	out := *shared
	out.Lines = append([]PreviewLine(nil), shared.Lines...)
	return &out
}

func (a *Aggregator) aggregate(ctx context.Context, m Month) (*Preview, error) {
	preview := &Preview{
		Month:      m.String(),
		TotalHours: models.HoursFromMinutes(0),
		Lines:      []PreviewLine{},
	}

	entries, err := a.ledger.QueryTimeEntries(ctx, m.Start(), m.End())
	if err != nil {
		a.log.Error().Err(err).Str(logger.FieldMonth, m.String()).Str(logger.FieldStage, "query_time_entries").
			Msg("aggregation failed")
		return nil, opErr("preview", m.String(), ErrAggregationFailed, err)
	}
	if len(entries) == 0 {
		return preview, nil
	}

	// Integer minutes per project, in first-seen order so sort ties stay stable.
	minutes := make(map[uuid.UUID]int64)
	var order []uuid.UUID
	for _, e := range entries {
		if _, seen := minutes[e.ProjectID]; !seen {
			order = append(order, e.ProjectID)
		}
		minutes[e.ProjectID] += int64(e.DurationMinutes)
	}

	refs, err := a.projects.ResolveProjects(ctx, order)
	if err != nil {
		a.log.Error().Err(err).Str(logger.FieldMonth, m.String()).Str(logger.FieldStage, "resolve_projects").
			Msg("aggregation failed")
		return nil, opErr("preview", m.String(), ErrAggregationFailed, err)
	}
	byID := make(map[uuid.UUID]ProjectRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	var totalMinutes int64
	for _, id := range order {
		ref, ok := byID[id]
		if !ok {
			a.log.Warn().Str(logger.FieldMonth, m.String()).Str(logger.FieldProjectID, id.String()).
				Int64("minutes", minutes[id]).Msg("skipping time logged against unknown project")
			continue
		}
		mins := minutes[id]
		if mins <= 0 {
			continue
		}
		totalMinutes += mins
		preview.Lines = append(preview.Lines, PreviewLine{
			ManagementNo: ref.ManagementNo,
			MachineNo:    ref.MachineNo,
			ActualHours:  models.HoursFromMinutes(mins),
		})
	}

	sort.SliceStable(preview.Lines, func(i, j int) bool {
		return preview.Lines[i].ManagementNo < preview.Lines[j].ManagementNo
	})
	// Divide once over the raw minutes, never sum the rounded lines.
	preview.TotalHours = models.HoursFromMinutes(totalMinutes)
	return preview, nil
}
