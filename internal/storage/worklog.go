package storage

import (
	"context"
	"time"

	"github.com/diewo77/go-workhours/internal/models"
	"github.com/diewo77/go-workhours/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkLogStore is the ledger. It implements services.WorkLogStore and services.Ledger.
type WorkLogStore struct {
	db *gorm.DB
}

func NewWorkLogStore(db *gorm.DB) *WorkLogStore {
	return &WorkLogStore{db: db}
}

// QueryTimeEntries returns every entry with start <= work_date < end.
func (s *WorkLogStore) QueryTimeEntries(ctx context.Context, start, end time.Time) ([]services.TimeEntry, error) {
	var rows []struct {
		ProjectID       uuid.UUID
		WorkDate        models.Date
		DurationMinutes int
	}
	err := s.db.WithContext(ctx).Model(&models.WorkLog{}).
		Select("project_id, work_date, duration_minutes").
		Where("work_date >= ? AND work_date < ?", models.NewDate(start), models.NewDate(end)).
		Order("work_date ASC").Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	entries := make([]services.TimeEntry, len(rows))
	for i, r := range rows {
		entries[i] = services.TimeEntry{ProjectID: r.ProjectID, WorkDate: r.WorkDate.Time, DurationMinutes: r.DurationMinutes}
	}
	return entries, nil
}

func (s *WorkLogStore) Create(ctx context.Context, w *models.WorkLog) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := projectExists(tx, w.ProjectID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(w).Error; err != nil {
			return err
		}
		return addMinutes(tx, w.ProjectID, w.DurationMinutes)
	}))
}

func (s *WorkLogStore) Get(ctx context.Context, id uuid.UUID) (*models.WorkLog, error) {
	var w models.WorkLog
	if err := s.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

// Update writes next and moves the difference onto the project totals. The
// totals follow the row as stored when the transaction runs, not prev, so
// overlapping updates cannot double count. prev only identifies the row.
func (s *WorkLogStore) Update(ctx context.Context, prev models.WorkLog, next *models.WorkLog) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := lockWorkLog(tx, prev.ID)
		if err != nil {
			return err
		}
		if next.ProjectID != cur.ProjectID {
			if err := projectExists(tx, next.ProjectID); err != nil {
				return err
			}
			if err := addMinutes(tx, cur.ProjectID, -cur.DurationMinutes); err != nil {
				return err
			}
			if err := addMinutes(tx, next.ProjectID, next.DurationMinutes); err != nil {
				return err
			}
		} else if delta := next.DurationMinutes - cur.DurationMinutes; delta != 0 {
			if err := addMinutes(tx, next.ProjectID, delta); err != nil {
				return err
			}
		}
		res := tx.Model(next).
			Select("project_id", "work_date", "duration_minutes", "work_category", "memo", "updated_at").
			Updates(next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return services.ErrNotFound
		}
		return nil
	}))
}

func (s *WorkLogStore) Delete(ctx context.Context, w *models.WorkLog) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := lockWorkLog(tx, w.ID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.WorkLog{}, "id = ?", cur.ID).Error; err != nil {
			return err
		}
		return addMinutes(tx, cur.ProjectID, -cur.DurationMinutes)
	}))
}

// lockWorkLog reads the row inside tx. Postgres takes a row lock; the sqlite
// dialect drops the clause and relies on its single writer.
func lockWorkLog(tx *gorm.DB, id uuid.UUID) (*models.WorkLog, error) {
	var cur models.WorkLog
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "project_id", "duration_minutes").
		First(&cur, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cur, nil
}

func (s *WorkLogStore) List(ctx context.Context, f services.WorkLogFilter) ([]models.WorkLog, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.WorkLog{})
	if f.ProjectID != uuid.Nil {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.WorkDate != nil {
		q = q.Where("work_date = ?", *f.WorkDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	logs := []models.WorkLog{}
	err := q.Order("work_date DESC").Order("created_at DESC").
		Offset(f.Page.Offset()).Limit(f.Page.PerPage).
		Find(&logs).Error
	return logs, total, translate(err)
}

func (s *WorkLogStore) Summary(ctx context.Context, projectID uuid.UUID) (*services.WorkLogSummary, error) {
	db := s.db.WithContext(ctx)
	if err := projectExists(db, projectID); err != nil {
		return nil, translate(err)
	}

	sum := &services.WorkLogSummary{
		ProjectID: projectID,
		ByUser:    []services.MinutesByUser{},
		ByDate:    []services.MinutesByDate{},
	}
	err := db.Model(&models.WorkLog{}).
		Select("user_id, SUM(duration_minutes) AS total_minutes").
		Where("project_id = ?", projectID).
		Group("user_id").Order("user_id ASC").
		Scan(&sum.ByUser).Error
	if err != nil {
		return nil, translate(err)
	}
	err = db.Model(&models.WorkLog{}).
		Select("work_date, SUM(duration_minutes) AS total_minutes").
		Where("project_id = ?", projectID).
		Group("work_date").Order("work_date ASC").
		Scan(&sum.ByDate).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, u := range sum.ByUser {
		sum.TotalMinutes += u.TotalMinutes
	}
	return sum, nil
}

func projectExists(tx *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := tx.Model(&models.Project{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return services.ErrNotFound
	}
	return nil
}

func addMinutes(tx *gorm.DB, projectID uuid.UUID, delta int) error {
	return tx.Model(&models.Project{}).Where("id = ?", projectID).
		UpdateColumn("actual_minutes", gorm.Expr("actual_minutes + ?", delta)).Error
}
