package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkLog is one ledger entry: minutes a user spent on a project on a given day.
// Implements the Ownable interface for ownership-based authorization.
type WorkLog struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID       uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Project         *Project  `gorm:"foreignKey:ProjectID" json:"-"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	WorkDate        Date      `gorm:"type:date;not null;index" json:"work_date"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	WorkCategory    string    `gorm:"size:100" json:"work_category,omitempty"`
	Memo            string    `gorm:"type:text" json:"memo,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (w *WorkLog) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// GetUserID implements the Ownable interface for authorization.
func (w *WorkLog) GetUserID() uint {
	return w.UserID
}
