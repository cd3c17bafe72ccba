package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChecklistItem is one step to tick off on a project, such as a drawing
// review. Completion records who ticked it and when.
type ChecklistItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	Project     *Project   `gorm:"foreignKey:ProjectID" json:"-"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	SortOrder   int        `gorm:"not null;default:0" json:"sort_order"`
	IsRequired  bool       `gorm:"not null;default:false" json:"is_required"`
	IsCompleted bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedBy *uint      `gorm:"index" json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Memo        string     `gorm:"type:text" json:"memo,omitempty"`
	CreatedBy   uint       `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (c *ChecklistItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// SetCompleted marks the item done by actor at t, or clears completion.
// Re-completing an already completed item keeps the original stamp.
func (c *ChecklistItem) SetCompleted(done bool, actor uint, t time.Time) {
	switch {
	case done && !c.IsCompleted:
		c.IsCompleted = true
		c.CompletedBy = &actor
		at := t.UTC()
		c.CompletedAt = &at
	case !done:
		c.IsCompleted = false
		c.CompletedBy = nil
		c.CompletedAt = nil
	}
}
