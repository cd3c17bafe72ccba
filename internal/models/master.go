package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MasterRecord is implemented by pointers to the lookup table rows so they can
// share one storage and service implementation.
type MasterRecord interface {
	// Base exposes the shared columns.
	Base() *MasterBase
	// MasterName is the row's unique display name.
	MasterName() string
	// NameColumn is the database column holding MasterName.
	NameColumn() string
}

// MasterBase holds the columns common to every lookup table.
type MasterBase struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BackgroundColor string    `gorm:"size:20" json:"background_color,omitempty"`
	SortOrder       int       `gorm:"not null;default:0;index" json:"sort_order"`
	IsActive        bool      `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (b *MasterBase) Base() *MasterBase { return b }

func (b *MasterBase) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ProgressStatus is a project progress state. The trigger flags fill in the
// project's start or completion date when a project enters this state.
type ProgressStatus struct {
	MasterBase
	StatusName        string `gorm:"size:100;uniqueIndex;not null" json:"status_name"`
	CompletionTrigger bool   `gorm:"not null;default:false" json:"completion_trigger"`
	StartDateTrigger  bool   `gorm:"not null;default:false" json:"start_date_trigger"`
}

func (ProgressStatus) TableName() string     { return "master_progress_statuses" }
func (p *ProgressStatus) MasterName() string { return p.StatusName }
func (ProgressStatus) NameColumn() string    { return "status_name" }

// WorkCategory classifies work (wiring, harness processing, outsourcing...).
type WorkCategory struct {
	MasterBase
	CategoryName string `gorm:"size:100;uniqueIndex;not null" json:"category_name"`
}

func (WorkCategory) TableName() string     { return "master_work_categories" }
func (w *WorkCategory) MasterName() string { return w.CategoryName }
func (WorkCategory) NameColumn() string    { return "category_name" }

// InquiryStatus tracks where a customer inquiry stands.
type InquiryStatus struct {
	MasterBase
	StatusName string `gorm:"size:100;uniqueIndex;not null" json:"status_name"`
}

func (InquiryStatus) TableName() string     { return "master_inquiry_statuses" }
func (i *InquiryStatus) MasterName() string { return i.StatusName }
func (InquiryStatus) NameColumn() string    { return "status_name" }

// MachineSeries is a product line of machines (NEX, FNX, TNS...).
type MachineSeries struct {
	MasterBase
	SeriesName  string `gorm:"size:50;uniqueIndex;not null" json:"series_name"`
	DisplayName string `gorm:"size:100;not null" json:"display_name"`
	Description string `gorm:"size:500" json:"description,omitempty"`
	Category    string `gorm:"size:50" json:"category,omitempty"`
}

func (MachineSeries) TableName() string     { return "master_machine_series" }
func (m *MachineSeries) MasterName() string { return m.SeriesName }
func (MachineSeries) NameColumn() string    { return "series_name" }
