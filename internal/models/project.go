package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatusInProgress is the status given to new projects when none is supplied.
const ProjectStatusInProgress = "in_progress"

// Project is a machine-build engineering job that time is logged against.
type Project struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ManagementNo string    `gorm:"size:100;uniqueIndex;not null" json:"management_no"`
	MachineNo    string    `gorm:"size:100;index" json:"machine_no"`

	Series            string `gorm:"size:100" json:"series,omitempty"`
	Generation        string `gorm:"size:100" json:"generation,omitempty"`
	Tonnage           string `gorm:"size:50" json:"tonnage,omitempty"`
	SpecTags          string `gorm:"size:255" json:"spec_tags,omitempty"`
	CommissionContent string `gorm:"type:text" json:"commission_content,omitempty"`
	InquiryType       string `gorm:"size:100" json:"inquiry_type,omitempty"`
	WorkCategory      string `gorm:"size:100" json:"work_category,omitempty"`

	// Minutes. ActualMinutes is maintained by the worklog ledger.
	EstimatedMinutes int `gorm:"not null;default:0" json:"estimated_minutes"`
	ActualMinutes    int `gorm:"not null;default:0" json:"actual_minutes"`

	Status          string `gorm:"size:100;not null" json:"status"`
	StartDate       *Date  `gorm:"type:date" json:"start_date,omitempty"`
	CompletionDate  *Date  `gorm:"type:date" json:"completion_date,omitempty"`
	DrawingDeadline *Date  `gorm:"type:date" json:"drawing_deadline,omitempty"`

	CreatedBy uint      `gorm:"index" json:"created_by"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
