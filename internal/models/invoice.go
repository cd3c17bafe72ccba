package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus represents the status of a closed invoice.
// There is no draft status: drafts only exist as previews.
type InvoiceStatus string

const (
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Invoice is the immutable header produced by closing a month.
// Only Status changes after creation.
type Invoice struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber string        `gorm:"size:20;uniqueIndex;not null" json:"invoice_number"`
	BillingMonth  string        `gorm:"size:7;not null;index" json:"billing_month"`
	IssueDate     Date          `gorm:"type:date;not null;index" json:"issue_date"`
	TotalAmount   Hours         `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status        InvoiceStatus `gorm:"size:20;not null;index" json:"status"`
	ClosedBy      uint          `gorm:"not null" json:"closed_by"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InvoiceItem snapshots one project's hours at close time.
type InvoiceItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID    uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ManagementNo string    `gorm:"size:100;not null" json:"management_no"`
	MachineNo    string    `gorm:"size:100" json:"machine_no"`
	ActualHours  Hours     `gorm:"type:numeric(10,2);not null" json:"actual_hours"`
	SortOrder    int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}
