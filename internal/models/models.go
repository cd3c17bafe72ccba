// Package models holds the gorm-mapped rows of the work-hours backend.
package models

// All lists every model migrated by the application, in dependency order.
func All() []any {
	return []any{
		&Profile{},
		&Permission{},
		&User{},
		&ProgressStatus{},
		&WorkCategory{},
		&InquiryStatus{},
		&MachineSeries{},
		&Project{},
		&WorkLog{},
		&ChecklistItem{},
		&Invoice{},
		&InvoiceItem{},
	}
}
