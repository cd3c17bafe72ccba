// Package events publishes invoice lifecycle notifications to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types, also used as AMQP routing keys.
const (
	TypeInvoiceClosed        = "invoice.closed"
	TypeInvoiceDeleted       = "invoice.deleted"
	TypeInvoiceStatusChanged = "invoice.status_changed"
)

// InvoiceEvent describes something that happened to a closed invoice.
type InvoiceEvent struct {
	Type          string    `json:"type"`
	InvoiceID     string    `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Month         string    `json:"month,omitempty"`
	TotalAmount   string    `json:"total_amount,omitempty"`
	Status        string    `json:"status,omitempty"`
	Actor         uint      `json:"actor"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ToJSON serializes the event body.
func (e InvoiceEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e InvoiceEvent) error
	Close() error
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, InvoiceEvent) error { return nil }
func (Nop) Close() error                                { return nil }
