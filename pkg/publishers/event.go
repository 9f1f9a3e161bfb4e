package publishers

import (
	"time"

	"github.com/samvad-hq/paykit/pkg/invoice"
)

// Event types.
const (
	EventInvoiceObserved      = "invoice.observed"
	EventInvoiceStatusChanged = "invoice.status_changed"
)

// Event represents the payload published downstream.
type Event struct {
	Type           string            `json:"type"`
	InvoiceID      string            `json:"invoice_id"`
	Status         string            `json:"status"`
	PreviousStatus string            `json:"previous_status,omitempty"`
	Customer       string            `json:"customer,omitempty"`
	AmountDue      int64             `json:"amount_due"`
	Currency       string            `json:"currency,omitempty"`
	Livemode       bool              `json:"livemode"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	ObservedAt     time.Time         `json:"observed_at"`
}

// NewEvent builds an Event for inv. An empty previous status marks the first sighting.
func NewEvent(inv *invoice.Invoice, previousStatus string) Event {
	typ := EventInvoiceStatusChanged
	if previousStatus == "" {
		typ = EventInvoiceObserved
	}
	return Event{
		Type:           typ,
		InvoiceID:      inv.ID,
		Status:         string(inv.Status),
		PreviousStatus: previousStatus,
		Customer:       inv.Customer,
		AmountDue:      inv.AmountDue,
		Currency:       inv.Currency,
		Livemode:       inv.Livemode,
		Metadata:       inv.Metadata,
		ObservedAt:     time.Now().UTC(),
	}
}

// attributes are attached to queue messages for subscriber-side filtering.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type": e.Type,
		"invoice_id": e.InvoiceID,
		"status":     e.Status,
	}
}
