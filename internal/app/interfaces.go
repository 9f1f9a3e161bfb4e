package app

import (
	"context"

	"github.com/samvad-hq/paykit/pkg/invoice"
	"github.com/samvad-hq/paykit/pkg/publishers"
	"github.com/samvad-hq/paykit/pkg/resource"
)

// InvoiceLister pages through invoices.
type InvoiceLister interface {
	List(ctx context.Context, filters resource.Params) (*resource.Page[invoice.Invoice], error)
}

// EventPublisher fans invoice events out to the configured sinks.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// StatusStore remembers the last published status per invoice.
type StatusStore interface {
	LastStatus(invoiceID string) (string, bool, error)
	RecordStatus(invoiceID, status string) error
}
