package publishers

import (
	"testing"

	"github.com/samvad-hq/paykit/pkg/invoice"
)

func TestNewEventTypes(t *testing.T) {
	inv := &invoice.Invoice{ID: "in_1", Status: invoice.StatusPaid, Customer: "cus_1", AmountDue: 1200, Currency: "usd"}

	first := NewEvent(inv, "")
	if first.Type != EventInvoiceObserved || first.PreviousStatus != "" {
		t.Fatalf("unexpected first sighting %#v", first)
	}

	changed := NewEvent(inv, "open")
	if changed.Type != EventInvoiceStatusChanged || changed.PreviousStatus != "open" || changed.Status != "paid" {
		t.Fatalf("unexpected change event %#v", changed)
	}
	if changed.ObservedAt.IsZero() {
		t.Fatalf("observed_at not set")
	}
}
