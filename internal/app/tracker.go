package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/paykit/internal/logger"
	"github.com/samvad-hq/paykit/pkg/invoice"
	"github.com/samvad-hq/paykit/pkg/publishers"
	"github.com/samvad-hq/paykit/pkg/resource"
)

// SyncResult summarizes one tracker pass.
type SyncResult struct {
	Listed    int `json:"listed"`
	Published int `json:"published"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Tracker compares listed invoices against the status store and publishes
// an event for every invoice whose status is new or has moved.
type Tracker struct {
	invoices InvoiceLister
	store    StatusStore
	pub      EventPublisher
	limit    int
	log      logger.Logger
}

// NewTracker wires a tracker. limit is sent as the list page size.
func NewTracker(invoices InvoiceLister, store StatusStore, pub EventPublisher, limit int, log logger.Logger) *Tracker {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Tracker{
		invoices: invoices,
		store:    store,
		pub:      pub,
		limit:    limit,
		log:      log,
	}
}

// Sync performs a single pass. A status is recorded only after every sink
// accepted the event, so failed invoices are retried on the next pass.
func (t *Tracker) Sync(ctx context.Context) (SyncResult, error) {
	var res SyncResult
	if t == nil || t.invoices == nil || t.store == nil || t.pub == nil {
		return res, fmt.Errorf("tracker is not initialized")
	}

	filters := resource.Params{}
	if t.limit > 0 {
		filters["limit"] = t.limit
	}
	page, err := t.invoices.List(ctx, filters)
	if err != nil {
		return res, fmt.Errorf("list invoices: %w", err)
	}
	res.Listed = page.Len()

	var errs []error
	for _, inv := range page.Data {
		if ctx.Err() != nil {
			break
		}
		if inv == nil || inv.ID == "" {
			continue
		}

		prev, changed := t.statusChange(inv)
		if !changed {
			res.Unchanged++
			continue
		}

		evt := publishers.NewEvent(inv, prev)
		if _, err := t.pub.Publish(ctx, evt); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("publish invoice %s: %w", inv.ID, err))
			continue
		}
		if err := t.store.RecordStatus(inv.ID, string(inv.Status)); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("record invoice %s: %w", inv.ID, err))
			continue
		}
		res.Published++
	}

	t.log.InfoObj("invoice sync completed", "sync_result", res)
	return res, errors.Join(errs...)
}

// statusChange reports the previously stored status and whether inv differs
// from it. Store lookup errors treat the invoice as unseen.
func (t *Tracker) statusChange(inv *invoice.Invoice) (string, bool) {
	prev, found, err := t.store.LastStatus(inv.ID)
	if err != nil {
		t.log.WarnObj("status lookup failed; treating invoice as unseen", "store_error", map[string]any{
			"invoice_id": inv.ID,
			"error":      err.Error(),
		})
		return "", true
	}
	if !found {
		return "", true
	}
	return prev, prev != string(inv.Status)
}
