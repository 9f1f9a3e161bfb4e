package invoice

import (
	"context"

	"github.com/samvad-hq/paykit/pkg/resource"
)

const (
	collection = "invoices"

	actionFinalize          = "finalize"
	actionMarkUncollectible = "mark_uncollectible"
	actionPay               = "pay"
	actionSend              = "send"
	actionVoid              = "void"

	pathUpcoming = "upcoming"
	pathLines    = "lines"
)

// Client performs invoice operations. Instance operations refresh the passed
// invoice in place and return the same pointer.
type Client struct {
	svc *resource.Service[Invoice, *Invoice]
}

// New binds an invoice client to a backend.
func New(b *resource.Backend) *Client {
	return &Client{svc: resource.NewService[Invoice, *Invoice](b, collection)}
}

// List returns one page of invoices matching filters.
func (c *Client) List(ctx context.Context, filters resource.Params) (*resource.Page[Invoice], error) {
	return c.svc.List(ctx, filters)
}

// Retrieve loads an invoice by id.
func (c *Client) Retrieve(ctx context.Context, id string) (*Invoice, error) {
	return c.svc.Retrieve(ctx, id, nil)
}

// Create creates an invoice.
func (c *Client) Create(ctx context.Context, params resource.Params) (*Invoice, error) {
	return c.svc.Create(ctx, params)
}

// Update modifies an invoice by id without retrieving it first.
func (c *Client) Update(ctx context.Context, id string, params resource.Params) (*Invoice, error) {
	return c.svc.Update(ctx, id, params)
}

// Save sends the locally changed fields of inv.
func (c *Client) Save(ctx context.Context, inv *Invoice) (*Invoice, error) {
	if err := c.svc.Save(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Delete deletes a draft invoice.
func (c *Client) Delete(ctx context.Context, inv *Invoice) (*Invoice, error) {
	if err := c.svc.Delete(ctx, inv, nil); err != nil {
		return nil, err
	}
	return inv, nil
}

// FinalizeInvoice moves a draft invoice to open.
func (c *Client) FinalizeInvoice(ctx context.Context, inv *Invoice, params resource.Params) (*Invoice, error) {
	return c.action(ctx, inv, actionFinalize, params)
}

// MarkUncollectible marks an open invoice as uncollectible.
func (c *Client) MarkUncollectible(ctx context.Context, inv *Invoice, params resource.Params) (*Invoice, error) {
	return c.action(ctx, inv, actionMarkUncollectible, params)
}

// Pay attempts to collect an open invoice, optionally with a specific source.
func (c *Client) Pay(ctx context.Context, inv *Invoice, params resource.Params) (*Invoice, error) {
	return c.action(ctx, inv, actionPay, params)
}

// SendInvoice emails the invoice to the customer.
func (c *Client) SendInvoice(ctx context.Context, inv *Invoice, params resource.Params) (*Invoice, error) {
	return c.action(ctx, inv, actionSend, params)
}

// VoidInvoice voids a finalized invoice.
func (c *Client) VoidInvoice(ctx context.Context, inv *Invoice, params resource.Params) (*Invoice, error) {
	return c.action(ctx, inv, actionVoid, params)
}

// Upcoming previews the next invoice for a customer. The result is not
// persisted and has no id.
func (c *Client) Upcoming(ctx context.Context, params resource.Params) (*Invoice, error) {
	return c.svc.Get(ctx, pathUpcoming, params)
}

// ListLineItems returns one page of lines for an invoice.
func (c *Client) ListLineItems(ctx context.Context, id string, params resource.Params) (*resource.Page[LineItem], error) {
	if err := resource.RequireID(collection, id); err != nil {
		return nil, err
	}
	return resource.ListPage[LineItem](ctx, c.svc.Backend(), c.svc.Path(id, pathLines), params)
}

// UpcomingLineItems returns one page of lines for the upcoming invoice.
func (c *Client) UpcomingLineItems(ctx context.Context, params resource.Params) (*resource.Page[LineItem], error) {
	return resource.ListPage[LineItem](ctx, c.svc.Backend(), c.svc.Path(pathUpcoming, pathLines), params)
}

func (c *Client) action(ctx context.Context, inv *Invoice, name string, params resource.Params) (*Invoice, error) {
	if err := c.svc.Action(ctx, inv, name, params); err != nil {
		return nil, err
	}
	return inv, nil
}
