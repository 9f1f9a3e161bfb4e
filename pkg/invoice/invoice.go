package invoice

import "github.com/samvad-hq/paykit/pkg/resource"

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusOpen          Status = "open"
	StatusPaid          Status = "paid"
	StatusUncollectible Status = "uncollectible"
	StatusVoid          Status = "void"
)

// Invoice mirrors the invoice object returned by the API. Fields the struct
// does not declare are kept in Extra.
type Invoice struct {
	resource.Meta `json:"-"`

	ID               string                   `json:"id"`
	Object           string                   `json:"object"`
	AmountDue        int64                    `json:"amount_due"`
	AmountPaid       int64                    `json:"amount_paid"`
	AmountRemaining  int64                    `json:"amount_remaining"`
	AutoAdvance      bool                     `json:"auto_advance"`
	CollectionMethod string                   `json:"collection_method"`
	Created          int64                    `json:"created"`
	Currency         string                   `json:"currency"`
	Customer         string                   `json:"customer"`
	Deleted          bool                     `json:"deleted"`
	Description      string                   `json:"description"`
	DueDate          int64                    `json:"due_date"`
	HostedInvoiceURL string                   `json:"hosted_invoice_url"`
	Lines            *resource.Page[LineItem] `json:"lines"`
	Livemode         bool                     `json:"livemode"`
	Metadata         map[string]string        `json:"metadata"`
	Number           string                   `json:"number"`
	Paid             bool                     `json:"paid"`
	Status           Status                   `json:"status"`
	Subscription     string                   `json:"subscription"`
}

// GetID returns the invoice id; upcoming invoices have none.
func (i *Invoice) GetID() string {
	if i == nil {
		return ""
	}
	return i.ID
}

// SetMetadata sets a metadata key, allocating the map when needed.
func (i *Invoice) SetMetadata(key, value string) {
	if i.Metadata == nil {
		i.Metadata = make(map[string]string)
	}
	i.Metadata[key] = value
}

// LineItem is a single line on an invoice.
type LineItem struct {
	resource.Meta `json:"-"`

	ID           string            `json:"id"`
	Object       string            `json:"object"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
	Quantity     int64             `json:"quantity"`
	Subscription string            `json:"subscription"`
	Type         string            `json:"type"`
}

// GetID returns the line item id.
func (l *LineItem) GetID() string {
	if l == nil {
		return ""
	}
	return l.ID
}
