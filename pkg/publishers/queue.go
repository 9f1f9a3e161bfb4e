package publishers

import (
	"context"
	"fmt"
	"io"
)

// queuePublisher adapts a transport-specific sender to the Publisher interface.
type queuePublisher struct {
	id     string
	typ    string
	sender sender
	log    Logger
}

func newQueuePublisher(id, typ string, s sender, log Logger) *queuePublisher {
	return &queuePublisher{id: id, typ: typ, sender: s, log: ensureLogger(log)}
}

func (q *queuePublisher) ID() string   { return q.id }
func (q *queuePublisher) Type() string { return q.typ }

func (q *queuePublisher) Publish(ctx context.Context, evt Event) error {
	if err := q.sender.Send(ctx, evt); err != nil {
		q.log.ErrorObj("publisher send failed", "publisher_error", map[string]any{
			"publisher_id": q.id,
			"type":         q.typ,
			"invoice_id":   evt.InvoiceID,
			"error":        err.Error(),
		})
		return err
	}
	return nil
}

// Close releases the underlying sender when it holds resources.
func (q *queuePublisher) Close() error {
	if c, ok := q.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func newSQSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q missing sqs configuration", cfg.ID)
	}
	s, err := newAWSSQSSender(ctx, cfg.SQS, log)
	if err != nil {
		return nil, err
	}
	return newQueuePublisher(cfg.ID, TypeSQS, s, log), nil
}

func newSNSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}
	s, err := newAWSSNSSender(ctx, cfg.SNS, log)
	if err != nil {
		return nil, err
	}
	return newQueuePublisher(cfg.ID, TypeSNS, s, log), nil
}

func newGCPPubSubPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.GCP == nil {
		return nil, fmt.Errorf("publisher %q missing gcp_pubsub configuration", cfg.ID)
	}
	s, err := newGCPPubSubSender(ctx, cfg.GCP, log)
	if err != nil {
		return nil, err
	}
	return newQueuePublisher(cfg.ID, TypeGCPPubSub, s, log), nil
}
