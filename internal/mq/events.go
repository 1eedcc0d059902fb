package mq

import (
	"context"
	"encoding/json"
	"time"
)

// ChannelProductEvents is the channel carrying product lifecycle events.
const ChannelProductEvents = "product-events"

// Product lifecycle event types. Publishing is best-effort: moderator
// tooling listens on these, but the API never blocks a request on them.
const (
	EventProductSubmitted = "product.submitted"
	EventProductReported  = "product.reported"
	EventProductModerated = "product.moderated"
)

// ProductEvent describes a change to a product worth notifying about.
type ProductEvent struct {
	Type        string    `json:"type"`
	ProductID   int       `json:"productId"`
	ProductName string    `json:"productName"`
	Actor       string    `json:"actor"`
	Detail      string    `json:"detail,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// EventPublisher publishes product events to the configured backend.
type EventPublisher struct {
	backend Backend
}

// NewEventPublisher constructs a publisher over the provided backend.
func NewEventPublisher(backend Backend) *EventPublisher {
	return &EventPublisher{backend: backend}
}

// Publish sends a product event. The event timestamp is filled in when
// the caller leaves it zero.
func (p *EventPublisher) Publish(ctx context.Context, event ProductEvent) (string, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	attrs := map[string]string{"type": event.Type}
	return p.backend.Publish(ctx, ChannelProductEvents, data, attrs)
}

// Subscribe consumes product events, decoding each message before
// handing it to the handler.
func (p *EventPublisher) Subscribe(ctx context.Context, handler func(ctx context.Context, event ProductEvent) error) error {
	return p.backend.Subscribe(ctx, ChannelProductEvents, func(ctx context.Context, msg Message) error {
		var event ProductEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return err
		}
		return handler(ctx, event)
	})
}

// Close closes the underlying backend.
func (p *EventPublisher) Close() error {
	return p.backend.Close()
}
