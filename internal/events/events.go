package events

import (
	"context"
	"time"
)

type EventType string

const (
	OrderPlaced        EventType = "order.placed"
	OrderCancelled     EventType = "order.cancelled"
	OrderStatusChanged EventType = "order.status_changed"
)

type OrderLine struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

// OrderEvent describes a committed order state change.
type OrderEvent struct {
	EventID     string      `json:"eventId"`
	Type        EventType   `json:"type"`
	OrderID     int64       `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	Status      string      `json:"status"`
	Total       string      `json:"total"`
	Items       []OrderLine `json:"items"`
	OccurredAt  time.Time   `json:"occurredAt"`
	RequestID   string      `json:"requestId,omitempty"`
	// Actor is the admin subject behind a status change.
	Actor string `json:"actor,omitempty"`
}

// Publisher delivers events after the state they describe has committed.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event OrderEvent) error { return nil }
func (NopPublisher) Close() error                                        { return nil }
