package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookstore-be/internal/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish writes the event keyed by order so one order's events stay on one
// partition and keep their relative order.
func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.RequestID == "" {
		event.RequestID = logger.RequestIDFrom(ctx)
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("ORDER#%d", event.OrderID)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order event: %w", err)
	}

	logger.FromCtx(ctx).Debug("order event published",
		zap.String("event_id", event.EventID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("order_id", event.OrderID),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
