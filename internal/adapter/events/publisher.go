package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/storefront/internal/domain/model"
)

const TypeOrderConfirmed = "order.confirmed"

// Publisher emits domain events after they are committed.
type Publisher interface {
	PublishOrderConfirmed(ctx context.Context, result *model.FulfillmentResult) error
}

type OrderConfirmed struct {
	Type             string          `json:"type"`
	OrderID          string          `json:"orderId"`
	CustomerID       string          `json:"customerId"`
	PaymentReference string          `json:"paymentReference"`
	GatewayPaymentID string          `json:"gatewayPaymentId"`
	Items            []ConfirmedItem `json:"items"`
	ConfirmedAt      time.Time       `json:"confirmedAt"`
}

type ConfirmedItem struct {
	ProductID string `json:"productId"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

func newOrderConfirmed(result *model.FulfillmentResult) OrderConfirmed {
	items := make([]ConfirmedItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, ConfirmedItem{ProductID: item.ProductID.String(), Price: item.Price, Quantity: item.Quantity})
	}
	return OrderConfirmed{
		Type:             TypeOrderConfirmed,
		OrderID:          result.OrderID.String(),
		CustomerID:       result.CustomerID.String(),
		PaymentReference: result.PaymentReference,
		GatewayPaymentID: result.GatewayPaymentID,
		Items:            items,
		ConfirmedAt:      result.ConfirmedAt,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic keyed by order id.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger.With(slog.String("component", "events"), slog.String("topic", topic)),
	}
}

func (p *KafkaPublisher) PublishOrderConfirmed(ctx context.Context, result *model.FulfillmentResult) error {
	event := newOrderConfirmed(result)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:     []byte(event.OrderID),
		Value:   payload,
		Headers: []kafka.Header{{Key: "type", Value: []byte(event.Type)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", event.Type, err)
	}

	p.logger.Debug("event published", slog.String("type", event.Type), slog.String("order_id", event.OrderID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderConfirmed(context.Context, *model.FulfillmentResult) error {
	return nil
}
