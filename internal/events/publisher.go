package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
)

// EventType labels a published checkout event.
type EventType string

const (
	EventTypeOrderCreated  EventType = "order.created"
	EventTypePriceMismatch EventType = "security.price_mismatch"
)

// CheckoutEvent is the envelope for everything this service publishes.
type CheckoutEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	UserID    string          `json:"user_id"`
	OrderID   string          `json:"order_id,omitempty"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// KafkaPublisher publishes checkout events to Kafka. Order lifecycle events
// and security alerts go to separate topics so the fraud pipeline does not
// have to filter the order stream.
type KafkaPublisher struct {
	orderWriter    *kafka.Writer
	securityWriter *kafka.Writer
	logger         *logging.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
		}
	}

	return &KafkaPublisher{
		orderWriter:    newWriter(cfg.OrdersTopic),
		securityWriter: newWriter(cfg.SecurityTopic),
		logger:         logging.NewLogger("event-publisher"),
	}
}

// PublishOrderCreated publishes an order created event.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	event := &CheckoutEvent{
		ID:        "evt_" + uuid.New().String(),
		Type:      EventTypeOrderCreated,
		UserID:    order.UserID,
		OrderID:   order.ID,
		Data:      data,
		Timestamp: time.Now(),
	}

	return p.publish(ctx, p.orderWriter, event, order.ID)
}

// PublishPriceMismatch publishes a tamper-suspected security event carrying
// both the client-claimed and server-computed totals.
func (p *KafkaPublisher) PublishPriceMismatch(ctx context.Context, userID string, clientTotal, serverTotal float64) error {
	payload := struct {
		UserID      string  `json:"user_id"`
		ClientTotal float64 `json:"client_total"`
		ServerTotal float64 `json:"server_total"`
	}{
		UserID:      userID,
		ClientTotal: clientTotal,
		ServerTotal: serverTotal,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := &CheckoutEvent{
		ID:        "evt_" + uuid.New().String(),
		Type:      EventTypePriceMismatch,
		UserID:    userID,
		Data:      data,
		Timestamp: time.Now(),
	}

	return p.publish(ctx, p.securityWriter, event, userID)
}

func (p *KafkaPublisher) publish(ctx context.Context, writer *kafka.Writer, event *CheckoutEvent, key string) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	})
	return nil
}

// Close closes the Kafka writers.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	if err := p.orderWriter.Close(); err != nil {
		return err
	}
	return p.securityWriter.Close()
}
