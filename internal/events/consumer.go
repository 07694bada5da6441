package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
)

// PaymentEventType labels an event on the payments topic.
type PaymentEventType string

const (
	PaymentEventConfirmed PaymentEventType = "payment.confirmed"
)

// PaymentEvent is the payment service's confirmation message. Receiving a
// confirmed event is the only path that moves an order's payment status
// from pending to paid.
type PaymentEvent struct {
	ID        string           `json:"id"`
	Type      PaymentEventType `json:"type"`
	OrderID   string           `json:"order_id"`
	Reference string           `json:"reference"`
	Timestamp time.Time        `json:"timestamp"`
}

// PaymentConfirmer applies a confirmed payment to an order.
type PaymentConfirmer interface {
	MarkOrderPaid(ctx context.Context, orderID string) error
}

// KafkaConsumer consumes payment events from Kafka.
type KafkaConsumer struct {
	reader    *kafka.Reader
	confirmer PaymentConfirmer
	logger    *logging.Logger
	stopCh    chan struct{}
}

// NewKafkaConsumer creates a new Kafka-based payment event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, confirmer PaymentConfirmer) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.PaymentsTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &KafkaConsumer{
		reader:    reader,
		confirmer: confirmer,
		logger:    logging.NewLogger("payment-consumer"),
		stopCh:    make(chan struct{}),
	}
}

// Start begins consuming events.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting payment event consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Payment event consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *KafkaConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", logging.Fields{"error": err.Error()})
		return
	}

	switch event.Type {
	case PaymentEventConfirmed:
		c.handlePaymentConfirmed(ctx, &event)
	default:
		c.logger.Debug("Ignoring unknown event type", logging.Fields{"type": event.Type})
	}
}

func (c *KafkaConsumer) handlePaymentConfirmed(ctx context.Context, event *PaymentEvent) {
	c.logger.Info("Handling payment confirmed event", logging.Fields{
		"order_id":  event.OrderID,
		"reference": event.Reference,
	})

	if err := c.confirmer.MarkOrderPaid(ctx, event.OrderID); err != nil {
		c.logger.Error("Failed to apply payment confirmation", logging.Fields{
			"order_id": event.OrderID,
			"error":    err.Error(),
		})
	}
}
