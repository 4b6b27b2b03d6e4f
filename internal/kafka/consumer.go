package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/dinehub/restaurant-api/internal/logger"
)

type ConsumerConfig struct {
	Brokers string
	Topic   string
	GroupID string
}

// Deliverer hands a rendered notification to the outside world (SMTP relay,
// push service). Errors are retried by the consumer loop.
type Deliverer interface {
	Deliver(ctx context.Context, to, subject, body string) error
}

// StartConsumer runs the notification delivery worker: it renders each event
// into a customer-facing message and hands it to the deliverer, committing
// offsets only after successful delivery.
func StartConsumer(ctx context.Context, d Deliverer, cfg ConsumerConfig) (*kafka.Reader, error) {
	brokers := strings.Split(cfg.Brokers, ",")

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         brokers,
		GroupID:         cfg.GroupID,
		Topic:           cfg.Topic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  0,
		StartOffset:     kafka.FirstOffset,
		ReadLagInterval: -1,
	})

	logger.Info("notification consumer starting", "brokers", cfg.Brokers, "topic", cfg.Topic, "group", cfg.GroupID)

	go func() {
		defer r.Close()

		backoff := time.Millisecond * 300
		for {
			m, err := r.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("kafka fetch error", "err", err)
				time.Sleep(backoff)
				continue
			}

			var n Notification
			if err = json.Unmarshal(m.Value, &n); err != nil {
				logger.Warn("kafka invalid json, skip and commit", "err", err)
				_ = r.CommitMessages(ctx, m)
				continue
			}

			subject, body := Render(n)
			if err = d.Deliver(ctx, n.Email, subject, body); err != nil {
				logger.Warn("notification delivery failed, will retry", "order_id", n.OrderID, "err", err)
				time.Sleep(backoff)
				continue
			}

			if err := r.CommitMessages(ctx, m); err != nil {
				logger.Warn("kafka commit failed", "err", err)
			} else {
				logger.Info("notification delivered", "type", n.Type, "order_id", n.OrderID)
			}
		}
	}()
	return r, nil
}

// Render turns an event into the customer-facing subject and body.
func Render(n Notification) (subject, body string) {
	switch n.Type {
	case EventOrderConfirmed:
		subject = "Your Order Confirmation"
		body = fmt.Sprintf(
			"Thank you for your order, %s!\nYour order %s has been received.\nTotal amount: $%s\nWe'll notify you when your order is on its way.",
			n.CustomerName, n.OrderID, n.TotalAmount)
	case EventStatusChanged:
		subject = "Order Update - " + n.OrderID
		body = fmt.Sprintf("Your order %s %s.\nThank you for choosing our service!",
			n.OrderID, statusPhrase(n.OrderStatus))
	default:
		subject = "Order Update - " + n.OrderID
		body = fmt.Sprintf("Your order %s has been updated.", n.OrderID)
	}
	return subject, body
}

func statusPhrase(status string) string {
	switch status {
	case "processing":
		return "is being prepared"
	case "shipped":
		return "is on its way to you"
	case "delivered":
		return "has been delivered"
	case "cancelled":
		return "has been cancelled"
	default:
		return "status has been updated to " + status
	}
}

// LogDeliverer is the default sink when no mail relay is configured.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(ctx context.Context, to, subject, body string) error {
	logger.Info("notification", "to", to, "subject", subject)
	return nil
}
