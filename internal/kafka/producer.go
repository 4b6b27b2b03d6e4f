package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	EventOrderConfirmed = "order.confirmed"
	EventStatusChanged  = "order.status_changed"
)

// Notification is the message published for the delivery workers. Amounts
// travel as fixed-point strings.
type Notification struct {
	Type         string    `json:"type"`
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	Email        string    `json:"email"`
	TotalAmount  string    `json:"total_amount,omitempty"`
	OrderStatus  string    `json:"order_status,omitempty"`
	At           time.Time `json:"at"`
}

type Producer struct {
	w *kafka.Writer
}

func NewProducer(brokersSTR, topic string) *Producer {
	brokers := strings.Split(brokersSTR, ",")

	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

func (p *Producer) Close() error {
	return p.w.Close()
}

func (p *Producer) Publish(ctx context.Context, n Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}

	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.OrderID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
}
