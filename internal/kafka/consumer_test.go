package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderOrderConfirmed(t *testing.T) {
	subject, body := Render(Notification{
		Type:         EventOrderConfirmed,
		OrderID:      "#ODR0001",
		CustomerName: "Ivan Petrov",
		Email:        "ivan@example.com",
		TotalAmount:  "25.50",
	})
	assert.Equal(t, "Your Order Confirmation", subject)
	assert.Contains(t, body, "Ivan Petrov")
	assert.Contains(t, body, "#ODR0001")
	assert.Contains(t, body, "$25.50")
}

func TestRenderStatusChanged(t *testing.T) {
	cases := map[string]string{
		"processing": "is being prepared",
		"shipped":    "is on its way to you",
		"delivered":  "has been delivered",
		"cancelled":  "has been cancelled",
		"weird":      "status has been updated to weird",
	}
	for status, phrase := range cases {
		subject, body := Render(Notification{
			Type:        EventStatusChanged,
			OrderID:     "#ODR0002",
			OrderStatus: status,
		})
		assert.Equal(t, "Order Update - #ODR0002", subject)
		assert.Contains(t, body, phrase)
	}
}
