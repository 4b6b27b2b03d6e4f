package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderDelivered, false},
		{OrderPending, OrderShipped, false},
		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderProcessing, OrderDelivered, false},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderDelivered, OrderPending, false},
		{OrderCancelled, OrderProcessing, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderDelivered.Terminal())
	assert.True(t, OrderCancelled.Terminal())
	assert.False(t, OrderPending.Terminal())
	assert.False(t, OrderProcessing.Terminal())
	assert.False(t, OrderShipped.Terminal())
	assert.False(t, OrderStatus("bogus").Terminal())
}

func TestOrderTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{FoodID: uuid.New(), FoodName: "Margherita", Price: decimal.RequireFromString("10.00"), Quantity: 2},
		{FoodID: uuid.New(), FoodName: "Cola", Price: decimal.RequireFromString("5.50"), Quantity: 1},
	}}
	require.True(t, o.Total().Equal(decimal.RequireFromString("25.50")), "got %s", o.Total())
}

func TestOrderTotalRounds(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Price: decimal.RequireFromString("3.333"), Quantity: 3},
	}}
	assert.Equal(t, "10.00", o.Total().StringFixed(2))
}

func TestMaskCard(t *testing.T) {
	assert.Equal(t, "42••••••••4242", MaskCard("4242424242424242"))
	assert.Equal(t, "••••", MaskCard("42"))
}
