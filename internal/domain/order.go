package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PayCash PaymentMethod = "cash"
	PayCard PaymentMethod = "card"
)

// orderTransitions is the single source of truth for the order state machine.
// delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0 && s.Valid()
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	return m == PayCash || m == PayCard
}

// OrderItem is a price/name snapshot taken at creation time, so later catalog
// changes never alter historical orders.
type OrderItem struct {
	FoodID   uuid.UUID       `json:"food_id"`
	FoodName string          `json:"food_name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         string          `json:"order_id"` // human readable, e.g. #ODR0001
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	DeliveryAddress string          `json:"delivery_address"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	OrderStatus     OrderStatus     `json:"order_status"`
	CardType        string          `json:"card_type,omitempty"`
	MaskedCard      string          `json:"masked_card,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
}

// Total recomputes the amount from the item snapshots, rounded to cents.
// The persisted TotalAmount must always equal this value.
func (o *Order) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.Round(2)
}

// MaskCard keeps the first 2 and last 4 digits visible.
func MaskCard(number string) string {
	if len(number) < 6 {
		return "••••"
	}
	return number[:2] + "••••••••" + number[len(number)-4:]
}
