package application

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinehub/restaurant-api/internal/domain"
	"github.com/dinehub/restaurant-api/internal/kafka"
	"github.com/dinehub/restaurant-api/internal/logger"
	"github.com/dinehub/restaurant-api/internal/payments"
	"github.com/dinehub/restaurant-api/internal/repository"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cardRe  = regexp.MustCompile(`^\d{13,19}$`)
)

const (
	gatewayTimeout = 15 * time.Second
	notifyTimeout  = 5 * time.Second

	minAddressLen = 5
)

// CatalogLookup resolves a food id to its current name and price.
type CatalogLookup interface {
	GetFood(ctx context.Context, id uuid.UUID) (*domain.Food, error)
}

// Notifier is the fire-and-forget notification sink. Publish errors are
// logged by the service, never propagated.
type Notifier interface {
	Publish(ctx context.Context, n kafka.Notification) error
}

type OrdersService struct {
	orders   repository.OrderRepo
	counters repository.CounterRepo
	catalog  CatalogLookup
	gateway  payments.Gateway
	notifier Notifier
	now      func() time.Time
}

func NewOrdersService(orders repository.OrderRepo, counters repository.CounterRepo,
	catalog CatalogLookup, gateway payments.Gateway, notifier Notifier) *OrdersService {
	return &OrdersService{
		orders:   orders,
		counters: counters,
		catalog:  catalog,
		gateway:  gateway,
		notifier: notifier,
		now:      time.Now,
	}
}

type CreateOrderItem struct {
	FoodID   uuid.UUID `json:"food_id"`
	Quantity int       `json:"quantity"`
}

type CreateOrderInput struct {
	Items           []CreateOrderItem    `json:"items"`
	DeliveryAddress string               `json:"delivery_address"`
	Phone           string               `json:"phone"`
	CustomerName    string               `json:"customer_name"`
	Email           string               `json:"email"`
	PaymentMethod   domain.PaymentMethod `json:"payment_method"`
	CardNumber      string               `json:"card_number,omitempty"`
	CardType        string               `json:"card_type,omitempty"`
}

type CreateOrderResult struct {
	Order           *domain.Order `json:"order"`
	RequiresPayment bool          `json:"requires_payment"`
	ClientSecret    string        `json:"client_secret,omitempty"`
}

// CreateOrder validates the request, snapshots catalog prices into the order,
// computes the total server-side, mints the human-readable id and persists.
// Card orders are stored in pending payment state right away and reconciled
// later via the gateway webhook; cash is treated as due on delivery.
func (s *OrdersService) CreateOrder(ctx context.Context, caller domain.Identity, in CreateOrderInput) (*CreateOrderResult, error) {
	if !caller.Is(domain.RoleCustomer) {
		return nil, fmt.Errorf("%w: customer role required", domain.ErrUnauthorized)
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		food, err := s.catalog.GetFood(ctx, it.FoodID)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			FoodID:   food.ID,
			FoodName: food.FoodName,
			Price:    food.Price,
			Quantity: it.Quantity,
		})
	}

	seq, err := s.counters.Next(ctx, "orderId")
	if err != nil {
		return nil, fmt.Errorf("order sequence: %w", err)
	}

	o := &domain.Order{
		OrderID:         fmt.Sprintf("#ODR%04d", seq),
		CustomerID:      caller.ID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		Email:           in.Email,
		Phone:           in.Phone,
		DeliveryAddress: in.DeliveryAddress,
		Items:           items,
		PaymentMethod:   in.PaymentMethod,
		OrderStatus:     domain.OrderPending,
	}
	o.TotalAmount = o.Total()

	res := &CreateOrderResult{Order: o}

	switch in.PaymentMethod {
	case domain.PayCard:
		gwCtx, cancel := context.WithTimeout(ctx, gatewayTimeout)
		defer cancel()
		intent, err := s.gateway.CreateIntent(gwCtx, o.TotalAmount, "usd", map[string]string{
			"order_id": o.OrderID,
			"customer": caller.ID,
		})
		if err != nil {
			return nil, err
		}
		o.PaymentIntentID = intent.ID
		o.PaymentStatus = domain.PaymentPending
		o.CardType = in.CardType
		o.MaskedCard = domain.MaskCard(in.CardNumber)
		res.RequiresPayment = true
		res.ClientSecret = intent.ClientSecret
	case domain.PayCash:
		o.PaymentStatus = domain.PaymentCompleted
	}

	if err := s.orders.Add(ctx, o); err != nil {
		return nil, err
	}

	if in.PaymentMethod == domain.PayCash {
		s.notify(ctx, kafka.Notification{
			Type:         kafka.EventOrderConfirmed,
			OrderID:      o.OrderID,
			CustomerName: o.CustomerName,
			Email:        o.Email,
			TotalAmount:  o.TotalAmount.StringFixed(2),
			At:           s.now(),
		})
	}
	return res, nil
}

func validateCreate(in CreateOrderInput) error {
	fail := func(msg string) error { return fmt.Errorf("%w: %s", domain.ErrValidation, msg) }

	if strings.TrimSpace(in.CustomerName) == "" {
		return fail("customer name is required")
	}
	if !emailRe.MatchString(in.Email) {
		return fail("invalid email")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return fail("phone is required")
	}
	if len(strings.TrimSpace(in.DeliveryAddress)) < minAddressLen {
		return fail("delivery address is too short")
	}
	if len(in.Items) == 0 {
		return fail("order items must be a non-empty list")
	}
	for _, it := range in.Items {
		if it.FoodID == uuid.Nil {
			return fail("item food id is required")
		}
		if it.Quantity <= 0 {
			return fail("item quantity must be positive")
		}
	}
	if !in.PaymentMethod.Valid() {
		return fail("payment method must be cash or card")
	}
	if in.PaymentMethod == domain.PayCard {
		if !cardRe.MatchString(in.CardNumber) {
			return fail("invalid card number format")
		}
		if strings.TrimSpace(in.CardType) == "" {
			return fail("card type is required for card payments")
		}
	}
	return nil
}

// GetOrder returns the order if the caller owns it or is an admin.
// Non-owned orders read as not found so ids do not leak.
func (s *OrdersService) GetOrder(ctx context.Context, caller domain.Identity, id uuid.UUID) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Is(domain.RoleAdmin) && o.CustomerID != caller.ID {
		return nil, fmt.Errorf("%w: order", domain.ErrNotFound)
	}
	return o, nil
}

type OrderPage struct {
	Orders []domain.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

func (s *OrdersService) ListOrders(ctx context.Context, caller domain.Identity, f repository.OrderFilter) (*OrderPage, error) {
	f.CustomerID = caller.ID
	f.PaymentMethod = ""
	return s.list(ctx, f)
}

func (s *OrdersService) ListAllOrders(ctx context.Context, caller domain.Identity, f repository.OrderFilter) (*OrderPage, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrUnauthorized)
	}
	return s.list(ctx, f)
}

func (s *OrdersService) list(ctx context.Context, f repository.OrderFilter) (*OrderPage, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, f.Status)
	}
	if f.PaymentMethod != "" && !f.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, f.PaymentMethod)
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// UpdateStatus applies an admin-driven state machine transition.
func (s *OrdersService) UpdateStatus(ctx context.Context, caller domain.Identity, id uuid.UUID, to domain.OrderStatus) (*domain.Order, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrUnauthorized)
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, o, to, nil)
}

// CancelOrder is the customer-initiated cancellation, allowed while the
// order has not shipped.
func (s *OrdersService) CancelOrder(ctx context.Context, caller domain.Identity, id uuid.UUID) (*domain.Order, error) {
	o, err := s.GetOrder(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, o, domain.OrderCancelled, nil)
}

// transition enforces the order state machine and its side effects. For a
// cancellation of a captured card payment, the refund is issued before the
// status is committed: a gateway failure rejects the cancellation so money
// state and order state never diverge.
func (s *OrdersService) transition(ctx context.Context, o *domain.Order, to domain.OrderStatus, refundAmount *decimal.Decimal) (*domain.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, to)
	}
	if !o.OrderStatus.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.OrderStatus, to)
	}

	u := repository.StatusUpdate{From: o.OrderStatus, To: to}
	now := s.now()

	switch to {
	case domain.OrderCancelled:
		ps := domain.PaymentFailed
		if o.PaymentMethod == domain.PayCard && o.PaymentStatus == domain.PaymentCompleted {
			gwCtx, cancel := context.WithTimeout(ctx, gatewayTimeout)
			defer cancel()
			if _, err := s.gateway.Refund(gwCtx, o.PaymentIntentID, refundAmount); err != nil {
				return nil, err
			}
			ps = domain.PaymentRefunded
		}
		u.PaymentStatus = &ps
		u.CancelledAt = &now
	case domain.OrderDelivered:
		ps := domain.PaymentCompleted
		u.PaymentStatus = &ps
		u.DeliveredAt = &now
	}

	if err := s.orders.UpdateStatus(ctx, o.ID, u); err != nil {
		if errors.Is(err, domain.ErrConflict) && u.PaymentStatus != nil && *u.PaymentStatus == domain.PaymentRefunded {
			// Refund already went out; without the status commit the order
			// would claim a completed payment. Surface loudly.
			logger.Error("refund issued but status commit lost a race", "order_id", o.OrderID)
		}
		return nil, err
	}

	o.OrderStatus = to
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
	o.CancelledAt = u.CancelledAt
	if u.DeliveredAt != nil {
		o.DeliveredAt = u.DeliveredAt
	}
	o.UpdatedAt = now

	s.notify(ctx, kafka.Notification{
		Type:         kafka.EventStatusChanged,
		OrderID:      o.OrderID,
		CustomerName: o.CustomerName,
		Email:        o.Email,
		OrderStatus:  string(to),
		At:           now,
	})
	return o, nil
}

// ReconcilePayment handles a verified payment-succeeded webhook event.
// Re-delivery of the same event is a no-op: the guarded update only fires
// while the payment is still pending.
func (s *OrdersService) ReconcilePayment(ctx context.Context, intentID string) (*domain.Order, error) {
	o, err := s.orders.GetByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus != domain.PaymentPending {
		return o, nil
	}

	updated, err := s.orders.MarkPaid(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if !updated {
		// A concurrent delivery got there first.
		return s.orders.GetByIntentID(ctx, intentID)
	}

	o.PaymentStatus = domain.PaymentCompleted
	if o.OrderStatus == domain.OrderPending {
		o.OrderStatus = domain.OrderProcessing
	}

	s.notify(ctx, kafka.Notification{
		Type:         kafka.EventOrderConfirmed,
		OrderID:      o.OrderID,
		CustomerName: o.CustomerName,
		Email:        o.Email,
		TotalAmount:  o.TotalAmount.StringFixed(2),
		At:           s.now(),
	})
	return o, nil
}

// CreateIntent exposes standalone intent creation for client-side payment
// flows not tied to checkout.
func (s *OrdersService) CreateIntent(ctx context.Context, caller domain.Identity, amount decimal.Decimal, currency string) (*payments.Intent, error) {
	if caller.ID == "" {
		return nil, fmt.Errorf("%w: login required", domain.ErrUnauthenticated)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: valid amount is required", domain.ErrValidation)
	}
	if currency == "" {
		currency = "usd"
	}
	gwCtx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()
	return s.gateway.CreateIntent(gwCtx, amount, currency, map[string]string{"customer": caller.ID})
}

// RefundPayment is the admin-driven refund: it cancels the order and refunds
// the captured amount (full when amount is nil).
func (s *OrdersService) RefundPayment(ctx context.Context, caller domain.Identity, intentID string, amount *decimal.Decimal) (*domain.Order, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrUnauthorized)
	}
	if intentID == "" {
		return nil, fmt.Errorf("%w: payment intent id is required", domain.ErrValidation)
	}
	o, err := s.orders.GetByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus != domain.PaymentCompleted {
		return nil, fmt.Errorf("%w: payment %s is not captured", domain.ErrValidation, intentID)
	}
	return s.transition(ctx, o, domain.OrderCancelled, amount)
}

type RevenueBucket struct {
	Day   string          `json:"day"`
	Total decimal.Decimal `json:"total"`
}

func (s *OrdersService) RevenueTotal(ctx context.Context, caller domain.Identity, from, to time.Time) (decimal.Decimal, error) {
	if !caller.Is(domain.RoleAdmin) {
		return decimal.Zero, fmt.Errorf("%w: admin role required", domain.ErrUnauthorized)
	}
	if !from.Before(to) {
		return decimal.Zero, fmt.Errorf("%w: empty date range", domain.ErrValidation)
	}
	return s.orders.RevenueTotal(ctx, from, to)
}

// RevenueTrends returns one bucket per day over [from, to), zero-filled for
// days without completed payments.
func (s *OrdersService) RevenueTrends(ctx context.Context, caller domain.Identity, from, to time.Time) ([]RevenueBucket, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrUnauthorized)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: empty date range", domain.ErrValidation)
	}

	rows, err := s.orders.RevenueByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Format("2006-01-02")] = r.Total
	}

	var out []RevenueBucket
	for d := from.UTC().Truncate(24 * time.Hour); d.Before(to); d = d.Add(24 * time.Hour) {
		key := d.Format("2006-01-02")
		total, ok := byDay[key]
		if !ok {
			total = decimal.Zero
		}
		out = append(out, RevenueBucket{Day: key, Total: total})
	}
	return out, nil
}

func (s *OrdersService) notify(ctx context.Context, n kafka.Notification) {
	if s.notifier == nil {
		return
	}
	nCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.Publish(nCtx, n); err != nil {
		logger.Warn("notification publish failed", "type", n.Type, "order_id", n.OrderID, "err", err)
	}
}
