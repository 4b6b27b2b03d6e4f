package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dinehub/restaurant-api/internal/domain"
	"github.com/dinehub/restaurant-api/internal/logger"
)

type OrderFilter struct {
	CustomerID    string
	Status        domain.OrderStatus
	PaymentMethod domain.PaymentMethod
	Page          int
	Limit         int
	SortBy        string
	SortOrder     string
}

// StatusUpdate is applied with a compare-and-swap on the current order
// status; nil fields are left untouched.
type StatusUpdate struct {
	From          domain.OrderStatus
	To            domain.OrderStatus
	PaymentStatus *domain.PaymentStatus
	CancelledAt   *time.Time
	DeliveredAt   *time.Time
}

type RevenueBucket struct {
	Day   time.Time
	Total decimal.Decimal
}

type OrderRepo interface {
	Add(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	GetByIntentID(ctx context.Context, intentID string) (*domain.Order, error)
	List(ctx context.Context, f OrderFilter) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, u StatusUpdate) error
	MarkPaid(ctx context.Context, intentID string) (bool, error)
	RevenueTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenueBucket, error)
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, order_id, customer_id, customer_name, email, phone, delivery_address,
	items, total_amount, payment_method, payment_intent_id, payment_status, order_status,
	card_type, masked_card, created_at, updated_at, cancelled_at, delivered_at`

func (r *OrderRepository) Add(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	var intentID *string
	if o.PaymentIntentID != "" {
		intentID = &o.PaymentIntentID
	}
	var cardType, maskedCard *string
	if o.CardType != "" {
		cardType = &o.CardType
	}
	if o.MaskedCard != "" {
		maskedCard = &o.MaskedCard
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO orders
			(order_id, customer_id, customer_name, email, phone, delivery_address,
			 items, total_amount, payment_method, payment_intent_id, payment_status, order_status,
			 card_type, masked_card)
		VALUES
			($1, $2, $3, $4, $5, $6,
			 $7, $8, $9, $10, $11, $12,
			 $13, $14)
		RETURNING id, created_at, updated_at
	`,
		o.OrderID,
		o.CustomerID,
		o.CustomerName,
		o.Email,
		o.Phone,
		o.DeliveryAddress,
		items,
		o.TotalAmount,
		o.PaymentMethod,
		intentID,
		o.PaymentStatus,
		o.OrderStatus,
		cardType,
		maskedCard,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: duplicate order or payment intent id", domain.ErrConflict)
		}
		logger.Warn("order insert failed", "err", err)
		return err
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.getBy(ctx, "order_id = $1", orderID)
}

func (r *OrderRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Order, error) {
	return r.getBy(ctx, "payment_intent_id = $1", intentID)
}

func (r *OrderRepository) getBy(ctx context.Context, where string, arg any) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: order", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

var orderSortColumns = map[string]string{
	"created_at":   "created_at",
	"total_amount": "total_amount",
	"order_status": "order_status",
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]domain.Order, int64, error) {
	where := "TRUE"
	args := []any{}
	n := 0
	add := func(cond string, v any) {
		n++
		where += fmt.Sprintf(" AND %s = $%d", cond, n)
		args = append(args, v)
	}
	if f.CustomerID != "" {
		add("customer_id", f.CustomerID)
	}
	if f.Status != "" {
		add("order_status", f.Status)
	}
	if f.PaymentMethod != "" {
		add("payment_method", f.PaymentMethod)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy, ok := orderSortColumns[f.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	dir := "DESC"
	if f.SortOrder == "asc" {
		dir = "ASC"
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	q := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		orderColumns, where, sortBy, dir, n+1, n+2)
	args = append(args, f.Limit, offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

// UpdateStatus applies the transition only if the order is still in u.From;
// zero rows affected means another writer won the race (or the caller saw a
// stale status) and surfaces as ErrConflict.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, u StatusUpdate) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET
			order_status   = $3,
			payment_status = COALESCE($4, payment_status),
			cancelled_at   = COALESCE($5, cancelled_at),
			delivered_at   = COALESCE($6, delivered_at),
			updated_at     = now()
		WHERE id = $1 AND order_status = $2
	`, id, u.From, u.To, u.PaymentStatus, u.CancelledAt, u.DeliveredAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order status changed concurrently", domain.ErrConflict)
	}
	return nil
}

// MarkPaid is the webhook reconciliation write. The payment_status guard
// makes re-delivered events no-ops: a second delivery affects zero rows.
func (r *OrderRepository) MarkPaid(ctx context.Context, intentID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET
			payment_status = 'completed',
			order_status   = CASE WHEN order_status = 'pending' THEN 'processing' ELSE order_status END,
			updated_at     = now()
		WHERE payment_intent_id = $1 AND payment_status = 'pending'
	`, intentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OrderRepository) RevenueTotal(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0) FROM orders
		WHERE payment_status = 'completed' AND created_at >= $1 AND created_at < $2
	`, from, to).Scan(&total)
	return total, err
}

func (r *OrderRepository) RevenueByDay(ctx context.Context, from, to time.Time) ([]RevenueBucket, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day, SUM(total_amount)
		FROM orders
		WHERE payment_status = 'completed' AND created_at >= $1 AND created_at < $2
		GROUP BY 1 ORDER BY 1
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RevenueBucket
	for rows.Next() {
		var b RevenueBucket
		if err := rows.Scan(&b.Day, &b.Total); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o          domain.Order
		items      []byte
		intentID   *string
		cardType   *string
		maskedCard *string
	)
	err := row.Scan(
		&o.ID, &o.OrderID, &o.CustomerID, &o.CustomerName, &o.Email, &o.Phone, &o.DeliveryAddress,
		&items, &o.TotalAmount, &o.PaymentMethod, &intentID, &o.PaymentStatus, &o.OrderStatus,
		&cardType, &maskedCard, &o.CreatedAt, &o.UpdatedAt, &o.CancelledAt, &o.DeliveredAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if intentID != nil {
		o.PaymentIntentID = *intentID
	}
	if cardType != nil {
		o.CardType = *cardType
	}
	if maskedCard != nil {
		o.MaskedCard = *maskedCard
	}
	return &o, nil
}
