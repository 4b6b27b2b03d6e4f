package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CounterRepo interface {
	Next(ctx context.Context, name string) (int64, error)
}

type CounterRepository struct {
	pool *pgxpool.Pool
}

func NewCounterRepository(pool *pgxpool.Pool) *CounterRepository {
	return &CounterRepository{pool: pool}
}

// Next atomically increments the named counter and returns the new value,
// creating the counter on first use. The upsert runs as a single statement,
// so concurrent callers never observe the same value.
func (r *CounterRepository) Next(ctx context.Context, name string) (int64, error) {
	var v int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`, name).Scan(&v)
	if err != nil {
		return 0, err
	}
	return v, nil
}
