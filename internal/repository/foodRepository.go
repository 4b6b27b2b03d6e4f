package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinehub/restaurant-api/internal/domain"
)

type FoodRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Food, error)
	List(ctx context.Context, categoryID uuid.UUID) ([]domain.Food, error)
	Create(ctx context.Context, f *domain.Food) error
	Update(ctx context.Context, f *domain.Food) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
}

type FoodRepository struct {
	pool *pgxpool.Pool
}

func NewFoodRepository(pool *pgxpool.Pool) *FoodRepository {
	return &FoodRepository{pool: pool}
}

func (r *FoodRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Food, error) {
	var f domain.Food
	err := r.pool.QueryRow(ctx, `
		SELECT id, food_name, image, price, description, category_id FROM foods WHERE id = $1
	`, id).Scan(&f.ID, &f.FoodName, &f.Image, &f.Price, &f.Description, &f.CategoryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: food %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FoodRepository) List(ctx context.Context, categoryID uuid.UUID) ([]domain.Food, error) {
	q := `SELECT id, food_name, image, price, description, category_id FROM foods`
	args := []any{}
	if categoryID != uuid.Nil {
		q += ` WHERE category_id = $1`
		args = append(args, categoryID)
	}
	q += ` ORDER BY food_name`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Food
	for rows.Next() {
		var f domain.Food
		if err := rows.Scan(&f.ID, &f.FoodName, &f.Image, &f.Price, &f.Description, &f.CategoryID); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FoodRepository) Create(ctx context.Context, f *domain.Food) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO foods (food_name, image, price, description, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, f.FoodName, f.Image, f.Price, f.Description, f.CategoryID).Scan(&f.ID)
	if isFKViolation(err) {
		return fmt.Errorf("%w: category %s", domain.ErrNotFound, f.CategoryID)
	}
	return err
}

func (r *FoodRepository) Update(ctx context.Context, f *domain.Food) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE foods SET food_name = $2, image = $3, price = $4, description = $5, category_id = $6
		WHERE id = $1
	`, f.ID, f.FoodName, f.Image, f.Price, f.Description, f.CategoryID)
	if isFKViolation(err) {
		return fmt.Errorf("%w: category %s", domain.ErrNotFound, f.CategoryID)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: food %s", domain.ErrNotFound, f.ID)
	}
	return nil
}

func (r *FoodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM foods WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: food %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *FoodRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, category_name, created_at, updated_at FROM categories ORDER BY category_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.CategoryName, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *FoodRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (category_name) VALUES ($1)
		RETURNING id, created_at, updated_at
	`, c.CategoryName).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: category %q exists", domain.ErrConflict, c.CategoryName)
	}
	return err
}

func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
