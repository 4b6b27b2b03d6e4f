package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dinehub/restaurant-api/internal/domain"
)

type ReservationRepo interface {
	Add(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	List(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReservationStatus) error
}

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

const reservationColumns = `id, full_name, email, phone_number, number_of_adults,
	number_of_children, reserved_date, reserved_time, status, special_note, created_at`

func (r *ReservationRepository) Add(ctx context.Context, res *domain.Reservation) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO reservations
			(full_name, email, phone_number, number_of_adults, number_of_children,
			 reserved_date, reserved_time, status, special_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`,
		res.FullName, res.Email, res.PhoneNumber, res.NumberOfAdults, res.NumberOfChildren,
		res.ReservedDate, res.ReservedTime, res.Status, res.SpecialNote,
	).Scan(&res.ID, &res.CreatedAt)
}

func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.pool.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id).
		Scan(&res.ID, &res.FullName, &res.Email, &res.PhoneNumber, &res.NumberOfAdults,
			&res.NumberOfChildren, &res.ReservedDate, &res.ReservedTime, &res.Status,
			&res.SpecialNote, &res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: reservation %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) List(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations`
	args := []any{}
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += ` ORDER BY reserved_date, reserved_time`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.FullName, &res.Email, &res.PhoneNumber,
			&res.NumberOfAdults, &res.NumberOfChildren, &res.ReservedDate, &res.ReservedTime,
			&res.Status, &res.SpecialNote, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReservationStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reservations SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: reservation %s", domain.ErrNotFound, id)
	}
	return nil
}
