package application

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/dinehub/restaurant-api/internal/domain"
	"github.com/dinehub/restaurant-api/internal/repository"
)

var timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type ReservationsService struct {
	reservations repository.ReservationRepo
}

func NewReservationsService(r repository.ReservationRepo) *ReservationsService {
	return &ReservationsService{reservations: r}
}

func (s *ReservationsService) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	fail := func(msg string) error { return fmt.Errorf("%w: %s", domain.ErrValidation, msg) }

	if strings.TrimSpace(res.FullName) == "" {
		return nil, fail("full name is required")
	}
	if !emailRe.MatchString(res.Email) {
		return nil, fail("invalid email")
	}
	if strings.TrimSpace(res.PhoneNumber) == "" {
		return nil, fail("phone number is required")
	}
	if res.NumberOfAdults <= 0 {
		return nil, fail("at least one adult is required")
	}
	if res.NumberOfChildren < 0 {
		return nil, fail("number of children cannot be negative")
	}
	if res.ReservedDate.IsZero() {
		return nil, fail("reserved date is required")
	}
	if !timeRe.MatchString(res.ReservedTime) {
		return nil, fail("reserved time must be HH:MM")
	}

	res.Status = domain.ReservationPending
	if err := s.reservations.Add(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ReservationsService) List(ctx context.Context, caller domain.Identity, status domain.ReservationStatus) ([]domain.Reservation, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrUnauthorized)
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.reservations.List(ctx, status)
}

func (s *ReservationsService) SetStatus(ctx context.Context, caller domain.Identity, id uuid.UUID, status domain.ReservationStatus) (*domain.Reservation, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrUnauthorized)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	if err := s.reservations.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.reservations.GetByID(ctx, id)
}
