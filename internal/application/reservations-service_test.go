package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinehub/restaurant-api/internal/domain"
)

type memReservations struct {
	mu   sync.Mutex
	byID map[uuid.UUID]domain.Reservation
}

func newMemReservations() *memReservations {
	return &memReservations{byID: map[uuid.UUID]domain.Reservation{}}
}

func (m *memReservations) Add(ctx context.Context, res *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	res.ID = uuid.New()
	res.CreatedAt = time.Now()
	m.byID[res.ID] = *res
	return nil
}

func (m *memReservations) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: reservation", domain.ErrNotFound)
	}
	return &r, nil
}

func (m *memReservations) List(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Reservation
	for _, r := range m.byID {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReservations) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReservationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: reservation", domain.ErrNotFound)
	}
	r.Status = status
	m.byID[id] = r
	return nil
}

func validReservation() domain.Reservation {
	return domain.Reservation{
		FullName:         "Ivan Petrov",
		Email:            "ivan@example.com",
		PhoneNumber:      "+7 999 111-22-33",
		NumberOfAdults:   2,
		NumberOfChildren: 1,
		ReservedDate:     time.Now().AddDate(0, 0, 3),
		ReservedTime:     "19:30",
	}
}

func TestReservationCreate(t *testing.T) {
	svc := NewReservationsService(newMemReservations())

	res := validReservation()
	created, err := svc.Create(context.Background(), &res)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationPending, created.Status)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestReservationValidation(t *testing.T) {
	svc := NewReservationsService(newMemReservations())

	cases := []struct {
		name   string
		mutate func(*domain.Reservation)
	}{
		{"no name", func(r *domain.Reservation) { r.FullName = " " }},
		{"bad email", func(r *domain.Reservation) { r.Email = "nope" }},
		{"no phone", func(r *domain.Reservation) { r.PhoneNumber = "" }},
		{"no adults", func(r *domain.Reservation) { r.NumberOfAdults = 0 }},
		{"negative children", func(r *domain.Reservation) { r.NumberOfChildren = -1 }},
		{"zero date", func(r *domain.Reservation) { r.ReservedDate = time.Time{} }},
		{"bad time", func(r *domain.Reservation) { r.ReservedTime = "25:99" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := validReservation()
			c.mutate(&res)
			_, err := svc.Create(context.Background(), &res)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestReservationStatusFlow(t *testing.T) {
	repo := newMemReservations()
	svc := NewReservationsService(repo)

	res := validReservation()
	created, err := svc.Create(context.Background(), &res)
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), customer, created.ID, domain.ReservationAccepted)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	updated, err := svc.SetStatus(context.Background(), admin, created.ID, domain.ReservationAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationAccepted, updated.Status)

	_, err = svc.SetStatus(context.Background(), admin, created.ID, "stalled")
	assert.ErrorIs(t, err, domain.ErrValidation)

	list, err := svc.List(context.Background(), admin, domain.ReservationAccepted)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
