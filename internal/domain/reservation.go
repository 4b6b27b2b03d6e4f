package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending  ReservationStatus = "pending"
	ReservationAccepted ReservationStatus = "accepted"
	ReservationRejected ReservationStatus = "rejected"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationAccepted, ReservationRejected:
		return true
	}
	return false
}

type Reservation struct {
	ID               uuid.UUID         `json:"id"`
	FullName         string            `json:"full_name"`
	Email            string            `json:"email"`
	PhoneNumber      string            `json:"phone_number"`
	NumberOfAdults   int               `json:"number_of_adults"`
	NumberOfChildren int               `json:"number_of_children"`
	ReservedDate     time.Time         `json:"reserved_date"`
	ReservedTime     string            `json:"reserved_time"`
	Status           ReservationStatus `json:"status"`
	SpecialNote      string            `json:"special_note,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}
