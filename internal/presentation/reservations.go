package presentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dinehub/restaurant-api/internal/application"
	"github.com/dinehub/restaurant-api/internal/domain"
	"github.com/dinehub/restaurant-api/internal/presentation/helpers"
)

type ReservationsHandler struct {
	svc *application.ReservationsService
}

func NewReservationsHandler(svc *application.ReservationsService) *ReservationsHandler {
	return &ReservationsHandler{svc: svc}
}

func (h *ReservationsHandler) Register(r chi.Router) {
	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Patch("/{id}/status", h.SetStatus)
	})
}

func (h *ReservationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var res domain.Reservation
	if err := helpers.DecodeJSON(r.Body, &res); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	created, err := h.svc.Create(r.Context(), &res)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, created)
}

func (h *ReservationsHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	status := domain.ReservationStatus(r.URL.Query().Get("status"))
	reservations, err := h.svc.List(r.Context(), caller, status)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (h *ReservationsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}
	var body struct {
		Status domain.ReservationStatus `json:"status"`
	}
	if err := helpers.DecodeJSON(r.Body, &body); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	res, err := h.svc.SetStatus(r.Context(), caller, id, body.Status)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, res)
}
