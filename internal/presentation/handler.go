package presentation

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dinehub/restaurant-api/internal/application"
	"github.com/dinehub/restaurant-api/internal/auth"
	"github.com/dinehub/restaurant-api/internal/domain"
	"github.com/dinehub/restaurant-api/internal/presentation/helpers"
	"github.com/dinehub/restaurant-api/internal/repository"
)

type OrdersHandler struct {
	svc *application.OrdersService
}

func NewOrdersHandler(svc *application.OrdersService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/admin/all", h.ListAllOrders)
		r.Get("/revenue/total", h.RevenueTotal)
		r.Get("/revenue/trends", h.RevenueTrends)
		r.Get("/{id}", h.GetOrder)
		r.Patch("/{id}/cancel", h.CancelOrder)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
}

// identity pulls the verified caller off the context; authenticated routes
// bail out with 401 when it is missing.
func identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		helpers.HttpError(w, http.StatusUnauthorized, "authentication required")
	}
	return id, ok
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var in application.CreateOrderInput
	if err := helpers.DecodeJSON(r.Body, &in); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res, err := h.svc.CreateOrder(r.Context(), caller, in)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}

	if res.RequiresPayment {
		helpers.WriteJSON(w, http.StatusOK, map[string]any{
			"requires_payment": true,
			"client_secret":    res.ClientSecret,
			"order":            res.Order,
		})
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Order created successfully",
		"order":   res.Order,
	})
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	page, err := h.svc.ListOrders(r.Context(), caller, filterFromQuery(r))
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, page)
}

func (h *OrdersHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	page, err := h.svc.ListAllOrders(r.Context(), caller, filterFromQuery(r))
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, page)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.GetOrder(r.Context(), caller, id)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	o, err := h.svc.CancelOrder(r.Context(), caller, id)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Order cancelled",
		"order":   o,
	})
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var body struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := helpers.DecodeJSON(r.Body, &body); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), caller, id, body.Status)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Order status updated",
		"order":   o,
	})
}

func (h *OrdersHandler) RevenueTotal(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	total, err := h.svc.RevenueTotal(r.Context(), caller, from, to)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"total": total,
	})
}

func (h *OrdersHandler) RevenueTrends(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	buckets, err := h.svc.RevenueTrends(r.Context(), caller, from, to)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"trends": buckets})
}

func filterFromQuery(r *http.Request) repository.OrderFilter {
	q := r.URL.Query()
	f := repository.OrderFilter{
		SortBy:        q.Get("sortBy"),
		SortOrder:     q.Get("sortOrder"),
		Status:        domain.OrderStatus(q.Get("status")),
		PaymentMethod: domain.PaymentMethod(q.Get("paymentMethod")),
	}
	f.Page = atoiDefault(q.Get("page"), 1)
	f.Limit = atoiDefault(q.Get("limit"), 20)
	return f
}

// dateRange parses from/to (YYYY-MM-DD, to exclusive) defaulting to the last
// 30 days.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	now := time.Now().UTC()
	to := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	from := to.AddDate(0, 0, -30)

	var err error
	if v := q.Get("from"); v != "" {
		if from, err = time.Parse("2006-01-02", v); err != nil {
			return time.Time{}, time.Time{}, invalidDate(v)
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = time.Parse("2006-01-02", v); err != nil {
			return time.Time{}, time.Time{}, invalidDate(v)
		}
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func invalidDate(v string) error {
	return fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", domain.ErrValidation, v)
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
