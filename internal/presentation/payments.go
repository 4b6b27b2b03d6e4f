package presentation

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dinehub/restaurant-api/internal/application"
	"github.com/dinehub/restaurant-api/internal/logger"
	"github.com/dinehub/restaurant-api/internal/payments"
	"github.com/dinehub/restaurant-api/internal/presentation/helpers"
)

const webhookSignatureHeader = "Webhook-Signature"

type PaymentsHandler struct {
	svc           *application.OrdersService
	webhookSecret string
	now           func() time.Time
}

func NewPaymentsHandler(svc *application.OrdersService, webhookSecret string) *PaymentsHandler {
	return &PaymentsHandler{svc: svc, webhookSecret: webhookSecret, now: time.Now}
}

func (h *PaymentsHandler) Register(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/intent", h.CreateIntent)
		r.Post("/webhook", h.Webhook)
		r.Post("/refund", h.Refund)
	})
}

func (h *PaymentsHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var body struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
	}
	if err := helpers.DecodeJSON(r.Body, &body); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	intent, err := h.svc.CreateIntent(r.Context(), caller, body.Amount, body.Currency)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{
		"client_secret":     intent.ClientSecret,
		"payment_intent_id": intent.ID,
	})
}

// Webhook consumes the gateway's payment events. The raw body is verified
// against the signature header before anything is parsed or trusted.
func (h *PaymentsHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	ev, err := payments.ParseEvent(payload, r.Header.Get(webhookSignatureHeader), h.webhookSecret,
		payments.DefaultTolerance, h.now())
	if err != nil {
		logger.Warn("webhook rejected", "err", err)
		helpers.DomainError(w, err)
		return
	}

	if ev.Type == "payment_intent.succeeded" {
		if _, err := h.svc.ReconcilePayment(r.Context(), ev.Data.Object.ID); err != nil {
			helpers.DomainError(w, err)
			return
		}
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *PaymentsHandler) Refund(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var body struct {
		PaymentIntentID string           `json:"payment_intent_id"`
		Amount          *decimal.Decimal `json:"amount,omitempty"`
	}
	if err := helpers.DecodeJSON(r.Body, &body); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	o, err := h.svc.RefundPayment(r.Context(), caller, body.PaymentIntentID, body.Amount)
	if err != nil {
		helpers.DomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Refund issued",
		"order":   o,
	})
}
