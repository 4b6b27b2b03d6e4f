package presentation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinehub/restaurant-api/internal/auth"
	"github.com/dinehub/restaurant-api/internal/domain"
	"github.com/dinehub/restaurant-api/internal/payments"
)

func asCustomer(r *http.Request) *http.Request {
	id := domain.Identity{ID: "u1", Role: domain.RoleCustomer, Email: "ivan@example.com"}
	return r.WithContext(auth.WithIdentity(r.Context(), id))
}

func TestOrdersRoutesRequireAuth(t *testing.T) {
	r := chi.NewRouter()
	NewOrdersHandler(nil).Register(r)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/orders"},
		{http.MethodGet, "/orders"},
		{http.MethodGet, "/orders/admin/all"},
		{http.MethodGet, "/orders/revenue/total"},
		{http.MethodGet, "/orders/" + "0b51cbd7-8a6b-4b0e-b2d5-0d3a4ec5f6aa"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equalf(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCreateOrderRejectsBadJSON(t *testing.T) {
	r := chi.NewRouter()
	NewOrdersHandler(nil).Register(r)

	req := asCustomer(httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{oops")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid JSON")
}

func TestGetOrderRejectsBadID(t *testing.T) {
	r := chi.NewRouter()
	NewOrdersHandler(nil).Register(r)

	req := asCustomer(httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRevenueRejectsBadDates(t *testing.T) {
	r := chi.NewRouter()
	NewOrdersHandler(nil).Register(r)

	req := asCustomer(httptest.NewRequest(http.MethodGet, "/orders/revenue/total?from=yesterday", nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	r := chi.NewRouter()
	NewPaymentsHandler(nil, "whsec").Register(r)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{"type":"payment_intent.succeeded"}`))
	req.Header.Set("Webhook-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookAcceptsUnhandledEventTypes(t *testing.T) {
	r := chi.NewRouter()
	NewPaymentsHandler(nil, "whsec").Register(r)

	payload := []byte(`{"id":"evt_2","type":"payment_intent.created","data":{"object":{"id":"pi_9"}}}`)
	sig := payments.SignPayload(payload, "whsec", time.Now())

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Webhook-Signature", sig)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "received")
}

func TestRefundRequiresAuth(t *testing.T) {
	r := chi.NewRouter()
	NewPaymentsHandler(nil, "whsec").Register(r)

	req := httptest.NewRequest(http.MethodPost, "/payments/refund", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
