package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/dinehub/restaurant-api/internal/domain"
	"github.com/dinehub/restaurant-api/internal/logger"
	"github.com/dinehub/restaurant-api/internal/repository"
)

// minAmount is the gateway's floor for card charges ($0.50).
var minAmount = decimal.RequireFromString("0.50")

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error)
	Refund(ctx context.Context, intentID string, amount *decimal.Decimal) (string, error)
}

// HTTPGateway talks to the external payment processor's REST API. All calls
// are bounded by the client timeout and retried with fibonacci backoff on
// transport errors and 5xx responses.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error) {
	if amount.LessThan(minAmount) {
		return nil, fmt.Errorf("%w: amount must be at least $0.50", domain.ErrValidation)
	}
	body := map[string]any{
		"amount":   amount.Mul(decimal.NewFromInt(100)).IntPart(), // cents
		"currency": currency,
		"metadata": metadata,
		"automatic_payment_methods": map[string]bool{"enabled": true},
	}

	var intent Intent
	if err := g.post(ctx, "/v1/payment_intents", body, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (g *HTTPGateway) Refund(ctx context.Context, intentID string, amount *decimal.Decimal) (string, error) {
	body := map[string]any{"payment_intent": intentID}
	if amount != nil {
		body["amount"] = amount.Mul(decimal.NewFromInt(100)).IntPart()
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := g.post(ctx, "/v1/refunds", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+g.apiKey)

		resp, err := g.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode >= 500 {
			logger.Warn("gateway 5xx, will retry", "path", path, "status", resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("%w: gateway returned %d", domain.ErrUpstream, resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%w: gateway returned %d: %s", domain.ErrUpstream, resp.StatusCode, raw)
		}
		return json.Unmarshal(raw, out)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrUpstream, path, err)
	}
	return nil
}

// OfflineGateway mints placeholder intents from the payment counter instead
// of calling out. Used for deployments without gateway credentials and in
// tests; ids look like #PAY011234567.
type OfflineGateway struct {
	counters repository.CounterRepo
}

func NewOfflineGateway(counters repository.CounterRepo) *OfflineGateway {
	return &OfflineGateway{counters: counters}
}

func (g *OfflineGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error) {
	if amount.LessThan(minAmount) {
		return nil, fmt.Errorf("%w: amount must be at least $0.50", domain.ErrValidation)
	}
	seq, err := g.counters.Next(ctx, "paymentId")
	if err != nil {
		return nil, err
	}
	id := fmt.Sprintf("#PAY%02d%07d", seq, 1000000+rand.Intn(9000000))
	return &Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
	}, nil
}

func (g *OfflineGateway) Refund(ctx context.Context, intentID string, amount *decimal.Decimal) (string, error) {
	return "re_" + intentID, nil
}
