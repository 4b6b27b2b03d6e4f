package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinehub/restaurant-api/internal/domain"
)

const testSecret = "whsec_test"

var eventJSON = []byte(`{
	"id": "evt_1",
	"type": "payment_intent.succeeded",
	"data": {"object": {"id": "pi_123", "status": "succeeded"}}
}`)

func TestParseEventValidSignature(t *testing.T) {
	now := time.Now()
	sig := SignPayload(eventJSON, testSecret, now)

	ev, err := ParseEvent(eventJSON, sig, testSecret, DefaultTolerance, now)
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.succeeded", ev.Type)
	assert.Equal(t, "pi_123", ev.Data.Object.ID)
	assert.Equal(t, "succeeded", ev.Data.Object.Status)
}

func TestParseEventTamperedPayload(t *testing.T) {
	now := time.Now()
	sig := SignPayload(eventJSON, testSecret, now)

	tampered := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_999"}}}`)
	_, err := ParseEvent(tampered, sig, testSecret, DefaultTolerance, now)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestParseEventWrongSecret(t *testing.T) {
	now := time.Now()
	sig := SignPayload(eventJSON, "other-secret", now)

	_, err := ParseEvent(eventJSON, sig, testSecret, DefaultTolerance, now)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestParseEventStaleTimestamp(t *testing.T) {
	signedAt := time.Now().Add(-DefaultTolerance - time.Minute)
	sig := SignPayload(eventJSON, testSecret, signedAt)

	_, err := ParseEvent(eventJSON, sig, testSecret, DefaultTolerance, time.Now())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestParseEventMissingHeader(t *testing.T) {
	_, err := ParseEvent(eventJSON, "", testSecret, DefaultTolerance, time.Now())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = ParseEvent(eventJSON, "t=,v1=zz", testSecret, DefaultTolerance, time.Now())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestParseEventMalformedJSON(t *testing.T) {
	now := time.Now()
	payload := []byte(`{not json`)
	sig := SignPayload(payload, testSecret, now)

	_, err := ParseEvent(payload, sig, testSecret, DefaultTolerance, now)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
