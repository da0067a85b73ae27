//go:build unit

package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mathsandmelody-api/internal/infra/payment"
	"mathsandmelody-api/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *payment.Client {
	return payment.NewClient(config.PaymentConfig{
		APIBaseURL:       baseURL,
		SecretKey:        "sk_test_dummy",
		WebhookSecret:    string(testSecret),
		Currency:         "usd",
		SuccessURL:       "http://localhost:3000/booking/success",
		CancelURL:        "http://localhost:3000/booking/cancel",
		RequestTimeout:   5 * time.Second,
		SignatureMaxSkew: 5 * time.Minute,
	})
}

func TestCreateCheckoutSession(t *testing.T) {
	req := payment.CreateSessionRequest{
		BookingID:   "3f1d5f44-0000-4000-8000-000000000001",
		AmountCents: 6000,
		Currency:    "usd",
		SuccessURL:  "http://localhost:3000/booking/success",
		CancelURL:   "http://localhost:3000/booking/cancel",
	}

	t.Run("success: posts correlation metadata and returns the session", func(t *testing.T) {
		var captured map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_dummy", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://pay.example.com/cs_test_1"}`))
		}))
		defer srv.Close()

		session, err := testClient(srv.URL).CreateCheckoutSession(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "cs_test_1", session.ID)
		assert.Equal(t, "https://pay.example.com/cs_test_1", session.URL)

		// Correlation rides on both the session and the derived payment intent.
		metadata, _ := captured["metadata"].(map[string]any)
		intentMetadata, _ := captured["payment_intent_metadata"].(map[string]any)
		assert.Equal(t, req.BookingID, metadata["booking_id"])
		assert.Equal(t, req.BookingID, intentMetadata["booking_id"])
	})

	t.Run("error: non-2xx response maps to provider failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"error":{"message":"card declined"}}`))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).CreateCheckoutSession(context.Background(), req)

		require.ErrorIs(t, err, payment.ErrProviderFailure)
		assert.Contains(t, err.Error(), "card declined")
	})

	t.Run("error: empty session id is a provider failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"url":"https://pay.example.com/nothing"}`))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).CreateCheckoutSession(context.Background(), req)
		require.ErrorIs(t, err, payment.ErrProviderFailure)
	})

	t.Run("error: unreachable provider is a provider failure", func(t *testing.T) {
		_, err := testClient("http://127.0.0.1:1").CreateCheckoutSession(context.Background(), req)
		require.ErrorIs(t, err, payment.ErrProviderFailure)
	})
}

func TestVerifyAndParseWebhook(t *testing.T) {
	client := testClient("http://unused")

	sign := func(body []byte) http.Header {
		h := http.Header{}
		h.Set(payment.SignatureHeader, payment.BuildSignatureHeader(testSecret, time.Now().Unix(), body))
		return h
	}

	t.Run("completed event decodes with correlation", func(t *testing.T) {
		body := []byte(`{
			"id": "evt_1",
			"type": "checkout.completed",
			"data": {
				"session_id": "cs_test_1",
				"payment_intent_id": "pi_1",
				"metadata": {"booking_id": "b1"}
			}
		}`)

		event, err := client.VerifyAndParseWebhook(sign(body), body)

		require.NoError(t, err)
		assert.Equal(t, "evt_1", event.ID)
		assert.Equal(t, payment.EventCheckoutCompleted, event.Kind)
		assert.Equal(t, "b1", event.BookingID)
		assert.Equal(t, "pi_1", event.PaymentIntentID)
	})

	t.Run("failed event carries the failure reason", func(t *testing.T) {
		body := []byte(`{
			"id": "evt_2",
			"type": "payment.failed",
			"data": {
				"payment_intent_id": "pi_2",
				"failure_reason": "card_declined",
				"metadata": {"booking_id": "b2"}
			}
		}`)

		event, err := client.VerifyAndParseWebhook(sign(body), body)

		require.NoError(t, err)
		assert.Equal(t, payment.EventPaymentFailed, event.Kind)
		assert.Equal(t, "b2", event.BookingID)
		assert.Equal(t, "card_declined", event.FailureReason)
	})

	t.Run("unknown event types come back as ignored", func(t *testing.T) {
		body := []byte(`{"id":"evt_3","type":"customer.created","data":{}}`)

		event, err := client.VerifyAndParseWebhook(sign(body), body)

		require.NoError(t, err)
		assert.Equal(t, payment.EventIgnored, event.Kind)
	})

	t.Run("missing metadata leaves booking id empty", func(t *testing.T) {
		body := []byte(`{"id":"evt_4","type":"checkout.completed","data":{"payment_intent_id":"pi_4"}}`)

		event, err := client.VerifyAndParseWebhook(sign(body), body)

		require.NoError(t, err)
		assert.Empty(t, event.BookingID)
	})

	t.Run("invalid signature rejects before decoding", func(t *testing.T) {
		body := []byte(`{"id":"evt_5","type":"checkout.completed","data":{}}`)
		h := http.Header{}
		h.Set(payment.SignatureHeader, "t=1,v1=deadbeef")

		_, err := client.VerifyAndParseWebhook(h, body)
		require.ErrorIs(t, err, payment.ErrSignatureInvalid)
	})

	t.Run("malformed payloads are rejected", func(t *testing.T) {
		for _, body := range [][]byte{
			[]byte(`not json`),
			[]byte(`{}`),
			[]byte(`{"id":"evt_6"}`),
			[]byte(`{"type":"checkout.completed"}`),
		} {
			_, err := client.VerifyAndParseWebhook(sign(body), body)
			assert.ErrorIs(t, err, payment.ErrMalformedEvent, string(body))
		}
	})
}
