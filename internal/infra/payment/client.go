package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mathsandmelody-api/internal/pkg/config"
	"mathsandmelody-api/internal/pkg/errs"
)

const providerName = "hostedcheckout"

// Client talks to the hosted-checkout provider's REST API and verifies its
// webhook deliveries.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	secretKey     string
	webhookSecret []byte
	maxSkew       time.Duration
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:       cfg.APIBaseURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: []byte(cfg.WebhookSecret),
		maxSkew:       cfg.SignatureMaxSkew,
	}
}

func (c *Client) Name() string {
	return providerName
}

type createSessionPayload struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata"`
	// The provider copies intent metadata onto the payment intent derived
	// from this session, so failed-payment events carry the correlation too.
	IntentMetadata map[string]string `json:"payment_intent_metadata"`
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type providerErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req CreateSessionRequest) (Session, error) {
	metadata := map[string]string{"booking_id": req.BookingID}
	payload := createSessionPayload{
		AmountCents:    req.AmountCents,
		Currency:       req.Currency,
		SuccessURL:     req.SuccessURL,
		CancelURL:      req.CancelURL,
		Metadata:       metadata,
		IntentMetadata: metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Session{}, errs.Mark(err, ErrProviderFailure)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return Session{}, errs.Mark(err, ErrProviderFailure)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Session{}, errs.Mark(err, ErrProviderFailure)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Session{}, errs.Mark(err, ErrProviderFailure)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var perr providerErrorResponse
		msg := "status " + resp.Status
		if json.Unmarshal(respBody, &perr) == nil && perr.Error.Message != "" {
			msg = perr.Error.Message
		}
		return Session{}, errs.Mark(fmt.Errorf("create checkout session: %s", msg), ErrProviderFailure)
	}

	var session sessionResponse
	if err := json.Unmarshal(respBody, &session); err != nil {
		return Session{}, errs.Mark(err, ErrProviderFailure)
	}
	if session.ID == "" {
		return Session{}, errs.Mark(errs.New("provider returned empty session id"), ErrProviderFailure)
	}

	return Session{ID: session.ID, URL: session.URL}, nil
}

type webhookPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SessionID       string            `json:"session_id"`
		PaymentIntentID string            `json:"payment_intent_id"`
		FailureReason   string            `json:"failure_reason"`
		Metadata        map[string]string `json:"metadata"`
	} `json:"data"`
}

// VerifyAndParseWebhook checks the signature header against the raw body and
// decodes the payload into the small set of event kinds this system reacts
// to. Event types outside that set come back as EventIgnored.
func (c *Client) VerifyAndParseWebhook(header http.Header, body []byte) (Event, error) {
	if err := VerifySignature(c.webhookSecret, header.Get(SignatureHeader), body, time.Now(), c.maxSkew); err != nil {
		return Event{}, err
	}
	return decodeEvent(body)
}

func decodeEvent(body []byte) (Event, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Event{}, errs.Mark(err, ErrMalformedEvent)
	}
	if payload.ID == "" || payload.Type == "" {
		return Event{}, ErrMalformedEvent
	}

	ev := Event{
		ID:              payload.ID,
		BookingID:       payload.Data.Metadata["booking_id"],
		PaymentIntentID: payload.Data.PaymentIntentID,
		FailureReason:   payload.Data.FailureReason,
	}

	switch payload.Type {
	case "checkout.completed":
		ev.Kind = EventCheckoutCompleted
	case "payment.failed":
		ev.Kind = EventPaymentFailed
	default:
		ev.Kind = EventIgnored
	}

	return ev, nil
}
