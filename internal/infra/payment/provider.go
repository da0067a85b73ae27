package payment

import (
	"context"
	"net/http"

	"mathsandmelody-api/internal/pkg/errs"
)

var (
	ErrSignatureInvalid = errs.New("webhook signature verification failed")
	ErrMalformedEvent   = errs.New("malformed webhook event")
	ErrProviderFailure  = errs.New("payment provider request failed")
)

type CreateSessionRequest struct {
	BookingID   string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// Session is the opaque handle of a hosted checkout flow. URL is where the
// customer finishes payment.
type Session struct {
	ID  string
	URL string
}

type EventKind string

const (
	EventCheckoutCompleted EventKind = "checkout.completed"
	EventPaymentFailed     EventKind = "payment.failed"
	// EventIgnored covers every event type this system does not react to.
	// Ignored events are still acknowledged so the provider stops retrying.
	EventIgnored EventKind = "ignored"
)

// Event is the verified, decoded form of a webhook delivery. BookingID is the
// correlation metadata threaded through the session and its payment intent;
// it may be empty on malformed deliveries and must be checked by the caller.
type Event struct {
	ID              string
	Kind            EventKind
	BookingID       string
	PaymentIntentID string
	FailureReason   string
}

// Provider is the outbound payment boundary: create a hosted checkout session
// correlated to a booking, and verify+decode inbound webhook deliveries.
type Provider interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, req CreateSessionRequest) (Session, error)
	VerifyAndParseWebhook(header http.Header, body []byte) (Event, error)
}
