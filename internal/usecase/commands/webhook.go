package commands

import (
	"context"
	"encoding/json"
	"time"

	"mathsandmelody-api/internal/infra"
	"mathsandmelody-api/internal/infra/db"
	"mathsandmelody-api/internal/infra/payment"
	"mathsandmelody-api/internal/pkg/clock"
	"mathsandmelody-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	// ErrMissingCorrelation means a completed-checkout event carried no usable
	// booking reference. Retrying the delivery cannot fix that, so the caller
	// should reject it permanently rather than let the provider retry.
	ErrMissingCorrelation = errs.New("webhook event has no booking correlation")
	ErrUnknownBooking     = errs.New("webhook event references an unknown booking")
	ErrWebhookStore       = errs.New("webhook store failure")
)

// WebhookOutcome reports what a delivery did, mostly for logging.
type WebhookOutcome struct {
	EventID   string
	Kind      payment.EventKind
	BookingID uuid.UUID
	// Applied is false when the event was ignored or the transition had
	// already happened (redelivery, out-of-order arrival).
	Applied bool
}

type WebhookCommands interface {
	// ProcessEvent applies one verified payment event to the booking it
	// correlates with. Transitions are guarded conditional updates, so the
	// same delivery can be processed any number of times: the first one
	// mutates, the rest are acknowledged no-ops.
	ProcessEvent(ctx context.Context, event payment.Event) (*WebhookOutcome, error)
}

type webhookCommandsImpl struct {
	pool          TxBeginner
	bookings      BookingRepository
	notifications NotificationRepository
	clock         clock.Clock
}

func NewWebhookCommands(pool TxBeginner, bookings BookingRepository, notifications NotificationRepository, clk clock.Clock) WebhookCommands {
	return &webhookCommandsImpl{pool: pool, bookings: bookings, notifications: notifications, clock: clk}
}

func (c *webhookCommandsImpl) ProcessEvent(ctx context.Context, event payment.Event) (*WebhookOutcome, error) {
	outcome := &WebhookOutcome{EventID: event.ID, Kind: event.Kind}

	switch event.Kind {
	case payment.EventCheckoutCompleted:
		return c.applyCompleted(ctx, event, outcome)
	case payment.EventPaymentFailed:
		return c.applyFailed(ctx, event, outcome)
	default:
		return outcome, nil
	}
}

func (c *webhookCommandsImpl) applyCompleted(ctx context.Context, event payment.Event, outcome *WebhookOutcome) (*WebhookOutcome, error) {
	bookingID, err := uuid.Parse(event.BookingID)
	if err != nil {
		return nil, errs.Mark(errs.New("completed event without booking metadata"), ErrMissingCorrelation)
	}
	outcome.BookingID = bookingID

	if _, err := c.bookings.FindSnapshotByID(ctx, bookingID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrUnknownBooking)
		}
		return nil, errs.Mark(err, ErrWebhookStore)
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to begin transaction"), ErrWebhookStore)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	affected, err := c.bookings.ConfirmPayment(ctx, tx, bookingID, event.PaymentIntentID)
	if err != nil {
		return nil, errs.Mark(err, ErrWebhookStore)
	}
	if affected > 0 {
		if err := c.enqueueNotification(ctx, tx, "booking.confirmed", bookingID, event); err != nil {
			return nil, errs.Mark(err, ErrWebhookStore)
		}
		outcome.Applied = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to commit webhook transition"), ErrWebhookStore)
	}
	return outcome, nil
}

func (c *webhookCommandsImpl) applyFailed(ctx context.Context, event payment.Event, outcome *WebhookOutcome) (*WebhookOutcome, error) {
	// Failure events without correlation are acknowledged: there is nothing
	// to cancel and the provider gains nothing from retrying.
	bookingID, err := uuid.Parse(event.BookingID)
	if err != nil {
		return outcome, nil
	}
	outcome.BookingID = bookingID

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to begin transaction"), ErrWebhookStore)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	affected, err := c.bookings.CancelPayment(ctx, tx, bookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrWebhookStore)
	}
	if affected > 0 {
		if err := c.enqueueNotification(ctx, tx, "booking.cancelled", bookingID, event); err != nil {
			return nil, errs.Mark(err, ErrWebhookStore)
		}
		outcome.Applied = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to commit webhook transition"), ErrWebhookStore)
	}
	return outcome, nil
}

func (c *webhookCommandsImpl) enqueueNotification(ctx context.Context, tx db.DBTX, kind string, bookingID uuid.UUID, event payment.Event) error {
	payload, err := json.Marshal(map[string]string{
		"booking_id":        bookingID.String(),
		"event_id":          event.ID,
		"payment_intent_id": event.PaymentIntentID,
		"failure_reason":    event.FailureReason,
	})
	if err != nil {
		return errs.Wrap(err, "failed to encode notification payload")
	}
	return c.notifications.CreateJob(ctx, tx, kind, "email", payload, c.clock.Now().Add(time.Minute))
}
