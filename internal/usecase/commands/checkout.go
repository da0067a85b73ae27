package commands

import (
	"context"

	"mathsandmelody-api/internal/domain/booking"
	"mathsandmelody-api/internal/domain/user"
	"mathsandmelody-api/internal/infra"
	"mathsandmelody-api/internal/infra/payment"
	"mathsandmelody-api/internal/pkg/config"
	"mathsandmelody-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingNotPayable   = errs.New("booking is not payable")
	ErrCheckoutForbidden   = errs.New("checkout is not allowed for this booking")
	ErrPaymentProvider     = errs.New("payment provider request failed")
	ErrCurrencyUnsupported = errs.New("unsupported currency")
)

type CreateSessionParams struct {
	BookingID uuid.UUID
	Currency  string
}

type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// CheckoutCommands starts hosted payment sessions. It never mutates
// booking state: confirmation arrives only through the webhook, so a
// customer abandoning the payment page leaves the booking pending and
// payable again.
type CheckoutCommands interface {
	CreateSession(ctx context.Context, actor user.Identity, params CreateSessionParams) (*CheckoutSession, error)
}

type checkoutCommandsImpl struct {
	bookings BookingRepository
	provider payment.Provider
	cfg      config.PaymentConfig
}

func NewCheckoutCommands(bookings BookingRepository, provider payment.Provider, cfg config.PaymentConfig) CheckoutCommands {
	return &checkoutCommandsImpl{bookings: bookings, provider: provider, cfg: cfg}
}

func (c *checkoutCommandsImpl) CreateSession(ctx context.Context, actor user.Identity, params CreateSessionParams) (*CheckoutSession, error) {
	snap, err := c.bookings.FindSnapshotByID(ctx, params.BookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrBookingNotFound)
		}
		return nil, errs.Mark(err, ErrBookingStore)
	}

	if snap.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrCheckoutForbidden
	}
	// Payable means pending AND carrying a positive amount: a zero-price
	// booking must never reach the provider as an empty checkout.
	if booking.Status(snap.Status) != booking.StatusPending || snap.PriceCents <= 0 {
		return nil, ErrBookingNotPayable
	}

	currency := params.Currency
	if currency == "" {
		currency = c.cfg.Currency
	}
	if currency != c.cfg.Currency {
		return nil, ErrCurrencyUnsupported
	}

	session, err := c.provider.CreateCheckoutSession(ctx, payment.CreateSessionRequest{
		BookingID:   snap.ID.String(),
		AmountCents: snap.PriceCents,
		Currency:    currency,
		SuccessURL:  c.cfg.SuccessURL,
		CancelURL:   c.cfg.CancelURL,
	})
	if err != nil {
		return nil, errs.Mark(err, ErrPaymentProvider)
	}

	return &CheckoutSession{SessionID: session.ID, RedirectURL: session.URL}, nil
}
