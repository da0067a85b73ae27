package booking

import (
	"errors"
	"time"

	"mathsandmelody-api/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrInvalidServiceType   = errors.New("invalid service type")
	ErrInvalidSchedule      = errors.New("invalid schedule")
	ErrNegativePrice        = errors.New("price cannot be negative")
	ErrInvalidStatus        = errors.New("invalid booking status")
	ErrNotPending           = errors.New("booking is not pending")
	ErrNotConfirmed         = errors.New("booking is not confirmed")
	ErrEmptyPaymentRef      = errors.New("payment reference is required")
	ErrAlreadyHasPaymentRef = errors.New("booking already has a payment reference")
)

// ServiceSpec is the slice of the service catalog a booking needs:
// the offering identity and its pricing.
type ServiceSpec struct {
	ID              uuid.UUID
	Type            ServiceType
	HourlyRateCents int64
}

type Services struct {
	Clock clock.Clock
}

// Booking is the central record of the lifecycle: one scheduled paid session
// between a customer and the business. Status starts at pending and is driven
// to confirmed/cancelled by payment webhook events, and to completed by an
// operational action.
type Booking struct {
	id          uuid.UUID
	userID      uuid.UUID
	serviceID   uuid.UUID
	serviceType ServiceType
	schedule    Schedule
	status      Status
	price       Money
	paymentRef  *string
	notes       Notes
	createdAt   time.Time
	updatedAt   time.Time
}

func NewBooking(
	services *Services,
	spec ServiceSpec,
	userID uuid.UUID,
	schedule Schedule,
	notes Notes,
) (*Booking, error) {
	if !spec.Type.IsValid() {
		return nil, ErrInvalidServiceType
	}
	if err := schedule.ValidateFutureAt(services.Clock.Now()); err != nil {
		return nil, ErrInvalidSchedule
	}

	cents := spec.HourlyRateCents * int64(schedule.DurationMinutes()) / 60
	price, err := NewMoney(cents)
	if err != nil {
		return nil, err
	}

	return &Booking{
		id:          uuid.New(),
		userID:      userID,
		serviceID:   spec.ID,
		serviceType: spec.Type,
		schedule:    schedule,
		status:      StatusPending,
		price:       price,
		notes:       notes,
	}, nil
}

// Confirm applies the successful-payment transition. Reapplying the same
// payment reference to an already confirmed booking is a no-op so webhook
// redelivery stays safe.
func (b *Booking) Confirm(paymentRef string, now time.Time) error {
	if paymentRef == "" {
		return ErrEmptyPaymentRef
	}
	if b.status == StatusConfirmed && b.paymentRef != nil && *b.paymentRef == paymentRef {
		return nil
	}
	if b.status != StatusPending {
		return ErrNotPending
	}
	b.status = StatusConfirmed
	b.paymentRef = &paymentRef
	b.updatedAt = now
	return nil
}

// Cancel applies the failed-payment transition. Cancelling twice is a no-op.
func (b *Booking) Cancel(now time.Time) error {
	if b.status == StatusCancelled {
		return nil
	}
	if b.status != StatusPending {
		return ErrNotPending
	}
	b.status = StatusCancelled
	b.updatedAt = now
	return nil
}

// Complete marks a paid session as held. Not payment-driven.
func (b *Booking) Complete(now time.Time) error {
	if b.status == StatusCompleted {
		return nil
	}
	if b.status != StatusConfirmed {
		return ErrNotConfirmed
	}
	b.status = StatusCompleted
	b.updatedAt = now
	return nil
}

func (b *Booking) ID() uuid.UUID            { return b.id }
func (b *Booking) UserID() uuid.UUID        { return b.userID }
func (b *Booking) ServiceID() uuid.UUID     { return b.serviceID }
func (b *Booking) ServiceType() ServiceType { return b.serviceType }
func (b *Booking) Schedule() Schedule       { return b.schedule }
func (b *Booking) Status() Status           { return b.status }
func (b *Booking) Price() Money             { return b.price }
func (b *Booking) PaymentRef() *string      { return b.paymentRef }
func (b *Booking) Notes() Notes             { return b.notes }
func (b *Booking) CreatedAt() time.Time     { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time     { return b.updatedAt }
