package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mathsandmelody-api/internal/domain/booking"
	"mathsandmelody-api/internal/domain/user"
	"mathsandmelody-api/internal/infra"
	"mathsandmelody-api/internal/pkg/clock"
	"mathsandmelody-api/internal/pkg/errs"
	"mathsandmelody-api/internal/usecase/queries"

	"github.com/google/uuid"
)

var (
	ErrServiceUnavailable   = errs.New("service is not available for booking")
	ErrScheduleInPast       = errs.New("scheduled time must be in the future")
	ErrInvalidBookingInput  = errs.New("invalid booking input")
	ErrIdempotencyKeyReused = errs.New("idempotency key was already used with a different request")
	ErrRequestInProgress    = errs.New("request with this idempotency key is still processing")
	ErrBookingNotFound      = errs.New("booking not found")
	ErrBookingStore         = errs.New("booking store failure")
)

const (
	bookingEndpoint         = "POST /api/bookings"
	idempotencyKeyTTL       = 24 * time.Hour
	idempotencyInProgress   = "processing"
	idempotencyKeyCompleted = "completed"
)

type CreateBookingParams struct {
	ServiceID       uuid.UUID
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           *string
}

type BookingCommands interface {
	// Create registers a new booking. The idempotency key guarantees that
	// retried requests (same key, same payload) return the original booking
	// instead of creating a second one.
	Create(ctx context.Context, actor user.Identity, idempotencyKey uuid.UUID, params CreateBookingParams) (*queries.BookingView, error)
	// CompleteLesson marks a confirmed booking as completed. Admin only,
	// enforced at the handler layer via the role gate.
	CompleteLesson(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type bookingCommandsImpl struct {
	pool          TxBeginner
	bookings      BookingRepository
	services      ServiceRepository
	idempotency   IdempotencyRepository
	notifications NotificationRepository
	bookingRead   queries.BookingReadStore
	domain        *booking.Services
	clock         clock.Clock
}

func NewBookingCommands(
	pool TxBeginner,
	bookings BookingRepository,
	services ServiceRepository,
	idempotency IdempotencyRepository,
	notifications NotificationRepository,
	bookingRead queries.BookingReadStore,
	clk clock.Clock,
) BookingCommands {
	return &bookingCommandsImpl{
		pool:          pool,
		bookings:      bookings,
		services:      services,
		idempotency:   idempotency,
		notifications: notifications,
		bookingRead:   bookingRead,
		domain:        &booking.Services{Clock: clk},
		clock:         clk,
	}
}

func (c *bookingCommandsImpl) Create(
	ctx context.Context,
	actor user.Identity,
	idempotencyKey uuid.UUID,
	params CreateBookingParams,
) (*queries.BookingView, error) {
	requestHash, err := hashCreateRequest(actor.UserID, params)
	if err != nil {
		return nil, errs.Wrap(err, "failed to hash booking request")
	}

	if err := c.idempotency.TryInsert(ctx, idempotencyKey, actor.UserID, bookingEndpoint, requestHash, c.clock.Now().Add(idempotencyKeyTTL)); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return c.replayExisting(ctx, actor, idempotencyKey, requestHash)
		}
		return nil, errs.Mark(err, ErrBookingStore)
	}

	svc, err := c.services.FindByID(ctx, params.ServiceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, queries.ErrServiceNotFound)
		}
		return nil, errs.Mark(err, ErrBookingStore)
	}
	if !svc.IsActive {
		return nil, ErrServiceUnavailable
	}

	serviceType, err := booking.NewServiceType(svc.Type)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidBookingInput)
	}
	spec := booking.ServiceSpec{
		ID:              svc.ID,
		Type:            serviceType,
		HourlyRateCents: svc.HourlyRateCents,
	}

	schedule, err := booking.NewSchedule(params.ScheduledAt, params.DurationMinutes)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidBookingInput)
	}
	var notes booking.Notes
	if params.Notes != nil {
		notes = booking.NewNotes(*params.Notes)
	}

	b, err := booking.NewBooking(c.domain, spec, actor.UserID, schedule, notes)
	if err != nil {
		if errors.Is(err, booking.ErrInvalidSchedule) {
			return nil, errs.Mark(err, ErrScheduleInPast)
		}
		return nil, errs.Mark(err, ErrInvalidBookingInput)
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to begin transaction"), ErrBookingStore)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	bookingID, err := c.bookings.Create(ctx, tx, b)
	if err != nil {
		return nil, errs.Mark(err, ErrBookingStore)
	}
	if err := c.idempotency.UpdateStatusCompleted(ctx, tx, idempotencyKey, actor.UserID, requestHash, bookingID); err != nil {
		return nil, errs.Mark(err, ErrBookingStore)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to commit booking"), ErrBookingStore)
	}

	view, err := c.bookingRead.FindByID(ctx, bookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrBookingStore)
	}
	return view, nil
}

func (c *bookingCommandsImpl) replayExisting(
	ctx context.Context,
	actor user.Identity,
	idempotencyKey uuid.UUID,
	requestHash string,
) (*queries.BookingView, error) {
	rec, err := c.idempotency.Get(ctx, idempotencyKey, actor.UserID)
	if err != nil {
		return nil, errs.Mark(err, ErrBookingStore)
	}
	if rec.RequestHash != requestHash {
		return nil, ErrIdempotencyKeyReused
	}
	if rec.Status != idempotencyKeyCompleted || rec.ResultBookingID == nil {
		return nil, ErrRequestInProgress
	}
	view, err := c.bookingRead.FindByID(ctx, *rec.ResultBookingID)
	if err != nil {
		return nil, errs.Mark(err, ErrBookingStore)
	}
	return view, nil
}

func (c *bookingCommandsImpl) CompleteLesson(ctx context.Context, id uuid.UUID) error {
	snap, err := c.bookings.FindSnapshotByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrBookingNotFound)
		}
		return errs.Mark(err, ErrBookingStore)
	}
	if snap.Status != booking.StatusConfirmed.String() {
		return errs.Mark(errs.New(fmt.Sprintf("booking is %s, not confirmed", snap.Status)), booking.ErrNotConfirmed)
	}

	affected, err := c.bookings.Complete(ctx, id)
	if err != nil {
		return errs.Mark(err, ErrBookingStore)
	}
	if affected == 0 {
		return errs.Mark(errs.New("booking left confirmed state concurrently"), booking.ErrNotConfirmed)
	}
	return nil
}

func (c *bookingCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := c.bookings.FindSnapshotByID(ctx, id); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrBookingNotFound)
		}
		return errs.Mark(err, ErrBookingStore)
	}
	if err := c.bookings.Delete(ctx, id); err != nil {
		return errs.Mark(err, ErrBookingStore)
	}
	return nil
}

func hashCreateRequest(userID uuid.UUID, params CreateBookingParams) (string, error) {
	payload := struct {
		UserID          uuid.UUID `json:"user_id"`
		ServiceID       uuid.UUID `json:"service_id"`
		ScheduledAt     time.Time `json:"scheduled_at"`
		DurationMinutes int       `json:"duration_minutes"`
		Notes           *string   `json:"notes"`
	}{userID, params.ServiceID, params.ScheduledAt.UTC(), params.DurationMinutes, params.Notes}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
