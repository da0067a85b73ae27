package commands

import (
	"context"
	"time"

	"mathsandmelody-api/internal/domain/booking"
	"mathsandmelody-api/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxBeginner is satisfied by *pgxpool.Pool and lets commands open
// transactions without depending on the pool type directly.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Write-side snapshots prevent dependency on Read-side query types (CQRS separation)

type ServiceSnapshot struct {
	ID              uuid.UUID
	Type            string
	Title           string
	HourlyRateCents int64
	IsActive        bool
}

type BookingSnapshot struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Status      string
	PriceCents  int64
	PaymentRef  *string
	ScheduledAt time.Time
}

type IdempotencyRecord struct {
	Key             uuid.UUID
	UserID          uuid.UUID
	Status          string
	RequestHash     string
	ResultBookingID *uuid.UUID
	ExpiresAt       time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, tx db.DBTX, b *booking.Booking) (uuid.UUID, error)
	FindSnapshotByID(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
	// ConfirmPayment transitions pending→confirmed and records the payment
	// reference. The update matches only a pending row, so webhook redelivery
	// and out-of-order events affect zero rows instead of overwriting state.
	ConfirmPayment(ctx context.Context, tx db.DBTX, id uuid.UUID, paymentRef string) (int64, error)
	// CancelPayment transitions pending→cancelled under the same guard.
	CancelPayment(ctx context.Context, tx db.DBTX, id uuid.UUID) (int64, error)
	Complete(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceSnapshot, error)
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error
	Get(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, responseBodyHash string, resultBookingID uuid.UUID) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error
}
