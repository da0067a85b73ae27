package queries

import (
	"context"

	"mathsandmelody-api/internal/domain/booking"
	"mathsandmelody-api/internal/domain/user"
	"mathsandmelody-api/internal/infra"
	"mathsandmelody-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound     = errs.New("booking not found")
	ErrBookingAccessDenied = errs.New("booking access denied")
	ErrInvalidStatusFilter = errs.New("invalid status filter")
)

type BookingQueries interface {
	// GetByID enforces ownership: customers only see their own bookings,
	// admins see everything.
	GetByID(ctx context.Context, actor user.Identity, id uuid.UUID) (*BookingView, error)
	// GetByIDSystem bypasses the ownership check for internal callers
	// (idempotent replay, read-after-write).
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error)
	ListByStatus(ctx context.Context, status string) ([]*BookingListItem, error)
}

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error)
	FindByStatus(ctx context.Context, status string) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	readStore BookingReadStore
}

func NewBookingQueries(readStore BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{readStore: readStore}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor user.Identity, id uuid.UUID) (*BookingView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}

	if view.UserID != actor.UserID && actor.Role != user.RoleAdmin {
		return nil, ErrBookingAccessDenied
	}

	return view, nil
}

func (q *bookingQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*BookingView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*BookingListItem, error) {
	return q.readStore.FindByUserID(ctx, userID)
}

func (q *bookingQueriesImpl) ListByStatus(ctx context.Context, status string) ([]*BookingListItem, error) {
	if status != "" && !booking.Status(status).IsValid() {
		return nil, ErrInvalidStatusFilter
	}
	return q.readStore.FindByStatus(ctx, status)
}
