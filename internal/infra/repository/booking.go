package repository

import (
	"context"

	"mathsandmelody-api/internal/domain/booking"
	"mathsandmelody-api/internal/infra"
	"mathsandmelody-api/internal/infra/db"
	"mathsandmelody-api/internal/pkg/pgconv"
	"mathsandmelody-api/internal/usecase/commands"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(conn db.DBTX) *BookingRepository {
	return &BookingRepository{db: conn}
}

func (r *BookingRepository) Create(ctx context.Context, tx db.DBTX, b *booking.Booking) (uuid.UUID, error) {
	var notes *string
	if !b.Notes().IsEmpty() {
		v := b.Notes().String()
		notes = &v
	}

	query, args, err := psql.
		Insert("bookings").
		Columns("id", "user_id", "service_id", "scheduled_at", "duration_minutes", "price_cents", "status", "notes").
		Values(b.ID(), b.UserID(), b.ServiceID(), b.Schedule().StartAt(), b.Schedule().DurationMinutes(), b.Price().Cents(), b.Status().String(), notes).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to build booking insert", err)
	}

	var id uuid.UUID
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create booking", err)
	}
	return id, nil
}

func (r *BookingRepository) FindSnapshotByID(ctx context.Context, id uuid.UUID) (*commands.BookingSnapshot, error) {
	query, args, err := psql.
		Select("id, user_id, status, price_cents, payment_reference, scheduled_at").
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking snapshot query", err)
	}

	var snap commands.BookingSnapshot
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&snap.ID,
		&snap.UserID,
		&snap.Status,
		&snap.PriceCents,
		&snap.PaymentRef,
		&snap.ScheduledAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking snapshot", err)
	}
	return &snap, nil
}

func (r *BookingRepository) ConfirmPayment(ctx context.Context, tx db.DBTX, id uuid.UUID, paymentRef string) (int64, error) {
	query, args, err := psql.
		Update("bookings").
		Set("status", booking.StatusConfirmed.String()).
		Set("payment_reference", paymentRef).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": booking.StatusPending.String()}).
		ToSql()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build confirm update", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to confirm booking", err)
	}
	return tag.RowsAffected(), nil
}

func (r *BookingRepository) CancelPayment(ctx context.Context, tx db.DBTX, id uuid.UUID) (int64, error) {
	query, args, err := psql.
		Update("bookings").
		Set("status", booking.StatusCancelled.String()).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": booking.StatusPending.String()}).
		ToSql()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build cancel update", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to cancel booking", err)
	}
	return tag.RowsAffected(), nil
}

func (r *BookingRepository) Complete(ctx context.Context, id uuid.UUID) (int64, error) {
	query, args, err := psql.
		Update("bookings").
		Set("status", booking.StatusCompleted.String()).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": booking.StatusConfirmed.String()}).
		ToSql()
	if err != nil {
		return 0, infra.WrapRepoErr("failed to build complete update", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to complete booking", err)
	}
	return tag.RowsAffected(), nil
}

func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.
		Delete("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build booking delete", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to delete booking", err)
	}
	return nil
}
