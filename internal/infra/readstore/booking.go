package readstore

import (
	"context"

	"mathsandmelody-api/internal/infra"
	"mathsandmelody-api/internal/infra/db"
	"mathsandmelody-api/internal/pkg/pgconv"
	"mathsandmelody-api/internal/usecase/queries"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(conn db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: conn}
}

const bookingViewColumns = "b.id, b.user_id, u.email, b.service_id, s.type, s.title, " +
	"b.scheduled_at, b.duration_minutes, b.price_cents, b.status, b.payment_reference, " +
	"b.notes, b.created_at, b.updated_at"

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	query, args, err := psql.
		Select(bookingViewColumns).
		From("bookings b").
		Join("users u ON u.id = b.user_id").
		Join("services s ON s.id = b.service_id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking query", err)
	}

	var (
		view       queries.BookingView
		paymentRef *string
		notes      *string
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&view.ID,
		&view.UserID,
		&view.UserEmail,
		&view.ServiceID,
		&view.ServiceType,
		&view.ServiceTitle,
		&view.ScheduledAt,
		&view.DurationMinutes,
		&view.PriceCents,
		&view.Status,
		&paymentRef,
		&notes,
		&view.CreatedAt,
		&view.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	view.PaymentReference = paymentRef
	view.Notes = notes

	return &view, nil
}

func (r *BookingReadStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queries.BookingListItem, error) {
	builder := psql.
		Select("b.id, b.service_id, s.type, s.title, b.scheduled_at, b.duration_minutes, b.price_cents, b.status, b.created_at").
		From("bookings b").
		Join("services s ON s.id = b.service_id").
		Where(squirrel.Eq{"b.user_id": userID}).
		OrderBy("b.scheduled_at DESC")
	return r.listItems(ctx, builder, "failed to list bookings by user")
}

func (r *BookingReadStore) FindByStatus(ctx context.Context, status string) ([]*queries.BookingListItem, error) {
	builder := psql.
		Select("b.id, b.service_id, s.type, s.title, b.scheduled_at, b.duration_minutes, b.price_cents, b.status, b.created_at").
		From("bookings b").
		Join("services s ON s.id = b.service_id").
		Where(squirrel.Eq{"b.status": status}).
		OrderBy("b.scheduled_at ASC")
	return r.listItems(ctx, builder, "failed to list bookings by status")
}

func (r *BookingReadStore) listItems(ctx context.Context, builder squirrel.SelectBuilder, errMsg string) ([]*queries.BookingListItem, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build booking list query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(errMsg, err)
	}
	defer rows.Close()

	items := []*queries.BookingListItem{}
	for rows.Next() {
		var item queries.BookingListItem
		if err := rows.Scan(
			&item.ID,
			&item.ServiceID,
			&item.ServiceType,
			&item.ServiceTitle,
			&item.ScheduledAt,
			&item.DurationMinutes,
			&item.PriceCents,
			&item.Status,
			&item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr(errMsg, err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(errMsg, err)
	}

	return items, nil
}
