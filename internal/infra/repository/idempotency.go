package repository

import (
	"context"
	"time"

	"mathsandmelody-api/internal/infra"
	"mathsandmelody-api/internal/infra/db"
	"mathsandmelody-api/internal/pkg/pgconv"
	"mathsandmelody-api/internal/usecase/commands"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(conn db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: conn}
}

// TryInsert claims an idempotency key. An expired row is reclaimed in place,
// so a key whose earlier attempt died mid-flight (stuck in processing) works
// again once its TTL passes. A live duplicate surfaces as KindDuplicateKey,
// which the caller treats as "replay the stored result".
func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	query, args, err := psql.
		Insert("idempotency_keys").
		Columns("key", "user_id", "endpoint", "request_hash", "status", "expires_at").
		Values(key, userID, endpoint, requestHash, "processing", expiresAt).
		Suffix(`ON CONFLICT (key, user_id) DO UPDATE SET
			endpoint = EXCLUDED.endpoint,
			request_hash = EXCLUDED.request_hash,
			status = EXCLUDED.status,
			response_hash = NULL,
			result_booking_id = NULL,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()
		WHERE idempotency_keys.expires_at <= now()`).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build idempotency insert", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to claim idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key already claimed", nil, infra.KindDuplicateKey)
	}
	return nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, userID uuid.UUID) (*commands.IdempotencyRecord, error) {
	query, args, err := psql.
		Select("key, user_id, status, request_hash, result_booking_id, expires_at").
		From("idempotency_keys").
		Where(squirrel.Eq{"key": key, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build idempotency query", err)
	}

	var rec commands.IdempotencyRecord
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&rec.Key,
		&rec.UserID,
		&rec.Status,
		&rec.RequestHash,
		&rec.ResultBookingID,
		&rec.ExpiresAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find idempotency key", err)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, tx db.DBTX, key, userID uuid.UUID, responseBodyHash string, resultBookingID uuid.UUID) error {
	query, args, err := psql.
		Update("idempotency_keys").
		Set("status", "completed").
		Set("response_hash", responseBodyHash).
		Set("result_booking_id", resultBookingID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"key": key, "user_id": userID}).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build idempotency update", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	return nil
}
