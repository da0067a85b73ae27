package repository

import (
	"context"
	"time"

	"mathsandmelody-api/internal/infra"
	"mathsandmelody-api/internal/infra/db"

	"github.com/google/uuid"
)

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(conn db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: conn}
}

// CreateJob enqueues an outbound notification. Jobs are written in the same
// transaction as the state change that triggered them, so a delivery worker
// never sees a job for a transition that rolled back.
func (r *NotificationRepository) CreateJob(ctx context.Context, tx db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	query, args, err := psql.
		Insert("notification_jobs").
		Columns("id", "kind", "topic", "payload", "status", "run_at").
		Values(uuid.New(), kind, topic, payload, "queued", runAt).
		ToSql()
	if err != nil {
		return infra.WrapRepoErr("failed to build notification insert", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return infra.WrapRepoErr("failed to enqueue notification job", err)
	}
	return nil
}
