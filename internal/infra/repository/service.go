package repository

import (
	"context"

	"mathsandmelody-api/internal/infra"
	"mathsandmelody-api/internal/infra/db"
	"mathsandmelody-api/internal/pkg/pgconv"
	"mathsandmelody-api/internal/usecase/commands"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type ServiceRepository struct {
	db db.DBTX
}

func NewServiceRepository(conn db.DBTX) *ServiceRepository {
	return &ServiceRepository{db: conn}
}

func (r *ServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*commands.ServiceSnapshot, error) {
	query, args, err := psql.
		Select("id, type, title, hourly_rate_cents, is_active").
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build service query", err)
	}

	var snap commands.ServiceSnapshot
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&snap.ID,
		&snap.Type,
		&snap.Title,
		&snap.HourlyRateCents,
		&snap.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("service not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find service", err)
	}
	return &snap, nil
}
