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

type ServiceReadStore struct {
	db db.DBTX
}

func NewServiceReadStore(conn db.DBTX) *ServiceReadStore {
	return &ServiceReadStore{db: conn}
}

const serviceColumns = "id, type, title, description, hourly_rate_cents, is_active, created_at, updated_at"

func (r *ServiceReadStore) FindActive(ctx context.Context) ([]*queries.ServiceView, error) {
	query, args, err := psql.
		Select(serviceColumns).
		From("services").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("type ASC, title ASC").
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build service list query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list active services", err)
	}
	defer rows.Close()

	views := []*queries.ServiceView{}
	for rows.Next() {
		view, err := scanServiceView(rows.Scan)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan service row", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to list active services", err)
	}

	return views, nil
}

func (r *ServiceReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ServiceView, error) {
	query, args, err := psql.
		Select(serviceColumns).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build service query", err)
	}

	view, err := scanServiceView(r.db.QueryRow(ctx, query, args...).Scan)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("service not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find service by ID", err)
	}

	return view, nil
}

func scanServiceView(scan func(dest ...any) error) (*queries.ServiceView, error) {
	var (
		view        queries.ServiceView
		description *string
	)
	if err := scan(
		&view.ID,
		&view.Type,
		&view.Title,
		&description,
		&view.HourlyRateCents,
		&view.IsActive,
		&view.CreatedAt,
		&view.UpdatedAt,
	); err != nil {
		return nil, err
	}
	view.Description = description
	return &view, nil
}
