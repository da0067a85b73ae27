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

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(conn db.DBTX) *UserReadStore {
	return &UserReadStore{db: conn}
}

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	query, args, err := psql.
		Select("id, email, role, display_name, is_active").
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to build user query", err)
	}

	var view queries.AuthorizedUserView
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&view.ID,
		&view.Email,
		&view.Role,
		&view.DisplayName,
		&view.IsActive,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}

	return &view, nil
}

// FindByEmail also returns the password hash so the login flow can verify
// credentials without a second query.
func (r *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	query, args, err := psql.
		Select("id, email, role, display_name, is_active, password_hash").
		From("users").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, "", infra.WrapRepoErr("failed to build user query", err)
	}

	var (
		view         queries.AuthorizedUserView
		passwordHash string
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&view.ID,
		&view.Email,
		&view.Role,
		&view.DisplayName,
		&view.IsActive,
		&passwordHash,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user by email", err)
	}

	return &view, passwordHash, nil
}
