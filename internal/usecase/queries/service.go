package queries

import (
	"context"

	"mathsandmelody-api/internal/infra"
	"mathsandmelody-api/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrServiceNotFound = errs.New("service not found")

type ServiceQueries interface {
	List(ctx context.Context) ([]*ServiceView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceView, error)
}

type ServiceReadStore interface {
	FindActive(ctx context.Context) ([]*ServiceView, error)
	FindByID(ctx context.Context, id uuid.UUID) (*ServiceView, error)
}

type serviceQueriesImpl struct {
	readStore ServiceReadStore
}

func NewServiceQueries(readStore ServiceReadStore) ServiceQueries {
	return &serviceQueriesImpl{readStore: readStore}
}

func (q *serviceQueriesImpl) List(ctx context.Context) ([]*ServiceView, error) {
	return q.readStore.FindActive(ctx)
}

func (q *serviceQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ServiceView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return view, nil
}
