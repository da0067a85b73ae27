//go:build unit || e2e

package testutil

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// FakeTx stands in for a pgx.Tx in unit tests where the statements running
// inside the transaction are mocked out. Only Commit/Rollback are functional;
// any other call panics via the embedded nil interface.
type FakeTx struct {
	pgx.Tx
	Committed  bool
	RolledBack bool
	CommitErr  error
}

func NewFakeTx() *FakeTx {
	return &FakeTx{}
}

func (t *FakeTx) Commit(ctx context.Context) error {
	if t.CommitErr != nil {
		return t.CommitErr
	}
	t.Committed = true
	return nil
}

func (t *FakeTx) Rollback(ctx context.Context) error {
	// Rollback after Commit is the usual deferred pattern and must stay a no-op.
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}
