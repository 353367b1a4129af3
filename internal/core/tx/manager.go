// Package tx defines the transaction contract domain services depend
// on. The Postgres implementation lives in infrastructure/storage.
package tx

import (
	"context"
)

// Manager runs a function inside a database transaction: commit on nil,
// rollback on error. A nested call reuses the transaction already
// carried by the context instead of opening a second one.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager additionally offers read-only transactions, used for
// multi-statement reads that need a consistent snapshot.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
