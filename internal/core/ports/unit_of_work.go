package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is one database transaction. Repositories it hands out use that
// transaction once Begin has been called.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error

	// Rollback is a no-op after Commit, so it can always be deferred.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	StatusChangeRepository() StatusChangeRepository
}
