// Package commands contains the operations that change rental orders.
// Every handler validates its command, runs inside one unit of work and
// commits or rolls back as a whole.
package commands

import (
	"context"

	"rental/internal/core/ports"
)

type (
	// TxManager handles the database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides the order repository bound to the transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// StatusChangeRepoFactory provides the audit repository bound to the transaction.
	StatusChangeRepoFactory interface {
		StatusChangeRepository() ports.StatusChangeRepository
	}

	// OrderUoW is used by commands that only write orders.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// StatusChangeUoW writes an order and its audit record atomically.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   err = uow.OrderRepository().Update(ctx, next, current.Version())
	//   err = uow.StatusChangeRepository().Add(ctx, record)
	//
	//   err = uow.Commit(ctx)
	StatusChangeUoW interface {
		TxManager
		OrderRepoFactory
		StatusChangeRepoFactory
	}

	StatusChangeUoWFactory interface {
		Create() StatusChangeUoW
	}
)
