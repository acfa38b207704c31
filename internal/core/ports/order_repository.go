// Package ports declares the contracts between the rental domain and the
// infrastructure that stores and publishes it.
package ports

import (
	"context"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
)

// OrderRepository stores order aggregates.
type OrderRepository interface {
	// Add stores a new order together with its items and deposit.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update commits aggregate only if the stored version still equals
	// expectedVersion. A lost race returns an errs.ConflictError; a missing
	// row returns an errs.ObjectNotFoundError.
	Update(ctx context.Context, aggregate *order.Order, expectedVersion int64) error

	// Get returns the order or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
