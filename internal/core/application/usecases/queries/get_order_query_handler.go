package queries

import (
	"context"

	"rental/internal/core/domain/model/order"
	"rental/internal/core/ports"
)

// GetOrderQueryHandler loads the full aggregate through the repository, so the
// caller gets items, deposit and allowed transitions in one read.
type GetOrderQueryHandler struct {
	repo ports.OrderRepository
}

func NewGetOrderQueryHandler(repo ports.OrderRepository) GetOrderQueryHandler {
	return GetOrderQueryHandler{repo: repo}
}

// Handle returns the order or an errs.ObjectNotFoundError.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.repo.Get(ctx, query.OrderID())
}
