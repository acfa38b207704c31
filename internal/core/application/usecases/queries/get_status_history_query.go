package queries

import (
	"errors"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/pkg/errs"
	"rental/internal/pkg/guard"
)

const MaxHistoryLimit = 500

var ErrGetStatusHistoryQueryIsNotConstructed = errors.New(
	"GetStatusHistoryQuery must be created via NewGetStatusHistoryQuery constructor",
)

// GetStatusHistoryQuery lists the audit trail of one order, newest first.
// A zero limit means MaxHistoryLimit.
type GetStatusHistoryQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	limit   int
	guard   guard.ConstructorGuard
}

func NewGetStatusHistoryQuery(orderID kernel.UUID, limit int) (GetStatusHistoryQuery, error) {
	var limitErr error
	if limit < 0 || limit > MaxHistoryLimit {
		limitErr = errs.NewValueIsOutOfRangeError("limit", limit, 0, MaxHistoryLimit)
	}
	if err := errors.Join(orderID.Validate(), limitErr); err != nil {
		return GetStatusHistoryQuery{}, err
	}
	if limit == 0 {
		limit = MaxHistoryLimit
	}

	return GetStatusHistoryQuery{
		orderID: orderID,
		limit:   limit,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetStatusHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetStatusHistoryQueryIsNotConstructed)
}

func (q GetStatusHistoryQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetStatusHistoryQuery) Limit() int {
	return q.limit
}
