package queries

import (
	"errors"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/pkg/errs"
	"rental/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOverdueOrdersQueryIsNotConstructed = errors.New(
	"GetOverdueOrdersQuery must be created via NewGetOverdueOrdersQuery constructor",
)

// GetOverdueOrdersQuery finds orders still in an active status whose return
// allowance (rental end plus grace days) ended before today.
//
// Example:
//
//	query, err := NewGetOverdueOrdersQuery(kernel.NewDate(time.Now()), 1)
//	if err != nil {
//	    return err
//	}
//	overdue, err := handler.Handle(ctx, query)
type GetOverdueOrdersQuery struct { //nolint:recvcheck //using for validation
	today     kernel.Date
	graceDays int
	guard     guard.ConstructorGuard
}

func NewGetOverdueOrdersQuery(today kernel.Date, graceDays int) (GetOverdueOrdersQuery, error) {
	var graceErr error
	if graceDays < 0 {
		graceErr = errs.NewValueIsOutOfRangeError("graceDays", graceDays, 0, "unbounded")
	}
	if err := errors.Join(today.Validate("today"), graceErr); err != nil {
		return GetOverdueOrdersQuery{}, err
	}

	return GetOverdueOrdersQuery{
		today:     today,
		graceDays: graceDays,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q GetOverdueOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetOverdueOrdersQueryIsNotConstructed)
}

func (q GetOverdueOrdersQuery) Today() kernel.Date {
	return q.today
}

func (q GetOverdueOrdersQuery) GraceDays() int {
	return q.graceDays
}

// Cutoff is the latest rental end date that is still on time today.
func (q GetOverdueOrdersQuery) Cutoff() kernel.Date {
	return q.today.AddDays(-q.graceDays)
}

// GetOverdueOrdersQueryResponse is one overdue order.
type GetOverdueOrdersQueryResponse struct {
	ID                  kernel.UUID
	Profile             string
	Status              string
	RentalEndDate       kernel.Date
	ReturnAllowanceDate kernel.Date
	DaysOverdue         int
	TotalAmount         decimal.Decimal
}
