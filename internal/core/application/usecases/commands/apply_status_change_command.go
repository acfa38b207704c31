package commands

import (
	"errors"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/core/domain/services"
	"rental/internal/pkg/errs"
	"rental/internal/pkg/guard"
)

var ErrApplyStatusChangeCommandIsNotConstructed = errors.New(
	"ApplyStatusChangeCommand must be created via NewApplyStatusChangeCommand constructor",
)

// ApplyStatusChangeCommand moves an order to a new status.
//
// ExpectedVersion, when set, is the version the caller last saw; the change is
// refused with a conflict if the order moved on since. Without it the version
// read inside the transaction is used for the compare-and-swap.
type ApplyStatusChangeCommand struct { //nolint:recvcheck //using for validation
	orderID                kernel.UUID
	to                     order.Status
	actualDate             kernel.Date
	chargeableDaysOverride *int
	deduction              *services.DepositDeduction
	expectedVersion        *int64

	guard guard.ConstructorGuard
}

func NewApplyStatusChangeCommand(
	orderID kernel.UUID,
	to order.Status,
	actualDate kernel.Date,
	chargeableDaysOverride *int,
	deduction *services.DepositDeduction,
	expectedVersion *int64,
) (ApplyStatusChangeCommand, error) {
	var versionErr error
	if expectedVersion != nil && *expectedVersion < 1 {
		versionErr = errs.NewValueIsOutOfRangeError("expectedVersion", *expectedVersion, 1, "unbounded")
	}
	if err := errors.Join(orderID.Validate(), to.Validate(), versionErr); err != nil {
		return ApplyStatusChangeCommand{}, err
	}

	cmd := ApplyStatusChangeCommand{
		orderID:    orderID,
		to:         to,
		actualDate: actualDate,
		guard:      guard.NewConstructorGuard(),
	}
	if chargeableDaysOverride != nil {
		d := *chargeableDaysOverride
		cmd.chargeableDaysOverride = &d
	}
	if deduction != nil {
		d := *deduction
		cmd.deduction = &d
	}
	if expectedVersion != nil {
		v := *expectedVersion
		cmd.expectedVersion = &v
	}
	return cmd, nil
}

func (c ApplyStatusChangeCommand) Validate() error {
	return c.guard.Validate(ErrApplyStatusChangeCommandIsNotConstructed)
}

func (c ApplyStatusChangeCommand) OrderID() kernel.UUID                  { return c.orderID }
func (c ApplyStatusChangeCommand) To() order.Status                      { return c.to }
func (c ApplyStatusChangeCommand) ActualDate() kernel.Date               { return c.actualDate }
func (c ApplyStatusChangeCommand) ChargeableDaysOverride() *int          { return c.chargeableDaysOverride }
func (c ApplyStatusChangeCommand) Deduction() *services.DepositDeduction { return c.deduction }
func (c ApplyStatusChangeCommand) ExpectedVersion() *int64               { return c.expectedVersion }
