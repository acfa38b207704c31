package commands

import (
	"errors"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/pkg/errs"
	"rental/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrCollectDepositCommandIsNotConstructed = errors.New(
	"CollectDepositCommand must be created via NewCollectDepositCommand constructor",
)

// CollectDepositCommand records that the order's deposit was taken from the customer.
type CollectDepositCommand struct { //nolint:recvcheck //using for validation
	orderID         kernel.UUID
	amount          decimal.Decimal
	expectedVersion *int64

	guard guard.ConstructorGuard
}

func NewCollectDepositCommand(
	orderID kernel.UUID, amount decimal.Decimal, expectedVersion *int64,
) (CollectDepositCommand, error) {
	var versionErr error
	if expectedVersion != nil && *expectedVersion < 1 {
		versionErr = errs.NewValueIsOutOfRangeError("expectedVersion", *expectedVersion, 1, "unbounded")
	}
	if err := errors.Join(
		orderID.Validate(),
		kernel.ValidateNonNegativeAmount("amount", amount),
		versionErr,
	); err != nil {
		return CollectDepositCommand{}, err
	}

	cmd := CollectDepositCommand{
		orderID: orderID,
		amount:  amount,
		guard:   guard.NewConstructorGuard(),
	}
	if expectedVersion != nil {
		v := *expectedVersion
		cmd.expectedVersion = &v
	}
	return cmd, nil
}

func (c CollectDepositCommand) Validate() error {
	return c.guard.Validate(ErrCollectDepositCommandIsNotConstructed)
}

func (c CollectDepositCommand) OrderID() kernel.UUID    { return c.orderID }
func (c CollectDepositCommand) Amount() decimal.Decimal { return c.amount }
func (c CollectDepositCommand) ExpectedVersion() *int64 { return c.expectedVersion }
