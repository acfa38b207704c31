package commands

import (
	"errors"
	"fmt"
	"slices"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/pkg/errs"
	"rental/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand registers a new rental order. The flat tax rate is not
// part of the command; it comes from configuration.
//
// Example:
//
//	item, _ := order.NewItem("tent-6x6", 2, decimal.NewFromInt(1000), nil)
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), "", start, end,
//	    []order.Item{item}, decimal.NewFromInt(10), nil, &depositAmount)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID                kernel.UUID
	profileName            string
	rentalStartDate        kernel.Date
	rentalEndDate          kernel.Date
	items                  []order.Item
	discountPct            decimal.Decimal
	chargeableDaysOverride *int
	depositAmount          *decimal.Decimal

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the caller's input. An empty profileName
// selects the deployment default.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	profileName string,
	rentalStartDate, rentalEndDate kernel.Date,
	items []order.Item,
	discountPct decimal.Decimal,
	chargeableDaysOverride *int,
	depositAmount *decimal.Decimal,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setProfileName(profileName),
		cmd.setWindow(rentalStartDate, rentalEndDate),
		cmd.setItems(items),
		cmd.setDiscountPct(discountPct),
		cmd.setChargeableDaysOverride(chargeableDaysOverride),
		cmd.setDepositAmount(depositAmount),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID            { return c.orderID }
func (c CreateOrderCommand) ProfileName() string             { return c.profileName }
func (c CreateOrderCommand) RentalStartDate() kernel.Date    { return c.rentalStartDate }
func (c CreateOrderCommand) RentalEndDate() kernel.Date      { return c.rentalEndDate }
func (c CreateOrderCommand) Items() []order.Item             { return slices.Clone(c.items) }
func (c CreateOrderCommand) DiscountPct() decimal.Decimal    { return c.discountPct }
func (c CreateOrderCommand) ChargeableDaysOverride() *int    { return c.chargeableDaysOverride }
func (c CreateOrderCommand) DepositAmount() *decimal.Decimal { return c.depositAmount }

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setProfileName(name string) error {
	if name == "" {
		return nil
	}
	if _, err := order.ProfileByName(name); err != nil {
		return err
	}
	c.profileName = name
	return nil
}

func (c *CreateOrderCommand) setWindow(start, end kernel.Date) error {
	if err := errors.Join(start.Validate("rentalStartDate"), end.Validate("rentalEndDate")); err != nil {
		return err
	}
	if start.After(end) {
		return errs.NewInvalidDateErrorWithCause("rentalStartDate", start.String(),
			fmt.Errorf("after rentalEndDate %s", end))
	}
	c.rentalStartDate = start
	c.rentalEndDate = end
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for idx, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("items[%d]: %w", idx, err)
		}
	}
	c.items = slices.Clone(items)
	return nil
}

func (c *CreateOrderCommand) setDiscountPct(pct decimal.Decimal) error {
	if err := kernel.ValidatePercentage("discountPct", pct, decimal.NewFromInt(100)); err != nil {
		return err
	}
	c.discountPct = pct
	return nil
}

func (c *CreateOrderCommand) setChargeableDaysOverride(days *int) error {
	if days == nil {
		return nil
	}
	if *days < 1 {
		return errs.NewValueIsOutOfRangeError("chargeableDays", *days, 1, "unbounded")
	}
	d := *days
	c.chargeableDaysOverride = &d
	return nil
}

func (c *CreateOrderCommand) setDepositAmount(amount *decimal.Decimal) error {
	if amount == nil {
		return nil
	}
	if err := kernel.ValidateNonNegativeAmount("depositAmount", *amount); err != nil {
		return err
	}
	a := *amount
	c.depositAmount = &a
	return nil
}
