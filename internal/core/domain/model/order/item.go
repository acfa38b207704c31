package order

import (
	"errors"
	"fmt"
	"strings"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrItemIsNotConstructed is returned by Item.Validate for zero values.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// Item is one line of a rental order. DaysUsed, when set, overrides the
// order's chargeable-day count for this line only.
type Item struct {
	productID     string
	quantity      int
	unitPrice     decimal.Decimal
	daysUsed      *int
	isConstructed bool
}

// NewItem validates and builds an order line. quantity must be positive,
// unitPrice non-negative and daysUsed, when given, at least 1.
func NewItem(productID string, quantity int, unitPrice decimal.Decimal, daysUsed *int) (Item, error) {
	item := Item{isConstructed: true}

	if err := errors.Join(
		item.setProductID(productID),
		item.setQuantity(quantity),
		item.setUnitPrice(unitPrice),
		item.setDaysUsed(daysUsed),
	); err != nil {
		return Item{}, err
	}

	return item, nil
}

func (i Item) Validate() error {
	if !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

func (i Item) ProductID() string {
	return i.productID
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i Item) UnitPrice() decimal.Decimal {
	return i.unitPrice
}

// DaysUsed returns the per-line day override, or nil when the line bills the
// order's chargeable days.
func (i Item) DaysUsed() *int {
	if i.daysUsed == nil {
		return nil
	}
	d := *i.daysUsed
	return &d
}

// BillableDays is DaysUsed when set, else orderDays.
func (i Item) BillableDays(orderDays int) int {
	if i.daysUsed != nil {
		return *i.daysUsed
	}
	return orderDays
}

func (i *Item) setProductID(productID string) error {
	if strings.TrimSpace(productID) == "" {
		return errs.NewValueIsRequiredError("productId")
	}
	i.productID = productID
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewInvalidAmountError("quantity", quantity)
	}
	i.quantity = quantity
	return nil
}

func (i *Item) setUnitPrice(unitPrice decimal.Decimal) error {
	if err := kernel.ValidateNonNegativeAmount("unitPrice", unitPrice); err != nil {
		return err
	}
	i.unitPrice = unitPrice
	return nil
}

func (i *Item) setDaysUsed(daysUsed *int) error {
	if daysUsed == nil {
		return nil
	}
	if *daysUsed < 1 {
		return errs.NewValueIsOutOfRangeErrorWithCause("daysUsed", *daysUsed, 1, "unbounded",
			fmt.Errorf("a line must bill at least one day"))
	}
	d := *daysUsed
	i.daysUsed = &d
	return nil
}
