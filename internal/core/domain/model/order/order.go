package order

import (
	"errors"
	"fmt"
	"slices"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrOrderIsNotConstructed is returned when an Order was not built by NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

const maxDiscountPct = 100

// Order is the rental order aggregate root.
//
// Invariants:
//   - rentalStartDate <= rentalEndDate
//   - at least one item, chargeableDays >= 1
//   - status belongs to the order's profile
//   - totalAmount only ever holds a pricing engine output; baseAmount is the
//     creation-time total every return adjustment starts from
//
// An Order is treated as an immutable snapshot: state changes return a new
// Order with version incremented, which the repository then commits with a
// compare-and-swap on the previous version.
type Order struct {
	id              kernel.UUID
	profile         Profile
	status          Status
	rentalStartDate kernel.Date
	rentalEndDate   kernel.Date
	items           []Item
	discountPct     decimal.Decimal
	taxRatePct      decimal.Decimal
	chargeableDays  int
	baseAmount      decimal.Decimal
	totalAmount     decimal.Decimal
	deposit         *Deposit
	pickedUpOn      kernel.Date
	returnedOn      kernel.Date
	version         int64
	isConstructed   bool
}

// Terms are the commercial inputs of an order fixed at creation.
type Terms struct {
	RentalStartDate kernel.Date
	RentalEndDate   kernel.Date
	Items           []Item
	DiscountPct     decimal.Decimal
	TaxRatePct      decimal.Decimal
	ChargeableDays  int
}

// NewOrder creates a pending order at version 1. baseAmount must be the
// pricing engine's total for terms; it also becomes the committed total.
//
// Example:
//
//	totals, err := pricing.ComputeOrderTotals(items, start, end, discount, tax, nil)
//	if err != nil {
//	    return err
//	}
//	o, err := order.NewOrder(kernel.NewUUID(), order.FullProfile(), terms, totals.TotalAmount, &deposit)
func NewOrder(id kernel.UUID, profile Profile, terms Terms, baseAmount decimal.Decimal, deposit *Deposit) (*Order, error) {
	o := &Order{
		profile:       profile,
		status:        Pending,
		version:       1,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setProfile(profile),
		o.setTerms(terms),
		o.setAmounts(baseAmount, baseAmount),
		o.setDeposit(deposit),
	); err != nil {
		return nil, err
	}
	if o.deposit != nil && o.deposit.status != DepositPending {
		return nil, errs.NewInvalidStateError(depositEntity, "attach new order to", o.deposit.status.String())
	}

	return o, nil
}

// Snapshot carries every persisted order field. RestoreOrder rebuilds an
// Order from it; zero PickedUpOn/ReturnedOn mean "not recorded".
type Snapshot struct {
	ID          kernel.UUID
	ProfileName string
	Status      Status
	Terms       Terms
	BaseAmount  decimal.Decimal
	TotalAmount decimal.Decimal
	Deposit     *Deposit
	PickedUpOn  kernel.Date
	ReturnedOn  kernel.Date
	Version     int64
}

// RestoreOrder rebuilds an order read from storage, re-checking every invariant.
func RestoreOrder(s Snapshot) (*Order, error) {
	profile, err := ProfileByName(s.ProfileName)
	if err != nil {
		return nil, err
	}

	o := &Order{
		profile:       profile,
		pickedUpOn:    s.PickedUpOn,
		returnedOn:    s.ReturnedOn,
		isConstructed: true,
	}

	if err = errors.Join(
		o.setID(s.ID),
		o.setStatus(s.Status),
		o.setTerms(s.Terms),
		o.setAmounts(s.BaseAmount, s.TotalAmount),
		o.setDeposit(s.Deposit),
		o.setVersion(s.Version),
	); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares orders by identity only.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID                { return o.id }
func (o *Order) Profile() Profile               { return o.profile }
func (o *Order) Status() Status                 { return o.status }
func (o *Order) RentalStartDate() kernel.Date   { return o.rentalStartDate }
func (o *Order) RentalEndDate() kernel.Date     { return o.rentalEndDate }
func (o *Order) Items() []Item                  { return slices.Clone(o.items) }
func (o *Order) DiscountPct() decimal.Decimal   { return o.discountPct }
func (o *Order) TaxRatePct() decimal.Decimal    { return o.taxRatePct }
func (o *Order) ChargeableDays() int            { return o.chargeableDays }
func (o *Order) BaseAmount() decimal.Decimal    { return o.baseAmount }
func (o *Order) TotalAmount() decimal.Decimal   { return o.totalAmount }
func (o *Order) PickedUpOn() kernel.Date        { return o.pickedUpOn }
func (o *Order) ReturnedOn() kernel.Date        { return o.returnedOn }
func (o *Order) Version() int64                 { return o.version }
func (o *Order) IsActive() bool                 { return o.profile.IsActive(o.status) }
func (o *Order) IsTerminal() bool               { return o.status.IsTerminal() }
func (o *Order) AllowedTransitions() []Status   { return o.profile.AllowedTransitions(o.status) }
func (o *Order) CanTransitionTo(s Status) error { return o.profile.ValidateTransition(o.status, s) }

// Deposit returns a copy of the deposit, or nil when the order has none.
func (o *Order) Deposit() *Deposit {
	if o.deposit == nil {
		return nil
	}
	d := *o.deposit
	return &d
}

// StatusChange describes the next state of an order. TotalAmount and Deposit
// are left nil when the change does not touch them.
type StatusChange struct {
	To          Status
	ActualDate  kernel.Date
	TotalAmount *decimal.Decimal
	Deposit     *Deposit
}

// WithStatusChange returns the next snapshot of the order. The receiver is not
// modified. Entering the active phase records the pickup day and completion
// records the return day, so both require ActualDate.
func (o *Order) WithStatusChange(change StatusChange) (*Order, error) {
	if err := o.CanTransitionTo(change.To); err != nil {
		return nil, err
	}
	dateBearing := o.profile.IsDateBearing(o.status, change.To)
	if dateBearing {
		if err := change.ActualDate.Validate("actualDate"); err != nil {
			return nil, err
		}
	}

	next := o.clone()
	next.status = change.To
	next.version++

	if dateBearing {
		if change.To == Completed {
			next.returnedOn = change.ActualDate
		} else {
			next.pickedUpOn = change.ActualDate
		}
	}
	if change.TotalAmount != nil {
		if err := kernel.ValidateNonNegativeAmount("totalAmount", *change.TotalAmount); err != nil {
			return nil, err
		}
		next.totalAmount = *change.TotalAmount
	}
	if change.Deposit != nil {
		if o.deposit == nil {
			return nil, errs.NewInvalidStateError(depositEntity, "replace missing", "absent")
		}
		if err := next.setDeposit(change.Deposit); err != nil {
			return nil, err
		}
	}

	return next, nil
}

// WithDeposit returns the next snapshot carrying d, for deposit operations
// that do not change the order status.
func (o *Order) WithDeposit(d Deposit) (*Order, error) {
	if o.deposit == nil {
		return nil, errs.NewInvalidStateError(depositEntity, "update", "absent")
	}
	next := o.clone()
	if err := next.setDeposit(&d); err != nil {
		return nil, err
	}
	next.version++
	return next, nil
}

func (o *Order) clone() *Order {
	c := *o
	c.items = slices.Clone(o.items)
	if o.deposit != nil {
		d := *o.deposit
		c.deposit = &d
	}
	return &c
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setProfile(profile Profile) error {
	if _, err := ProfileByName(profile.Name()); err != nil {
		return err
	}
	o.profile = profile
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if !o.profile.Has(status) {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is not a status of the %s profile", status, o.profile.Name()))
	}
	o.status = status
	return nil
}

func (o *Order) setTerms(t Terms) error {
	var errList []error

	startErr := t.RentalStartDate.Validate("rentalStartDate")
	endErr := t.RentalEndDate.Validate("rentalEndDate")
	errList = append(errList, startErr, endErr)
	if startErr == nil && endErr == nil && t.RentalStartDate.After(t.RentalEndDate) {
		errList = append(errList, errs.NewInvalidDateErrorWithCause("rentalStartDate", t.RentalStartDate.String(),
			fmt.Errorf("after rentalEndDate %s", t.RentalEndDate)))
	}

	if len(t.Items) == 0 {
		errList = append(errList, errs.NewValueIsRequiredError("items"))
	}
	for idx, item := range t.Items {
		if err := item.Validate(); err != nil {
			errList = append(errList, fmt.Errorf("items[%d]: %w", idx, err))
		}
	}

	errList = append(errList,
		kernel.ValidatePercentage("discountPct", t.DiscountPct, decimal.NewFromInt(maxDiscountPct)),
		kernel.ValidateNonNegativeAmount("taxRatePct", t.TaxRatePct),
	)
	if t.ChargeableDays < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("chargeableDays", t.ChargeableDays, 1, "unbounded"))
	}

	if err := errors.Join(errList...); err != nil {
		return err
	}

	o.rentalStartDate = t.RentalStartDate
	o.rentalEndDate = t.RentalEndDate
	o.items = slices.Clone(t.Items)
	o.discountPct = t.DiscountPct
	o.taxRatePct = t.TaxRatePct
	o.chargeableDays = t.ChargeableDays
	return nil
}

func (o *Order) setAmounts(base, total decimal.Decimal) error {
	if err := errors.Join(
		kernel.ValidateNonNegativeAmount("baseAmount", base),
		kernel.ValidateNonNegativeAmount("totalAmount", total),
	); err != nil {
		return err
	}
	o.baseAmount = base
	o.totalAmount = total
	return nil
}

func (o *Order) setDeposit(d *Deposit) error {
	if d == nil {
		o.deposit = nil
		return nil
	}
	if err := d.Validate(); err != nil {
		return err
	}
	c := *d
	o.deposit = &c
	return nil
}

func (o *Order) setVersion(v int64) error {
	if v < 1 {
		return errs.NewValueIsOutOfRangeError("version", v, 1, "unbounded")
	}
	o.version = v
	return nil
}
