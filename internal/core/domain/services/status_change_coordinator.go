package services

import (
	"errors"
	"time"

	"rental/internal/core/domain/model/audit"
	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// DepositDeduction is what the operator withholds from a collected deposit
// when the order completes.
type DepositDeduction struct {
	Amount decimal.Decimal
	Reason string
	Notes  string
}

// StatusChangeRequest asks to move an order to To. ActualDate is required for
// date-bearing transitions; At stamps the audit record and any deposit change.
type StatusChangeRequest struct {
	To                     order.Status
	ActualDate             kernel.Date
	ChargeableDaysOverride *int
	Deduction              *DepositDeduction
	At                     time.Time
}

// StatusChangeResult is everything a status change produces. Usage, Pricing
// and Deposit are nil when the change did not involve them.
type StatusChangeResult struct {
	Order          *order.Order
	PreviousStatus order.Status
	Usage          *Usage
	Pricing        *Adjustment
	Deposit        *order.Deposit
	Audit          audit.StatusChange
}

// StatusChangeCoordinator plans a status change: transition check, usage,
// pricing and deposit settlement. It never persists anything and never
// modifies the order it is given; the caller commits the returned snapshot.
type StatusChangeCoordinator struct {
	usage   UsageCalculator
	pricing PricingEngine
}

func NewStatusChangeCoordinator(usage UsageCalculator, pricing PricingEngine) StatusChangeCoordinator {
	return StatusChangeCoordinator{usage: usage, pricing: pricing}
}

// Plan computes the next order snapshot.
//
// Completion runs the usage calculator over the planned window and prices the
// return from the order's base amount, never from a previously adjusted total.
// A chargeable-days override replaces the calculated actual days; the
// early/late classification still comes from the dates.
func (c StatusChangeCoordinator) Plan(o *order.Order, req StatusChangeRequest) (StatusChangeResult, error) {
	if err := o.Validate(); err != nil {
		return StatusChangeResult{}, err
	}
	if err := o.CanTransitionTo(req.To); err != nil {
		return StatusChangeResult{}, err
	}
	if err := validateRequest(o, req); err != nil {
		return StatusChangeResult{}, err
	}

	result := StatusChangeResult{PreviousStatus: o.Status()}
	change := order.StatusChange{To: req.To}
	if o.Profile().IsDateBearing(o.Status(), req.To) {
		change.ActualDate = req.ActualDate
	}

	var calculation *audit.Calculation
	if req.To == order.Completed {
		usage, adjustment, err := c.priceReturn(o, req)
		if err != nil {
			return StatusChangeResult{}, err
		}
		result.Usage = &usage
		result.Pricing = &adjustment
		change.TotalAmount = &adjustment.AdjustedAmount
		calculation = newCalculation(o.BaseAmount(), usage, adjustment)

		settled, err := c.settleDeposit(o, req)
		if err != nil {
			return StatusChangeResult{}, err
		}
		if settled != nil {
			result.Deposit = settled
			change.Deposit = settled
		}
	}

	next, err := o.WithStatusChange(change)
	if err != nil {
		return StatusChangeResult{}, err
	}
	result.Order = next

	record := audit.StatusChange{
		ID:                     kernel.NewUUID(),
		OrderID:                next.ID(),
		FromStatus:             o.Status(),
		ToStatus:               next.Status(),
		ActualDate:             change.ActualDate,
		ChargeableDaysOverride: req.ChargeableDaysOverride,
		Calculation:            calculation,
		TotalAmount:            next.TotalAmount(),
		Version:                next.Version(),
		ChangedAt:              req.At.UTC(),
	}
	if d := next.Deposit(); d != nil {
		snapshot := d.Snapshot()
		record.Deposit = &snapshot
	}
	result.Audit = record

	return result, nil
}

func (c StatusChangeCoordinator) priceReturn(o *order.Order, req StatusChangeRequest) (Usage, Adjustment, error) {
	usage, err := c.usage.Calculate(o.RentalStartDate(), o.RentalEndDate(), req.ActualDate)
	if err != nil {
		return Usage{}, Adjustment{}, err
	}
	if req.ChargeableDaysOverride != nil {
		usage.ActualDays = *req.ChargeableDaysOverride
	}

	adjustment, err := c.pricing.Adjust(AdjustmentInputFromUsage(o.BaseAmount(), usage))
	if err != nil {
		return Usage{}, Adjustment{}, err
	}
	return usage, adjustment, nil
}

func (c StatusChangeCoordinator) settleDeposit(o *order.Order, req StatusChangeRequest) (*order.Deposit, error) {
	deposit := o.Deposit()
	if deposit == nil || deposit.Status() != order.DepositCollected {
		if req.Deduction != nil {
			state := "absent"
			if deposit != nil {
				state = deposit.Status().String()
			}
			return nil, errs.NewInvalidStateError("deposit", "settle", state)
		}
		return nil, nil
	}

	deduction := DepositDeduction{Amount: decimal.Zero}
	if req.Deduction != nil {
		deduction = *req.Deduction
	}
	settled, err := order.NewDepositLedger(o.Profile()).
		Settle(*deposit, order.Completed, deduction.Amount, deduction.Reason, deduction.Notes, req.At)
	if err != nil {
		return nil, err
	}
	return &settled, nil
}

func validateRequest(o *order.Order, req StatusChangeRequest) error {
	var errList []error

	if req.At.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("at"))
	}
	if o.Profile().IsDateBearing(o.Status(), req.To) {
		errList = append(errList, req.ActualDate.Validate("actualDate"))
	}
	if req.ChargeableDaysOverride != nil {
		if req.To != order.Completed {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause("chargeableDaysOverride",
				errors.New("only applies when completing an order")))
		} else if *req.ChargeableDaysOverride < 1 {
			errList = append(errList,
				errs.NewValueIsOutOfRangeError("chargeableDaysOverride", *req.ChargeableDaysOverride, 1, "unbounded"))
		}
	}
	if req.Deduction != nil && req.To != order.Completed {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("deduction",
			errors.New("only applies when completing an order")))
	}

	return errors.Join(errList...)
}

func newCalculation(original decimal.Decimal, u Usage, a Adjustment) *audit.Calculation {
	return &audit.Calculation{
		OriginalAmount:      original,
		PlannedDays:         u.PlannedDays,
		ActualDays:          u.ActualDays,
		ExtraDays:           u.ExtraDays,
		ReturnAllowanceDate: u.ReturnAllowanceDate,
		IsEarlyReturn:       u.IsEarlyReturn,
		IsLateReturn:        u.IsLateReturn,
		IsWithinGrace:       u.IsWithinGrace,
		DailyRate:           a.DailyRate,
		AdjustedAmount:      a.AdjustedAmount,
		RefundAmount:        a.RefundAmount,
		PenaltyAmount:       a.PenaltyAmount,
		AdjustmentReason:    a.Reason,
	}
}
