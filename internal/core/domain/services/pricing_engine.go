package services

import (
	"errors"
	"fmt"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const ReasonOnTime = "On-time return (within grace period)"

var (
	hundred = decimal.NewFromInt(100)

	// DefaultMinChargeRatio is the share of the original amount an early return always pays.
	DefaultMinChargeRatio = decimal.RequireFromString("0.5")
	// DefaultPenaltyMultiplier scales the daily rate for each late day.
	DefaultPenaltyMultiplier = decimal.RequireFromString("1.5")
)

// PricingPolicy holds the tunable constants of return adjustments.
type PricingPolicy struct {
	MinChargeRatio    decimal.Decimal
	PenaltyMultiplier decimal.Decimal
}

func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		MinChargeRatio:    DefaultMinChargeRatio,
		PenaltyMultiplier: DefaultPenaltyMultiplier,
	}
}

// Validate requires MinChargeRatio in [0, 1] and a non-negative PenaltyMultiplier.
func (p PricingPolicy) Validate() error {
	var ratioErr error
	if p.MinChargeRatio.IsNegative() || p.MinChargeRatio.GreaterThan(decimal.NewFromInt(1)) {
		ratioErr = errs.NewValueIsOutOfRangeError("minChargeRatio", p.MinChargeRatio.String(), 0, 1)
	}
	return errors.Join(ratioErr, kernel.ValidateNonNegativeAmount("penaltyMultiplier", p.PenaltyMultiplier))
}

// AdjustmentInput is a usage classification plus the amount it applies to.
type AdjustmentInput struct {
	OriginalAmount decimal.Decimal
	PlannedDays    int
	ActualDays     int
	IsEarlyReturn  bool
	IsLateReturn   bool
	ExtraDays      int
}

// AdjustmentInputFromUsage pairs a usage result with the amount to adjust.
func AdjustmentInputFromUsage(original decimal.Decimal, u Usage) AdjustmentInput {
	return AdjustmentInput{
		OriginalAmount: original,
		PlannedDays:    u.PlannedDays,
		ActualDays:     u.ActualDays,
		IsEarlyReturn:  u.IsEarlyReturn,
		IsLateReturn:   u.IsLateReturn,
		ExtraDays:      u.ExtraDays,
	}
}

// Adjustment is the monetary effect of a return. All amounts are rounded to
// cents and AdjustedAmount + RefundAmount - PenaltyAmount equals the rounded
// original amount.
type Adjustment struct {
	DailyRate      decimal.Decimal
	AdjustedAmount decimal.Decimal
	RefundAmount   decimal.Decimal
	PenaltyAmount  decimal.Decimal
	Reason         string
}

// OrderTotals is the price breakdown of an order's items.
type OrderTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	ChargeableDays int
}

// PricingEngine is the only place money for an order is computed: the order
// total at creation and the adjustment at return.
type PricingEngine struct {
	policy PricingPolicy
}

func NewPricingEngine(policy PricingPolicy) (PricingEngine, error) {
	if err := policy.Validate(); err != nil {
		return PricingEngine{}, err
	}
	return PricingEngine{policy: policy}, nil
}

func (e PricingEngine) Policy() PricingPolicy {
	return e.policy
}

// Adjust prices a return. Intermediate values keep full precision; only the
// outputs are rounded.
func (e PricingEngine) Adjust(in AdjustmentInput) (Adjustment, error) {
	if err := validateAdjustmentInput(in); err != nil {
		return Adjustment{}, err
	}

	original := in.OriginalAmount
	plannedDays := decimal.NewFromInt(int64(in.PlannedDays))
	dailyRate := original.Div(plannedDays)
	roundedOriginal := kernel.RoundMoney(original)

	result := Adjustment{
		DailyRate:      kernel.RoundMoney(dailyRate),
		AdjustedAmount: roundedOriginal,
		RefundAmount:   decimal.Zero,
		PenaltyAmount:  decimal.Zero,
		Reason:         ReasonOnTime,
	}

	switch {
	case in.IsEarlyReturn:
		costForUsedDays := original.Mul(decimal.NewFromInt(int64(in.ActualDays))).Div(plannedDays)
		minCharge := original.Mul(e.policy.MinChargeRatio)

		adjusted := costForUsedDays
		result.Reason = fmt.Sprintf("Early return: adjusted for usage (%d of %d days)", in.ActualDays, in.PlannedDays)
		if minCharge.GreaterThan(costForUsedDays) {
			adjusted = minCharge
			result.Reason = fmt.Sprintf("Early return: minimum %s%% charge applied",
				e.policy.MinChargeRatio.Mul(hundred).String())
		}

		result.AdjustedAmount = kernel.RoundMoney(adjusted)
		result.RefundAmount = roundedOriginal.Sub(result.AdjustedAmount)

	case in.IsLateReturn:
		penaltyRate := dailyRate.Mul(e.policy.PenaltyMultiplier)
		penalty := kernel.RoundMoney(penaltyRate.Mul(decimal.NewFromInt(int64(in.ExtraDays))))

		result.PenaltyAmount = penalty
		result.AdjustedAmount = roundedOriginal.Add(penalty)
		result.Reason = fmt.Sprintf("Late return: %d extra day(s) at %sx daily rate",
			in.ExtraDays, e.policy.PenaltyMultiplier.String())
	}

	return result, nil
}

// ChargeableDays is the billed day count of a rental window: the override when
// given, else the inclusive calendar days from start to end.
func (e PricingEngine) ChargeableDays(start, end kernel.Date, override *int) (int, error) {
	if err := validateWindow(start, end); err != nil {
		return 0, err
	}
	if override != nil {
		if *override < 1 {
			return 0, errs.NewValueIsOutOfRangeError("chargeableDays", *override, 1, "unbounded")
		}
		return *override, nil
	}
	return InclusiveDays(start, end), nil
}

// ComputeOrderTotals prices items over the rental window. Each component is
// rounded once and the total is derived from the rounded components, so the
// breakdown always adds up.
func (e PricingEngine) ComputeOrderTotals(
	items []order.Item,
	start, end kernel.Date,
	discountPct, taxRatePct decimal.Decimal,
	chargeableDaysOverride *int,
) (OrderTotals, error) {
	days, err := e.ChargeableDays(start, end, chargeableDaysOverride)
	if err != nil {
		return OrderTotals{}, err
	}
	if err = errors.Join(
		kernel.ValidatePercentage("discountPct", discountPct, hundred),
		kernel.ValidateNonNegativeAmount("taxRatePct", taxRatePct),
	); err != nil {
		return OrderTotals{}, err
	}
	if len(items) == 0 {
		return OrderTotals{}, errs.NewValueIsRequiredError("items")
	}

	subtotal := decimal.Zero
	for idx, item := range items {
		if err = item.Validate(); err != nil {
			return OrderTotals{}, fmt.Errorf("items[%d]: %w", idx, err)
		}
		line := item.UnitPrice().
			Mul(decimal.NewFromInt(int64(item.Quantity()))).
			Mul(decimal.NewFromInt(int64(item.BillableDays(days))))
		subtotal = subtotal.Add(line)
	}

	discount := subtotal.Mul(discountPct).Div(hundred)
	tax := subtotal.Sub(discount).Mul(taxRatePct).Div(hundred)

	totals := OrderTotals{
		Subtotal:       kernel.RoundMoney(subtotal),
		DiscountAmount: kernel.RoundMoney(discount),
		TaxAmount:      kernel.RoundMoney(tax),
		ChargeableDays: days,
	}
	totals.TotalAmount = totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.TaxAmount)
	return totals, nil
}

func validateAdjustmentInput(in AdjustmentInput) error {
	var errList []error

	errList = append(errList, kernel.ValidateNonNegativeAmount("originalAmount", in.OriginalAmount))
	if in.PlannedDays < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("plannedDays", in.PlannedDays, 1, "unbounded"))
	}
	if in.ActualDays < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("actualDays", in.ActualDays, 0, "unbounded"))
	}
	if in.IsEarlyReturn && in.ActualDays > in.PlannedDays {
		errList = append(errList, errs.NewValueIsOutOfRangeError("actualDays", in.ActualDays, 0, in.PlannedDays))
	}
	if in.IsEarlyReturn && in.IsLateReturn {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("isLateReturn",
			errors.New("a return cannot be both early and late")))
	}
	if in.IsLateReturn && in.ExtraDays < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("extraDays", in.ExtraDays, 1, "unbounded"))
	}

	return errors.Join(errList...)
}
