package services

import (
	"fmt"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/pkg/errs"
)

// DefaultGraceDays is used when no grace period is configured.
const DefaultGraceDays = 1

// Usage classifies an actual return date against the planned rental window.
// Exactly one of IsEarlyReturn, IsLateReturn and IsWithinGrace is true.
type Usage struct {
	PlannedDays         int
	ActualDays          int
	ExtraDays           int
	ReturnAllowanceDate kernel.Date
	IsEarlyReturn       bool
	IsLateReturn        bool
	IsWithinGrace       bool
}

// UsageCalculator turns planned and actual dates into day counts. It does no
// money arithmetic; see PricingEngine.
type UsageCalculator struct {
	graceDays int
}

// NewUsageCalculator fails with ValueIsOutOfRange for a negative grace period.
func NewUsageCalculator(graceDays int) (UsageCalculator, error) {
	if graceDays < 0 {
		return UsageCalculator{}, errs.NewValueIsOutOfRangeError("graceDays", graceDays, 0, "unbounded")
	}
	return UsageCalculator{graceDays: graceDays}, nil
}

func (c UsageCalculator) GraceDays() int {
	return c.graceDays
}

// Calculate computes usage with both planned endpoints counted as rental days.
// A return on plannedEnd, or up to graceDays after it, is within grace.
func (c UsageCalculator) Calculate(plannedStart, plannedEnd, actualDate kernel.Date) (Usage, error) {
	if err := validateWindow(plannedStart, plannedEnd); err != nil {
		return Usage{}, err
	}
	if err := actualDate.Validate("actualDate"); err != nil {
		return Usage{}, err
	}

	allowance := plannedEnd.AddDays(c.graceDays)
	usage := Usage{
		PlannedDays:         InclusiveDays(plannedStart, plannedEnd),
		ActualDays:          max(0, actualDate.DaysSince(plannedStart)+1),
		ReturnAllowanceDate: allowance,
		IsEarlyReturn:       actualDate.Before(plannedEnd),
		IsLateReturn:        actualDate.After(allowance),
	}
	usage.IsWithinGrace = !usage.IsEarlyReturn && !usage.IsLateReturn
	if usage.IsLateReturn {
		usage.ExtraDays = actualDate.DaysSince(allowance)
	}

	return usage, nil
}

// InclusiveDays counts the calendar days from start to end, both included.
func InclusiveDays(start, end kernel.Date) int {
	return end.DaysSince(start) + 1
}

func validateWindow(start, end kernel.Date) error {
	if err := start.Validate("plannedStart"); err != nil {
		return err
	}
	if err := end.Validate("plannedEnd"); err != nil {
		return err
	}
	if start.After(end) {
		return errs.NewInvalidDateErrorWithCause("plannedStart", start.String(),
			fmt.Errorf("after plannedEnd %s", end))
	}
	return nil
}
