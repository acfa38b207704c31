// Package audit holds the immutable record written for every committed order
// status change. The same record is published as an event after commit.
package audit

import (
	"errors"
	"time"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Calculation is the usage classification and its pricing outcome, kept
// together so a reviewer can see why an amount changed.
type Calculation struct {
	OriginalAmount      decimal.Decimal
	PlannedDays         int
	ActualDays          int
	ExtraDays           int
	ReturnAllowanceDate kernel.Date
	IsEarlyReturn       bool
	IsLateReturn        bool
	IsWithinGrace       bool
	DailyRate           decimal.Decimal
	AdjustedAmount      decimal.Decimal
	RefundAmount        decimal.Decimal
	PenaltyAmount       decimal.Decimal
	AdjustmentReason    string
}

// StatusChange is one committed transition. Calculation is set only for
// completions, Deposit only when the order carries a deposit.
type StatusChange struct {
	ID                     kernel.UUID
	OrderID                kernel.UUID
	FromStatus             order.Status
	ToStatus               order.Status
	ActualDate             kernel.Date
	ChargeableDaysOverride *int
	Calculation            *Calculation
	Deposit                *order.DepositSnapshot
	TotalAmount            decimal.Decimal
	Version                int64
	ChangedAt              time.Time
}

// Validate checks the fields every record must carry.
func (s StatusChange) Validate() error {
	var atErr error
	if s.ChangedAt.IsZero() {
		atErr = errs.NewValueIsRequiredError("changedAt")
	}
	var versionErr error
	if s.Version < 1 {
		versionErr = errs.NewValueIsOutOfRangeError("version", s.Version, 1, "unbounded")
	}
	return errors.Join(
		s.ID.Validate(),
		s.OrderID.Validate(),
		s.FromStatus.Validate(),
		s.ToStatus.Validate(),
		atErr,
		versionErr,
	)
}
