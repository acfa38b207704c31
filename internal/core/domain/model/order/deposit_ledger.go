package order

import (
	"time"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const depositEntity = "deposit"

// DepositLedger owns every deposit state change. Callers pass the owning
// order's status and the event time; the ledger never reads the clock.
type DepositLedger struct {
	profile Profile
}

// NewDepositLedger binds the ledger to the profile that defines "active".
func NewDepositLedger(profile Profile) DepositLedger {
	return DepositLedger{profile: profile}
}

// Collect moves a pending deposit to collected while the order is active.
func (l DepositLedger) Collect(
	deposit Deposit, orderStatus Status, amount decimal.Decimal, at time.Time,
) (Deposit, error) {
	if err := deposit.Validate(); err != nil {
		return Deposit{}, err
	}
	if deposit.status != DepositPending {
		return Deposit{}, errs.NewInvalidStateError(depositEntity, "collect", deposit.status.String())
	}
	if !l.profile.IsActive(orderStatus) {
		return Deposit{}, errs.NewInvalidStateError(depositEntity, "collect deposit of order", orderStatus.String())
	}
	if err := kernel.ValidateNonNegativeAmount("amount", amount); err != nil {
		return Deposit{}, err
	}

	next := deposit
	next.amount = amount
	next.status = DepositCollected
	collectedAt := at.UTC()
	next.collectedAt = &collectedAt
	return next, nil
}

// Settle closes a collected deposit once the order is completed. A positive
// remainder is refunded; anything else forfeits the deposit with a refund of
// zero while the raw deduction stays on record.
func (l DepositLedger) Settle(
	deposit Deposit, orderStatus Status, deduction decimal.Decimal, reason, notes string, at time.Time,
) (Deposit, error) {
	if err := deposit.Validate(); err != nil {
		return Deposit{}, err
	}
	if deposit.status != DepositCollected {
		return Deposit{}, errs.NewInvalidStateError(depositEntity, "settle", deposit.status.String())
	}
	if orderStatus != Completed {
		return Deposit{}, errs.NewInvalidStateError(depositEntity, "settle deposit of order", orderStatus.String())
	}
	if err := kernel.ValidateNonNegativeAmount("deductionAmount", deduction); err != nil {
		return Deposit{}, err
	}

	next := deposit
	next.deductionAmount = deduction
	next.deductionReason = reason
	next.notes = notes
	refundedAt := at.UTC()
	next.refundedAt = &refundedAt

	raw := deposit.amount.Sub(deduction)
	if raw.IsPositive() {
		next.status = DepositRefunded
		next.refundAmount = kernel.RoundMoney(raw)
	} else {
		next.status = DepositForfeited
		next.refundAmount = decimal.Zero
	}
	return next, nil
}
