package order

import (
	"errors"
	"fmt"
	"time"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrDepositIsNotConstructed is returned by Deposit.Validate for zero values.
var ErrDepositIsNotConstructed = errors.New("Deposit must be created via NewPendingDeposit or RestoreDeposit")

// DepositStatus is the lifecycle state of a security deposit:
//
//	pending ─> collected ─┬─> refunded
//	                      └─> forfeited
type DepositStatus int

const (
	DepositUnknown DepositStatus = iota
	DepositPending
	DepositCollected
	DepositRefunded
	DepositForfeited
)

func getDepositStatusStrings() map[DepositStatus]string {
	return map[DepositStatus]string{
		DepositUnknown:   "unknown",
		DepositPending:   "pending",
		DepositCollected: "collected",
		DepositRefunded:  "refunded",
		DepositForfeited: "forfeited",
	}
}

func ParseDepositStatus(s string) (DepositStatus, error) {
	for status, name := range getDepositStatusStrings() {
		if status != DepositUnknown && name == s {
			return status, nil
		}
	}
	return DepositUnknown, errs.NewValueIsInvalidErrorWithCause("depositStatus",
		fmt.Errorf("%q is not a known deposit status", s))
}

func (s DepositStatus) Validate() error {
	if s <= DepositUnknown || s > DepositForfeited {
		return errs.NewValueIsInvalidErrorWithCause("depositStatus", fmt.Errorf("%d is not a valid deposit status", s))
	}
	return nil
}

func (s DepositStatus) String() string {
	if str, ok := getDepositStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsSettled reports whether the deposit reached refunded or forfeited.
func (s DepositStatus) IsSettled() bool {
	return s == DepositRefunded || s == DepositForfeited
}

// Deposit is a security deposit attached to an order. It is a value: the
// ledger never changes one in place but returns the next state.
type Deposit struct {
	amount          decimal.Decimal
	status          DepositStatus
	collectedAt     *time.Time
	refundedAt      *time.Time
	deductionAmount decimal.Decimal
	deductionReason string
	notes           string
	refundAmount    decimal.Decimal
	isConstructed   bool
}

// NewPendingDeposit creates the deposit an order starts with.
func NewPendingDeposit(amount decimal.Decimal) (Deposit, error) {
	if err := kernel.ValidateNonNegativeAmount("depositAmount", amount); err != nil {
		return Deposit{}, err
	}
	return Deposit{
		amount:        amount,
		status:        DepositPending,
		isConstructed: true,
	}, nil
}

// DepositSnapshot carries every persisted deposit field. It is the input of
// RestoreDeposit and the output of Deposit.Snapshot.
type DepositSnapshot struct {
	Amount          decimal.Decimal
	Status          DepositStatus
	CollectedAt     *time.Time
	RefundedAt      *time.Time
	DeductionAmount decimal.Decimal
	DeductionReason string
	Notes           string
	RefundAmount    decimal.Decimal
}

// RestoreDeposit rebuilds a deposit read from storage or supplied by a caller.
// It checks that the timestamps match the status.
func RestoreDeposit(s DepositSnapshot) (Deposit, error) {
	if err := errors.Join(
		s.Status.Validate(),
		kernel.ValidateNonNegativeAmount("depositAmount", s.Amount),
		kernel.ValidateNonNegativeAmount("deductionAmount", s.DeductionAmount),
		kernel.ValidateNonNegativeAmount("refundAmount", s.RefundAmount),
	); err != nil {
		return Deposit{}, err
	}

	if s.Status != DepositPending && s.CollectedAt == nil {
		return Deposit{}, errs.NewValueIsRequiredErrorWithCause("collectedAt",
			fmt.Errorf("deposit in state %s has no collection time", s.Status))
	}
	if s.Status.IsSettled() && s.RefundedAt == nil {
		return Deposit{}, errs.NewValueIsRequiredErrorWithCause("refundedAt",
			fmt.Errorf("deposit in state %s has no settlement time", s.Status))
	}

	return Deposit{
		amount:          s.Amount,
		status:          s.Status,
		collectedAt:     copyTime(s.CollectedAt),
		refundedAt:      copyTime(s.RefundedAt),
		deductionAmount: s.DeductionAmount,
		deductionReason: s.DeductionReason,
		notes:           s.Notes,
		refundAmount:    s.RefundAmount,
		isConstructed:   true,
	}, nil
}

func (d Deposit) Validate() error {
	if !d.isConstructed {
		return ErrDepositIsNotConstructed
	}
	return nil
}

func (d Deposit) Snapshot() DepositSnapshot {
	return DepositSnapshot{
		Amount:          d.amount,
		Status:          d.status,
		CollectedAt:     copyTime(d.collectedAt),
		RefundedAt:      copyTime(d.refundedAt),
		DeductionAmount: d.deductionAmount,
		DeductionReason: d.deductionReason,
		Notes:           d.notes,
		RefundAmount:    d.refundAmount,
	}
}

func (d Deposit) Amount() decimal.Decimal          { return d.amount }
func (d Deposit) Status() DepositStatus            { return d.status }
func (d Deposit) CollectedAt() *time.Time          { return copyTime(d.collectedAt) }
func (d Deposit) RefundedAt() *time.Time           { return copyTime(d.refundedAt) }
func (d Deposit) DeductionAmount() decimal.Decimal { return d.deductionAmount }
func (d Deposit) DeductionReason() string          { return d.deductionReason }
func (d Deposit) Notes() string                    { return d.notes }

// RefundAmount is what goes back to the customer. It is never negative; an
// over-deduction is visible through DeductionAmount instead.
func (d Deposit) RefundAmount() decimal.Decimal { return d.refundAmount }

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
