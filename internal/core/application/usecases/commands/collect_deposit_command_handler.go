package commands

import (
	"context"
	"time"

	"rental/internal/core/domain/model/order"
	"rental/internal/pkg/errs"
)

// CollectDepositCommandHandler runs DepositLedger.Collect on a stored order
// and commits the result with the same version check as status changes.
type CollectDepositCommandHandler struct {
	uowFactory OrderUoWFactory
	now        func() time.Time
}

func NewCollectDepositCommandHandler(uowFactory OrderUoWFactory, now func() time.Time) CollectDepositCommandHandler {
	return CollectDepositCommandHandler{
		uowFactory: uowFactory,
		now:        now,
	}
}

func (h *CollectDepositCommandHandler) Handle(ctx context.Context, cmd CollectDepositCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	current, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if err = checkExpectedVersion(current, cmd.ExpectedVersion()); err != nil {
		return nil, err
	}

	deposit := current.Deposit()
	if deposit == nil {
		return nil, errs.NewInvalidStateError("deposit", "collect", "absent")
	}

	collected, err := order.NewDepositLedger(current.Profile()).
		Collect(*deposit, current.Status(), cmd.Amount(), h.now())
	if err != nil {
		return nil, err
	}

	next, err := current.WithDeposit(collected)
	if err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, next, current.Version()); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return next, nil
}
