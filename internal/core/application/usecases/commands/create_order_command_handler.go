package commands

import (
	"context"

	"rental/internal/core/domain/model/order"
	"rental/internal/core/domain/services"

	"github.com/shopspring/decimal"
)

// CreateOrderCommandHandler prices and stores new orders. The stored total is
// always the pricing engine's output for the order's items and days.
type CreateOrderCommandHandler struct {
	uowFactory     OrderUoWFactory
	pricing        services.PricingEngine
	defaultProfile order.Profile
	taxRatePct     decimal.Decimal
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	pricing services.PricingEngine,
	defaultProfile order.Profile,
	taxRatePct decimal.Decimal,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:     uowFactory,
		pricing:        pricing,
		defaultProfile: defaultProfile,
		taxRatePct:     taxRatePct,
	}
}

// Handle creates the order in pending status, with a pending deposit when the
// command carries a deposit amount.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	profile := h.defaultProfile
	if cmd.ProfileName() != "" {
		var err error
		if profile, err = order.ProfileByName(cmd.ProfileName()); err != nil {
			return nil, err
		}
	}

	totals, err := h.pricing.ComputeOrderTotals(
		cmd.Items(), cmd.RentalStartDate(), cmd.RentalEndDate(),
		cmd.DiscountPct(), h.taxRatePct, cmd.ChargeableDaysOverride(),
	)
	if err != nil {
		return nil, err
	}

	var deposit *order.Deposit
	if amount := cmd.DepositAmount(); amount != nil {
		d, err := order.NewPendingDeposit(*amount)
		if err != nil {
			return nil, err
		}
		deposit = &d
	}

	created, err := order.NewOrder(cmd.OrderID(), profile, order.Terms{
		RentalStartDate: cmd.RentalStartDate(),
		RentalEndDate:   cmd.RentalEndDate(),
		Items:           cmd.Items(),
		DiscountPct:     cmd.DiscountPct(),
		TaxRatePct:      h.taxRatePct,
		ChargeableDays:  totals.ChargeableDays,
	}, totals.TotalAmount, deposit)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, created); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}
