package http

import (
	"errors"
	"net/http"
	"time"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/core/domain/services"

	"github.com/labstack/echo/v4"
)

// ValidateTransition handles POST /api/v1/transitions/validate. A transition
// the profile forbids is a normal answer, not an error.
func (s *Server) ValidateTransition(ctx echo.Context) error {
	var req TransitionRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	profile, err := s.profile(req.Profile)
	if err != nil {
		return s.writeError(ctx, err, "")
	}

	current, currentErr := order.ParseStatus(req.CurrentStatus)
	requested, requestedErr := order.ParseStatus(req.RequestedStatus)
	if err = errors.Join(currentErr, requestedErr); err != nil {
		return s.writeError(ctx, err, "")
	}

	check := profile.CheckTransition(current, requested)
	return ctx.JSON(http.StatusOK, TransitionResponse{
		Allowed:     check.Allowed,
		Reason:      check.Reason,
		AllowedNext: statusNames(profile.AllowedTransitions(current)),
	})
}

// CalculateUsage handles POST /api/v1/calculations/usage. graceDays
// overrides the configured grace period for this call only.
func (s *Server) CalculateUsage(ctx echo.Context) error {
	var req UsageRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	start, startErr := kernel.ParseDate("plannedStart", req.PlannedStart)
	end, endErr := kernel.ParseDate("plannedEnd", req.PlannedEnd)
	actual, actualErr := kernel.ParseDate("actualDate", req.ActualDate)
	if err := errors.Join(startErr, endErr, actualErr); err != nil {
		return s.writeError(ctx, err, "")
	}

	calculator := s.engine.Usage
	if req.GraceDays != nil {
		var err error
		if calculator, err = services.NewUsageCalculator(*req.GraceDays); err != nil {
			return s.writeError(ctx, err, "")
		}
	}

	usage, err := calculator.Calculate(start, end, actual)
	if err != nil {
		return s.writeError(ctx, err, "Failed to calculate usage")
	}

	return ctx.JSON(http.StatusOK, usageResponse(usage))
}

// CalculatePricing handles POST /api/v1/calculations/pricing.
func (s *Server) CalculatePricing(ctx echo.Context) error {
	var req PricingRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	adjustment, err := s.engine.Pricing.Adjust(services.AdjustmentInput{
		OriginalAmount: req.OriginalAmount,
		PlannedDays:    req.PlannedDays,
		ActualDays:     req.ActualDays,
		IsEarlyReturn:  req.IsEarlyReturn,
		IsLateReturn:   req.IsLateReturn,
		ExtraDays:      req.ExtraDays,
	})
	if err != nil {
		return s.writeError(ctx, err, "Failed to calculate pricing")
	}

	return ctx.JSON(http.StatusOK, pricingResponse(adjustment))
}

// CalculateOrderTotals handles POST /api/v1/calculations/order-totals. The
// configured tax rate applies unless the request names one.
func (s *Server) CalculateOrderTotals(ctx echo.Context) error {
	var req OrderTotalsRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	start, startErr := kernel.ParseDate("rentalStartDate", req.RentalStartDate)
	end, endErr := kernel.ParseDate("rentalEndDate", req.RentalEndDate)
	items, itemsErr := itemsToDomain(req.Items)
	if err := errors.Join(startErr, endErr, itemsErr); err != nil {
		return s.writeError(ctx, err, "")
	}

	taxRatePct := s.engine.TaxRatePct
	if req.TaxRatePct != nil {
		taxRatePct = *req.TaxRatePct
	}

	totals, err := s.engine.Pricing.ComputeOrderTotals(items, start, end, req.DiscountPct, taxRatePct, req.ChargeableDays)
	if err != nil {
		return s.writeError(ctx, err, "Failed to calculate order totals")
	}

	return ctx.JSON(http.StatusOK, OrderTotalsResponse{
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		TaxAmount:      totals.TaxAmount,
		TotalAmount:    totals.TotalAmount,
		ChargeableDays: totals.ChargeableDays,
	})
}

// CollectDepositRecord handles POST /api/v1/deposits/collect on a deposit
// supplied by the caller. Nothing is stored.
func (s *Server) CollectDepositRecord(ctx echo.Context) error {
	var req CollectDepositRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	profile, profileErr := s.profile(req.Profile)
	status, statusErr := order.ParseStatus(req.OrderStatus)
	deposit, depositErr := req.Deposit.toDomain()
	if err := errors.Join(profileErr, statusErr, depositErr); err != nil {
		return s.writeError(ctx, err, "")
	}

	collected, err := order.NewDepositLedger(profile).Collect(deposit, status, req.Amount, s.at(req.At))
	if err != nil {
		return s.writeError(ctx, err, "Failed to collect deposit")
	}

	return ctx.JSON(http.StatusOK, depositRecordFromSnapshot(collected.Snapshot()))
}

// SettleDepositRecord handles POST /api/v1/deposits/settle on a deposit
// supplied by the caller. Nothing is stored.
func (s *Server) SettleDepositRecord(ctx echo.Context) error {
	var req SettleDepositRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	profile, profileErr := s.profile(req.Profile)
	status, statusErr := order.ParseStatus(req.OrderStatus)
	deposit, depositErr := req.Deposit.toDomain()
	if err := errors.Join(profileErr, statusErr, depositErr); err != nil {
		return s.writeError(ctx, err, "")
	}

	settled, err := order.NewDepositLedger(profile).
		Settle(deposit, status, req.DeductionAmount, req.DeductionReason, req.Notes, s.at(req.At))
	if err != nil {
		return s.writeError(ctx, err, "Failed to settle deposit")
	}

	return ctx.JSON(http.StatusOK, depositRecordFromSnapshot(settled.Snapshot()))
}

func (s *Server) profile(name string) (order.Profile, error) {
	if name == "" {
		return s.engine.DefaultProfile, nil
	}
	return order.ProfileByName(name)
}

func (s *Server) at(requested *time.Time) time.Time {
	if requested != nil {
		return *requested
	}
	return s.now()
}
