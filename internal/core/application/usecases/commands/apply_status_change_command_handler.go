package commands

import (
	"context"
	"log/slog"
	"time"

	"rental/internal/core/domain/model/order"
	"rental/internal/core/domain/services"
	"rental/internal/core/ports"
	"rental/internal/pkg/errs"
)

// ApplyStatusChangeCommandHandler is the single writer of order status. It
// reads the order, plans the change, and commits the new snapshot together
// with its audit record using a compare-and-swap on the order version.
// The committed record is published afterwards; publish errors are logged
// and never undo the commit.
type ApplyStatusChangeCommandHandler struct {
	uowFactory  StatusChangeUoWFactory
	coordinator services.StatusChangeCoordinator
	publisher   ports.StatusChangePublisher
	now         func() time.Time
	logger      *slog.Logger
}

// NewApplyStatusChangeCommandHandler wires the handler. publisher may be nil
// when events are disabled.
func NewApplyStatusChangeCommandHandler(
	uowFactory StatusChangeUoWFactory,
	coordinator services.StatusChangeCoordinator,
	publisher ports.StatusChangePublisher,
	now func() time.Time,
	logger *slog.Logger,
) ApplyStatusChangeCommandHandler {
	return ApplyStatusChangeCommandHandler{
		uowFactory:  uowFactory,
		coordinator: coordinator,
		publisher:   publisher,
		now:         now,
		logger:      logger.With("component", "ApplyStatusChangeCommandHandler"),
	}
}

func (h *ApplyStatusChangeCommandHandler) Handle(
	ctx context.Context, cmd ApplyStatusChangeCommand,
) (services.StatusChangeResult, error) {
	if err := cmd.Validate(); err != nil {
		return services.StatusChangeResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return services.StatusChangeResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	current, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return services.StatusChangeResult{}, err
	}
	if err = checkExpectedVersion(current, cmd.ExpectedVersion()); err != nil {
		return services.StatusChangeResult{}, err
	}

	result, err := h.coordinator.Plan(current, services.StatusChangeRequest{
		To:                     cmd.To(),
		ActualDate:             cmd.ActualDate(),
		ChargeableDaysOverride: cmd.ChargeableDaysOverride(),
		Deduction:              cmd.Deduction(),
		At:                     h.now(),
	})
	if err != nil {
		return services.StatusChangeResult{}, err
	}

	if err = uow.OrderRepository().Update(ctx, result.Order, current.Version()); err != nil {
		return services.StatusChangeResult{}, err
	}
	if err = uow.StatusChangeRepository().Add(ctx, result.Audit); err != nil {
		return services.StatusChangeResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return services.StatusChangeResult{}, err
	}

	h.logger.InfoContext(ctx, "order status changed",
		"orderID", result.Order.ID().String(),
		"from", result.PreviousStatus.String(),
		"to", result.Order.Status().String(),
		"version", result.Order.Version(),
		"totalAmount", result.Order.TotalAmount().String(),
	)
	h.publish(ctx, result)

	return result, nil
}

func (h *ApplyStatusChangeCommandHandler) publish(ctx context.Context, result services.StatusChangeResult) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, result.Audit); err != nil {
		h.logger.ErrorContext(ctx, "failed to publish status change",
			"orderID", result.Order.ID().String(),
			"to", result.Order.Status().String(),
			"error", err,
		)
	}
}

func checkExpectedVersion(o *order.Order, expected *int64) error {
	if expected != nil && *expected != o.Version() {
		return errs.NewConflictError("order", o.ID().String(), *expected)
	}
	return nil
}
