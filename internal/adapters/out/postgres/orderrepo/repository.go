package orderrepo

import (
	"context"
	"errors"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order together with its items.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the mutable columns of the order only while the stored row
// still carries expectedVersion. Terms and items are fixed at creation.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order, expectedVersion int64) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, expectedVersion).
		Updates(mutableColumns(dto))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.missOnUpdate(ctx, aggregate.ID(), expectedVersion)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// missOnUpdate tells a lost race apart from a deleted row.
func (r *GormOrderRepository) missOnUpdate(ctx context.Context, id kernel.UUID, expectedVersion int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	return errs.NewConflictError("order", id.String(), expectedVersion)
}

// Get retrieves an order by ID with its items in their original order.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func mutableColumns(dto OrderDTO) map[string]any {
	deposit := dto.Deposit
	if deposit == nil {
		deposit = &DepositDTO{}
	}
	return map[string]any{
		"status":                   dto.Status,
		"total_amount":             dto.TotalAmount,
		"picked_up_on":             dto.PickedUpOn,
		"returned_on":              dto.ReturnedOn,
		"version":                  dto.Version,
		"deposit_amount":           deposit.Amount,
		"deposit_status":           deposit.Status,
		"deposit_collected_at":     deposit.CollectedAt,
		"deposit_refunded_at":      deposit.RefundedAt,
		"deposit_deduction_amount": deposit.DeductionAmount,
		"deposit_deduction_reason": deposit.DeductionReason,
		"deposit_notes":            deposit.Notes,
		"deposit_refund_amount":    deposit.RefundAmount,
	}
}
