// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"fmt"
	"time"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Status and profile are stored by name so the table stays readable from SQL;
// the deposit lives in the same row under the deposit_ prefix.
type OrderDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Profile         string          `gorm:"type:varchar(32);not null"`
	Status          string          `gorm:"type:varchar(32);not null;index"`
	RentalStartDate time.Time       `gorm:"type:date;not null"`
	RentalEndDate   time.Time       `gorm:"type:date;not null;index"`
	DiscountPct     decimal.Decimal `gorm:"type:numeric;not null"`
	TaxRatePct      decimal.Decimal `gorm:"type:numeric;not null"`
	ChargeableDays  int             `gorm:"type:int;not null"`
	BaseAmount      decimal.Decimal `gorm:"type:numeric;not null"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric;not null"`
	Deposit         *DepositDTO     `gorm:"embedded;embeddedPrefix:deposit_"`
	PickedUpOn      *time.Time      `gorm:"type:date"`
	ReturnedOn      *time.Time      `gorm:"type:date"`
	Version         int64           `gorm:"type:bigint;not null"`
	Items           []OrderItemDTO  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// DepositDTO is the embedded deposit. All columns are nullable; an order
// without a deposit leaves deposit_status NULL.
type DepositDTO struct {
	Amount          decimal.NullDecimal `gorm:"type:numeric"`
	Status          *string             `gorm:"type:varchar(32)"`
	CollectedAt     *time.Time
	RefundedAt      *time.Time
	DeductionAmount decimal.NullDecimal `gorm:"type:numeric"`
	DeductionReason *string             `gorm:"type:text"`
	Notes           *string             `gorm:"type:text"`
	RefundAmount    decimal.NullDecimal `gorm:"type:numeric"`
}

// OrderItemDTO is one rented line. Items never change after creation.
type OrderItemDTO struct {
	OrderID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position  int             `gorm:"type:int;primaryKey"`
	ProductID string          `gorm:"type:varchar(255);not null"`
	Quantity  int             `gorm:"type:int;not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric;not null"`
	DaysUsed  *int            `gorm:"type:int"`
}

// TableName specifies the database table name for order items.
func (OrderItemDTO) TableName() string {
	return "order_items"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	orderID := aggregate.ID().Bytes()

	items := make([]OrderItemDTO, 0, len(aggregate.Items()))
	for i, item := range aggregate.Items() {
		items = append(items, OrderItemDTO{
			OrderID:   orderID,
			Position:  i,
			ProductID: item.ProductID(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
			DaysUsed:  item.DaysUsed(),
		})
	}

	return OrderDTO{
		ID:              orderID,
		Profile:         aggregate.Profile().Name(),
		Status:          aggregate.Status().String(),
		RentalStartDate: aggregate.RentalStartDate().Time(),
		RentalEndDate:   aggregate.RentalEndDate().Time(),
		DiscountPct:     aggregate.DiscountPct(),
		TaxRatePct:      aggregate.TaxRatePct(),
		ChargeableDays:  aggregate.ChargeableDays(),
		BaseAmount:      aggregate.BaseAmount(),
		TotalAmount:     aggregate.TotalAmount(),
		Deposit:         depositFromDomain(aggregate.Deposit()),
		PickedUpOn:      datePtr(aggregate.PickedUpOn()),
		ReturnedOn:      datePtr(aggregate.ReturnedOn()),
		Version:         aggregate.Version(),
		Items:           items,
	}
}

func depositFromDomain(d *order.Deposit) *DepositDTO {
	if d == nil {
		return nil
	}
	s := d.Snapshot()
	status := s.Status.String()
	return &DepositDTO{
		Amount:          decimal.NewNullDecimal(s.Amount),
		Status:          &status,
		CollectedAt:     s.CollectedAt,
		RefundedAt:      s.RefundedAt,
		DeductionAmount: decimal.NewNullDecimal(s.DeductionAmount),
		DeductionReason: &s.DeductionReason,
		Notes:           &s.Notes,
		RefundAmount:    decimal.NewNullDecimal(s.RefundAmount),
	}
}

// toDomain converts a database DTO to an order aggregate using RestoreOrder,
// so a corrupted row fails the same invariants a new order would.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := order.NewItem(itemDTO.ProductID, itemDTO.Quantity, itemDTO.UnitPrice, itemDTO.DaysUsed)
		if itemErr != nil {
			return nil, fmt.Errorf("order %s item %d: %w", id, itemDTO.Position, itemErr)
		}
		items = append(items, item)
	}

	deposit, err := depositToDomain(dto.Deposit)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:          id,
		ProfileName: dto.Profile,
		Status:      status,
		Terms: order.Terms{
			RentalStartDate: kernel.NewDate(dto.RentalStartDate),
			RentalEndDate:   kernel.NewDate(dto.RentalEndDate),
			Items:           items,
			DiscountPct:     dto.DiscountPct,
			TaxRatePct:      dto.TaxRatePct,
			ChargeableDays:  dto.ChargeableDays,
		},
		BaseAmount:  dto.BaseAmount,
		TotalAmount: dto.TotalAmount,
		Deposit:     deposit,
		PickedUpOn:  dateFromPtr(dto.PickedUpOn),
		ReturnedOn:  dateFromPtr(dto.ReturnedOn),
		Version:     dto.Version,
	})
}

func depositToDomain(dto *DepositDTO) (*order.Deposit, error) {
	if dto == nil || dto.Status == nil {
		return nil, nil
	}

	status, err := order.ParseDepositStatus(*dto.Status)
	if err != nil {
		return nil, err
	}

	d, err := order.RestoreDeposit(order.DepositSnapshot{
		Amount:          dto.Amount.Decimal,
		Status:          status,
		CollectedAt:     utcPtr(dto.CollectedAt),
		RefundedAt:      utcPtr(dto.RefundedAt),
		DeductionAmount: dto.DeductionAmount.Decimal,
		DeductionReason: stringValue(dto.DeductionReason),
		Notes:           stringValue(dto.Notes),
		RefundAmount:    dto.RefundAmount.Decimal,
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func datePtr(d kernel.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time()
	return &t
}

func dateFromPtr(t *time.Time) kernel.Date {
	if t == nil {
		return kernel.Date{}
	}
	return kernel.NewDate(*t)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
