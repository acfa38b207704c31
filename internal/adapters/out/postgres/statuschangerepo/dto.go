// Package statuschangerepo persists the audit record written for every
// committed order status change. Records are append-only.
package statuschangerepo

import (
	"time"

	"rental/internal/core/domain/model/audit"
	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatusChangeDTO is one row of order_status_changes. The calculation and the
// deposit outcome are stored as jsonb documents since they are only ever read whole.
type StatusChangeDTO struct {
	ID                     uuid.UUID           `gorm:"type:uuid;primaryKey"`
	OrderID                uuid.UUID           `gorm:"type:uuid;not null;index:idx_status_changes_order,priority:1"`
	FromStatus             string              `gorm:"type:varchar(32);not null"`
	ToStatus               string              `gorm:"type:varchar(32);not null"`
	ActualDate             *time.Time          `gorm:"type:date"`
	ChargeableDaysOverride *int                `gorm:"type:int"`
	Calculation            *CalculationDTO     `gorm:"type:jsonb;serializer:json"`
	Deposit                *DepositSnapshotDTO `gorm:"type:jsonb;serializer:json"`
	TotalAmount            decimal.Decimal     `gorm:"type:numeric;not null"`
	Version                int64               `gorm:"type:bigint;not null;index:idx_status_changes_order,priority:2"`
	ChangedAt              time.Time           `gorm:"type:timestamptz;not null"`
}

// TableName specifies the database table name for status change records.
func (StatusChangeDTO) TableName() string {
	return "order_status_changes"
}

// CalculationDTO is the jsonb shape of audit.Calculation.
type CalculationDTO struct {
	OriginalAmount      decimal.Decimal `json:"originalAmount"`
	PlannedDays         int             `json:"plannedDays"`
	ActualDays          int             `json:"actualDays"`
	ExtraDays           int             `json:"extraDays"`
	ReturnAllowanceDate string          `json:"returnAllowanceDate"`
	IsEarlyReturn       bool            `json:"isEarlyReturn"`
	IsLateReturn        bool            `json:"isLateReturn"`
	IsWithinGrace       bool            `json:"isWithinGrace"`
	DailyRate           decimal.Decimal `json:"dailyRate"`
	AdjustedAmount      decimal.Decimal `json:"adjustedAmount"`
	RefundAmount        decimal.Decimal `json:"refundAmount"`
	PenaltyAmount       decimal.Decimal `json:"penaltyAmount"`
	AdjustmentReason    string          `json:"adjustmentReason"`
}

// DepositSnapshotDTO is the jsonb shape of order.DepositSnapshot.
type DepositSnapshotDTO struct {
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	CollectedAt     *time.Time      `json:"collectedAt,omitempty"`
	RefundedAt      *time.Time      `json:"refundedAt,omitempty"`
	DeductionAmount decimal.Decimal `json:"deductionAmount"`
	DeductionReason string          `json:"deductionReason,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	RefundAmount    decimal.Decimal `json:"refundAmount"`
}

func fromDomain(record audit.StatusChange) StatusChangeDTO {
	dto := StatusChangeDTO{
		ID:                     record.ID.Bytes(),
		OrderID:                record.OrderID.Bytes(),
		FromStatus:             record.FromStatus.String(),
		ToStatus:               record.ToStatus.String(),
		ActualDate:             datePtr(record.ActualDate),
		ChargeableDaysOverride: record.ChargeableDaysOverride,
		TotalAmount:            record.TotalAmount,
		Version:                record.Version,
		ChangedAt:              record.ChangedAt.UTC(),
	}

	if c := record.Calculation; c != nil {
		dto.Calculation = &CalculationDTO{
			OriginalAmount:      c.OriginalAmount,
			PlannedDays:         c.PlannedDays,
			ActualDays:          c.ActualDays,
			ExtraDays:           c.ExtraDays,
			ReturnAllowanceDate: c.ReturnAllowanceDate.String(),
			IsEarlyReturn:       c.IsEarlyReturn,
			IsLateReturn:        c.IsLateReturn,
			IsWithinGrace:       c.IsWithinGrace,
			DailyRate:           c.DailyRate,
			AdjustedAmount:      c.AdjustedAmount,
			RefundAmount:        c.RefundAmount,
			PenaltyAmount:       c.PenaltyAmount,
			AdjustmentReason:    c.AdjustmentReason,
		}
	}

	if d := record.Deposit; d != nil {
		dto.Deposit = depositSnapshotFromDomain(*d)
	}

	return dto
}

func depositSnapshotFromDomain(d order.DepositSnapshot) *DepositSnapshotDTO {
	return &DepositSnapshotDTO{
		Amount:          d.Amount,
		Status:          d.Status.String(),
		CollectedAt:     d.CollectedAt,
		RefundedAt:      d.RefundedAt,
		DeductionAmount: d.DeductionAmount,
		DeductionReason: d.DeductionReason,
		Notes:           d.Notes,
		RefundAmount:    d.RefundAmount,
	}
}

func datePtr(d kernel.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time()
	return &t
}
