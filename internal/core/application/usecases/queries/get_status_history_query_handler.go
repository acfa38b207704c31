package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rental/internal/core/domain/model/audit"
	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetStatusHistoryQueryHandler reads order_status_changes directly.
type GetStatusHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetStatusHistoryQueryHandler(db *gorm.DB) GetStatusHistoryQueryHandler {
	return GetStatusHistoryQueryHandler{db: db}
}

// Handle returns the records of the order ordered by committed version,
// newest first. An unknown order is an errs.ObjectNotFoundError; a known order
// without changes yields an empty slice.
func (h GetStatusHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetStatusHistoryQuery,
) ([]audit.StatusChange, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var exists int64
	if err := h.db.WithContext(ctx).Raw(`SELECT count(*) FROM orders WHERE id = ?`,
		query.OrderID().Bytes()).Scan(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			from_status,
			to_status,
			actual_date,
			chargeable_days_override,
			calculation,
			deposit,
			total_amount,
			version,
			changed_at
		FROM order_status_changes
		WHERE order_id = ?
		ORDER BY version DESC, changed_at DESC
		LIMIT ?
	`, query.OrderID().Bytes(), query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]audit.StatusChange, 0)
	for rows.Next() {
		var (
			row             historyRow
			calculationJSON []byte
			depositJSON     []byte
		)
		if err = rows.Scan(
			&row.id,
			&row.orderID,
			&row.fromStatus,
			&row.toStatus,
			&row.actualDate,
			&row.override,
			&calculationJSON,
			&depositJSON,
			&row.totalAmount,
			&row.version,
			&row.changedAt,
		); err != nil {
			return nil, err
		}

		record, mapErr := row.toRecord(calculationJSON, depositJSON)
		if mapErr != nil {
			return nil, fmt.Errorf("status change %s: %w", row.id, mapErr)
		}
		history = append(history, record)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}

type historyRow struct {
	id          uuid.UUID
	orderID     uuid.UUID
	fromStatus  string
	toStatus    string
	actualDate  *time.Time
	override    *int
	totalAmount decimal.Decimal
	version     int64
	changedAt   time.Time
}

type calculationDocument struct {
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

type depositDocument struct {
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	CollectedAt     *time.Time      `json:"collectedAt"`
	RefundedAt      *time.Time      `json:"refundedAt"`
	DeductionAmount decimal.Decimal `json:"deductionAmount"`
	DeductionReason string          `json:"deductionReason"`
	Notes           string          `json:"notes"`
	RefundAmount    decimal.Decimal `json:"refundAmount"`
}

func (r historyRow) toRecord(calculationJSON, depositJSON []byte) (audit.StatusChange, error) {
	id, err := kernel.UUIDFromBytes(r.id[:])
	if err != nil {
		return audit.StatusChange{}, err
	}
	orderID, err := kernel.UUIDFromBytes(r.orderID[:])
	if err != nil {
		return audit.StatusChange{}, err
	}
	from, err := order.ParseStatus(r.fromStatus)
	if err != nil {
		return audit.StatusChange{}, err
	}
	to, err := order.ParseStatus(r.toStatus)
	if err != nil {
		return audit.StatusChange{}, err
	}

	record := audit.StatusChange{
		ID:                     id,
		OrderID:                orderID,
		FromStatus:             from,
		ToStatus:               to,
		ChargeableDaysOverride: r.override,
		TotalAmount:            r.totalAmount,
		Version:                r.version,
		ChangedAt:              r.changedAt.UTC(),
	}
	if r.actualDate != nil {
		record.ActualDate = kernel.NewDate(*r.actualDate)
	}

	if len(calculationJSON) > 0 {
		if record.Calculation, err = decodeCalculation(calculationJSON); err != nil {
			return audit.StatusChange{}, err
		}
	}
	if len(depositJSON) > 0 {
		if record.Deposit, err = decodeDeposit(depositJSON); err != nil {
			return audit.StatusChange{}, err
		}
	}

	return record, nil
}

func decodeCalculation(raw []byte) (*audit.Calculation, error) {
	var doc calculationDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	allowance, err := kernel.ParseOptionalDate("returnAllowanceDate", doc.ReturnAllowanceDate)
	if err != nil {
		return nil, err
	}
	return &audit.Calculation{
		OriginalAmount:      doc.OriginalAmount,
		PlannedDays:         doc.PlannedDays,
		ActualDays:          doc.ActualDays,
		ExtraDays:           doc.ExtraDays,
		ReturnAllowanceDate: allowance,
		IsEarlyReturn:       doc.IsEarlyReturn,
		IsLateReturn:        doc.IsLateReturn,
		IsWithinGrace:       doc.IsWithinGrace,
		DailyRate:           doc.DailyRate,
		AdjustedAmount:      doc.AdjustedAmount,
		RefundAmount:        doc.RefundAmount,
		PenaltyAmount:       doc.PenaltyAmount,
		AdjustmentReason:    doc.AdjustmentReason,
	}, nil
}

func decodeDeposit(raw []byte) (*order.DepositSnapshot, error) {
	var doc depositDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	status, err := order.ParseDepositStatus(doc.Status)
	if err != nil {
		return nil, err
	}
	return &order.DepositSnapshot{
		Amount:          doc.Amount,
		Status:          status,
		CollectedAt:     doc.CollectedAt,
		RefundedAt:      doc.RefundedAt,
		DeductionAmount: doc.DeductionAmount,
		DeductionReason: doc.DeductionReason,
		Notes:           doc.Notes,
		RefundAmount:    doc.RefundAmount,
	}, nil
}
