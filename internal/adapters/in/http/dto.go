package http

import (
	"errors"
	"fmt"
	"time"

	"rental/internal/core/application/usecases/queries"
	"rental/internal/core/domain/model/audit"
	"rental/internal/core/domain/model/order"
	"rental/internal/core/domain/services"

	"github.com/shopspring/decimal"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ItemRequest struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	DaysUsed  *int            `json:"daysUsed,omitempty"`
}

type ItemResponse struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	DaysUsed  *int            `json:"daysUsed,omitempty"`
}

type DepositRecord struct {
	Amount          decimal.Decimal  `json:"amount"`
	Status          string           `json:"status"`
	CollectedAt     *time.Time       `json:"collectedAt,omitempty"`
	RefundedAt      *time.Time       `json:"refundedAt,omitempty"`
	DeductionAmount decimal.Decimal  `json:"deductionAmount"`
	DeductionReason string           `json:"deductionReason,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	RefundAmount    decimal.Decimal  `json:"refundAmount"`
}

type TransitionRequest struct {
	Profile         string `json:"profile,omitempty"`
	CurrentStatus   string `json:"currentStatus"`
	RequestedStatus string `json:"requestedStatus"`
}

type TransitionResponse struct {
	Allowed     bool     `json:"allowed"`
	Reason      string   `json:"reason,omitempty"`
	AllowedNext []string `json:"allowedNext"`
}

type UsageRequest struct {
	PlannedStart string `json:"plannedStart"`
	PlannedEnd   string `json:"plannedEnd"`
	ActualDate   string `json:"actualDate"`
	GraceDays    *int   `json:"graceDays,omitempty"`
}

type UsageResponse struct {
	PlannedDays         int    `json:"plannedDays"`
	ActualDays          int    `json:"actualDays"`
	ExtraDays           int    `json:"extraDays"`
	ReturnAllowanceDate string `json:"returnAllowanceDate"`
	IsEarlyReturn       bool   `json:"isEarlyReturn"`
	IsLateReturn        bool   `json:"isLateReturn"`
	IsWithinGrace       bool   `json:"isWithinGrace"`
}

type PricingRequest struct {
	OriginalAmount decimal.Decimal `json:"originalAmount"`
	PlannedDays    int             `json:"plannedDays"`
	ActualDays     int             `json:"actualDays"`
	IsEarlyReturn  bool            `json:"isEarlyReturn"`
	IsLateReturn   bool            `json:"isLateReturn"`
	ExtraDays      int             `json:"extraDays"`
}

type PricingResponse struct {
	DailyRate        decimal.Decimal `json:"dailyRate"`
	AdjustedAmount   decimal.Decimal `json:"adjustedAmount"`
	RefundAmount     decimal.Decimal `json:"refundAmount"`
	PenaltyAmount    decimal.Decimal `json:"penaltyAmount"`
	AdjustmentReason string          `json:"adjustmentReason"`
}

type OrderTotalsRequest struct {
	Items           []ItemRequest    `json:"items"`
	RentalStartDate string           `json:"rentalStartDate"`
	RentalEndDate   string           `json:"rentalEndDate"`
	DiscountPct     decimal.Decimal  `json:"discountPct"`
	TaxRatePct      *decimal.Decimal `json:"taxRatePct,omitempty"`
	ChargeableDays  *int             `json:"chargeableDays,omitempty"`
}

type OrderTotalsResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	ChargeableDays int             `json:"chargeableDays"`
}

type CollectDepositRequest struct {
	Profile     string          `json:"profile,omitempty"`
	OrderStatus string          `json:"orderStatus"`
	Deposit     DepositRecord   `json:"deposit"`
	Amount      decimal.Decimal `json:"amount"`
	At          *time.Time      `json:"at,omitempty"`
}

type SettleDepositRequest struct {
	Profile         string          `json:"profile,omitempty"`
	OrderStatus     string          `json:"orderStatus"`
	Deposit         DepositRecord   `json:"deposit"`
	DeductionAmount decimal.Decimal `json:"deductionAmount"`
	DeductionReason string          `json:"deductionReason,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	At              *time.Time      `json:"at,omitempty"`
}

type CreateOrderRequest struct {
	ID              string           `json:"id,omitempty"`
	Profile         string           `json:"profile,omitempty"`
	RentalStartDate string           `json:"rentalStartDate"`
	RentalEndDate   string           `json:"rentalEndDate"`
	Items           []ItemRequest    `json:"items"`
	DiscountPct     decimal.Decimal  `json:"discountPct"`
	ChargeableDays  *int             `json:"chargeableDays,omitempty"`
	DepositAmount   *decimal.Decimal `json:"depositAmount,omitempty"`
}

type DeductionRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
	Notes  string          `json:"notes,omitempty"`
}

type StatusChangeRequest struct {
	Status          string            `json:"status"`
	ActualDate      string            `json:"actualDate,omitempty"`
	ChargeableDays  *int              `json:"chargeableDays,omitempty"`
	Deduction       *DeductionRequest `json:"deduction,omitempty"`
	ExpectedVersion *int64            `json:"expectedVersion,omitempty"`
}

type OrderDepositCollectRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	ExpectedVersion *int64          `json:"expectedVersion,omitempty"`
}

type OrderResponse struct {
	ID                 string          `json:"id"`
	Profile            string          `json:"profile"`
	Status             string          `json:"status"`
	RentalStartDate    string          `json:"rentalStartDate"`
	RentalEndDate      string          `json:"rentalEndDate"`
	Items              []ItemResponse  `json:"items"`
	DiscountPct        decimal.Decimal `json:"discountPct"`
	TaxRatePct         decimal.Decimal `json:"taxRatePct"`
	ChargeableDays     int             `json:"chargeableDays"`
	BaseAmount         decimal.Decimal `json:"baseAmount"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Deposit            *DepositRecord  `json:"deposit,omitempty"`
	PickedUpOn         string          `json:"pickedUpOn,omitempty"`
	ReturnedOn         string          `json:"returnedOn,omitempty"`
	Version            int64           `json:"version"`
	AllowedTransitions []string        `json:"allowedTransitions"`
}

type StatusChangeResponse struct {
	Order   OrderResponse    `json:"order"`
	Usage   *UsageResponse   `json:"usage,omitempty"`
	Pricing *PricingResponse `json:"pricing,omitempty"`
	Deposit *DepositRecord   `json:"deposit,omitempty"`
}

type CalculationResponse struct {
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

type HistoryEntryResponse struct {
	ID                     string               `json:"id"`
	FromStatus             string               `json:"fromStatus"`
	ToStatus               string               `json:"toStatus"`
	ActualDate             string               `json:"actualDate,omitempty"`
	ChargeableDaysOverride *int                 `json:"chargeableDaysOverride,omitempty"`
	Calculation            *CalculationResponse `json:"calculation,omitempty"`
	Deposit                *DepositRecord       `json:"deposit,omitempty"`
	TotalAmount            decimal.Decimal      `json:"totalAmount"`
	Version                int64                `json:"version"`
	ChangedAt              time.Time            `json:"changedAt"`
}

type OverdueOrderResponse struct {
	ID                  string          `json:"id"`
	Profile             string          `json:"profile"`
	Status              string          `json:"status"`
	RentalEndDate       string          `json:"rentalEndDate"`
	ReturnAllowanceDate string          `json:"returnAllowanceDate"`
	DaysOverdue         int             `json:"daysOverdue"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
}

func (r ItemRequest) toDomain() (order.Item, error) {
	return order.NewItem(r.ProductID, r.Quantity, r.UnitPrice, r.DaysUsed)
}

func itemsToDomain(requests []ItemRequest) ([]order.Item, error) {
	items := make([]order.Item, 0, len(requests))
	var errList []error
	for i, r := range requests {
		item, err := r.toDomain()
		if err != nil {
			errList = append(errList, fmt.Errorf("items[%d]: %w", i, err))
			continue
		}
		items = append(items, item)
	}
	return items, errors.Join(errList...)
}

func (r DepositRecord) toDomain() (order.Deposit, error) {
	status, err := order.ParseDepositStatus(r.Status)
	if err != nil {
		return order.Deposit{}, err
	}
	return order.RestoreDeposit(order.DepositSnapshot{
		Amount:          r.Amount,
		Status:          status,
		CollectedAt:     r.CollectedAt,
		RefundedAt:      r.RefundedAt,
		DeductionAmount: r.DeductionAmount,
		DeductionReason: r.DeductionReason,
		Notes:           r.Notes,
		RefundAmount:    r.RefundAmount,
	})
}

func depositRecordFromSnapshot(s order.DepositSnapshot) DepositRecord {
	return DepositRecord{
		Amount:          s.Amount,
		Status:          s.Status.String(),
		CollectedAt:     s.CollectedAt,
		RefundedAt:      s.RefundedAt,
		DeductionAmount: s.DeductionAmount,
		DeductionReason: s.DeductionReason,
		Notes:           s.Notes,
		RefundAmount:    s.RefundAmount,
	}
}

func depositRecordFromDomain(d *order.Deposit) *DepositRecord {
	if d == nil {
		return nil
	}
	record := depositRecordFromSnapshot(d.Snapshot())
	return &record
}

func statusNames(statuses []order.Status) []string {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.String())
	}
	return names
}

func orderResponse(o *order.Order) OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, ItemResponse{
			ProductID: item.ProductID(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
			DaysUsed:  item.DaysUsed(),
		})
	}

	return OrderResponse{
		ID:                 o.ID().String(),
		Profile:            o.Profile().Name(),
		Status:             o.Status().String(),
		RentalStartDate:    o.RentalStartDate().String(),
		RentalEndDate:      o.RentalEndDate().String(),
		Items:              items,
		DiscountPct:        o.DiscountPct(),
		TaxRatePct:         o.TaxRatePct(),
		ChargeableDays:     o.ChargeableDays(),
		BaseAmount:         o.BaseAmount(),
		TotalAmount:        o.TotalAmount(),
		Deposit:            depositRecordFromDomain(o.Deposit()),
		PickedUpOn:         o.PickedUpOn().String(),
		ReturnedOn:         o.ReturnedOn().String(),
		Version:            o.Version(),
		AllowedTransitions: statusNames(o.AllowedTransitions()),
	}
}

func usageResponse(u services.Usage) UsageResponse {
	return UsageResponse{
		PlannedDays:         u.PlannedDays,
		ActualDays:          u.ActualDays,
		ExtraDays:           u.ExtraDays,
		ReturnAllowanceDate: u.ReturnAllowanceDate.String(),
		IsEarlyReturn:       u.IsEarlyReturn,
		IsLateReturn:        u.IsLateReturn,
		IsWithinGrace:       u.IsWithinGrace,
	}
}

func pricingResponse(a services.Adjustment) PricingResponse {
	return PricingResponse{
		DailyRate:        a.DailyRate,
		AdjustedAmount:   a.AdjustedAmount,
		RefundAmount:     a.RefundAmount,
		PenaltyAmount:    a.PenaltyAmount,
		AdjustmentReason: a.Reason,
	}
}

func statusChangeResponse(result services.StatusChangeResult) StatusChangeResponse {
	resp := StatusChangeResponse{
		Order:   orderResponse(result.Order),
		Deposit: depositRecordFromDomain(result.Deposit),
	}
	if result.Usage != nil {
		u := usageResponse(*result.Usage)
		resp.Usage = &u
	}
	if result.Pricing != nil {
		p := pricingResponse(*result.Pricing)
		resp.Pricing = &p
	}
	return resp
}

func historyEntryResponse(r audit.StatusChange) HistoryEntryResponse {
	entry := HistoryEntryResponse{
		ID:                     r.ID.String(),
		FromStatus:             r.FromStatus.String(),
		ToStatus:               r.ToStatus.String(),
		ActualDate:             r.ActualDate.String(),
		ChargeableDaysOverride: r.ChargeableDaysOverride,
		TotalAmount:            r.TotalAmount,
		Version:                r.Version,
		ChangedAt:              r.ChangedAt,
	}
	if c := r.Calculation; c != nil {
		entry.Calculation = &CalculationResponse{
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
	if r.Deposit != nil {
		d := depositRecordFromSnapshot(*r.Deposit)
		entry.Deposit = &d
	}
	return entry
}

func overdueOrderResponse(r queries.GetOverdueOrdersQueryResponse) OverdueOrderResponse {
	return OverdueOrderResponse{
		ID:                  r.ID.String(),
		Profile:             r.Profile,
		Status:              r.Status,
		RentalEndDate:       r.RentalEndDate.String(),
		ReturnAllowanceDate: r.ReturnAllowanceDate.String(),
		DaysOverdue:         r.DaysOverdue,
		TotalAmount:         r.TotalAmount,
	}
}
