package queries

import (
	"context"
	"slices"
	"time"

	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOverdueOrdersQueryHandler scans the orders table for late returns. It only
// reads; moving an order on is left to an explicit status change.
type GetOverdueOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetOverdueOrdersQueryHandler(db *gorm.DB) GetOverdueOrdersQueryHandler {
	return GetOverdueOrdersQueryHandler{db: db}
}

// Handle returns overdue orders, most overdue first.
func (h GetOverdueOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetOverdueOrdersQuery,
) ([]GetOverdueOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			profile,
			status,
			rental_end_date,
			total_amount
		FROM orders
		WHERE status = ANY(?)
		  AND rental_end_date < ?
		ORDER BY rental_end_date, id
	`, pq.Array(activeStatusNames()), query.Cutoff().Time()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overdue := make([]GetOverdueOrdersQueryResponse, 0)
	for rows.Next() {
		var (
			id          uuid.UUID
			endDate     time.Time
			resp        GetOverdueOrdersQueryResponse
			totalAmount decimal.Decimal
		)
		if err = rows.Scan(&id, &resp.Profile, &resp.Status, &endDate, &totalAmount); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.ID = orderID
		resp.RentalEndDate = kernel.NewDate(endDate)
		resp.ReturnAllowanceDate = resp.RentalEndDate.AddDays(query.GraceDays())
		resp.DaysOverdue = query.Today().DaysSince(resp.ReturnAllowanceDate)
		resp.TotalAmount = totalAmount
		overdue = append(overdue, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return overdue, nil
}

// activeStatusNames is the union of the active statuses of every profile.
func activeStatusNames() []string {
	names := make([]string, 0)
	for _, p := range []order.Profile{order.FullProfile(), order.SimpleProfile()} {
		for _, s := range p.Statuses() {
			if p.IsActive(s) && !slices.Contains(names, s.String()) {
				names = append(names, s.String())
			}
		}
	}
	return names
}
