package commands_test

import (
	"context"
	"testing"
	"time"

	"rental/internal/core/application/usecases/commands"
	"rental/internal/core/domain/model/audit"
	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order, expectedVersion int64) error {
	args := m.Called(ctx, o, expectedVersion)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockStatusChangeRepository struct{ mock.Mock }

func (m *MockStatusChangeRepository) Add(ctx context.Context, record audit.StatusChange) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) StatusChangeRepository() ports.StatusChangeRepository {
	args := m.Called()
	return args.Get(0).(ports.StatusChangeRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockStatusChangeUoWFactory struct{ mock.Mock }

func (m *MockStatusChangeUoWFactory) Create() commands.StatusChangeUoW {
	args := m.Called()
	return args.Get(0).(commands.StatusChangeUoW)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, record audit.StatusChange) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

var fixedNow = time.Date(2024, 1, 4, 16, 0, 0, 0, time.UTC)

func clock() time.Time {
	return fixedNow
}

func jan(d int) kernel.Date {
	return kernel.NewDateYMD(2024, time.January, d)
}

// storedOrder builds a full-profile order for 2024-01-01..05 priced at 10000,
// with a pending 5000 deposit, and walks it through the given statuses.
func storedOrder(t *testing.T, statuses ...order.Status) *order.Order {
	t.Helper()
	item, err := order.NewItem("marquee", 1, decimal.NewFromInt(2000), nil)
	require.NoError(t, err)
	deposit, err := order.NewPendingDeposit(decimal.NewFromInt(5000))
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), order.FullProfile(), order.Terms{
		RentalStartDate: jan(1),
		RentalEndDate:   jan(5),
		Items:           []order.Item{item},
		DiscountPct:     decimal.Zero,
		TaxRatePct:      decimal.Zero,
		ChargeableDays:  5,
	}, decimal.NewFromInt(10000), &deposit)
	require.NoError(t, err)

	for _, s := range statuses {
		o, err = o.WithStatusChange(order.StatusChange{To: s, ActualDate: jan(1)})
		require.NoError(t, err)
	}
	return o
}
