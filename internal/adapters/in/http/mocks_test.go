package http_test

import (
	"context"

	"rental/internal/core/application/usecases/commands"
	"rental/internal/core/application/usecases/queries"
	"rental/internal/core/domain/model/audit"
	"rental/internal/core/domain/model/order"
	"rental/internal/core/domain/services"

	"github.com/stretchr/testify/mock"
)

type MockCreateOrderHandler struct {
	mock.Mock
}

func (m *MockCreateOrderHandler) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockApplyStatusChangeHandler struct {
	mock.Mock
}

func (m *MockApplyStatusChangeHandler) Handle(
	ctx context.Context, cmd commands.ApplyStatusChangeCommand,
) (services.StatusChangeResult, error) {
	args := m.Called(ctx, cmd)
	result, _ := args.Get(0).(services.StatusChangeResult)
	return result, args.Error(1)
}

type MockCollectDepositHandler struct {
	mock.Mock
}

func (m *MockCollectDepositHandler) Handle(ctx context.Context, cmd commands.CollectDepositCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockGetOrderHandler struct {
	mock.Mock
}

func (m *MockGetOrderHandler) Handle(ctx context.Context, query queries.GetOrderQuery) (*order.Order, error) {
	args := m.Called(ctx, query)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockGetStatusHistoryHandler struct {
	mock.Mock
}

func (m *MockGetStatusHistoryHandler) Handle(
	ctx context.Context, query queries.GetStatusHistoryQuery,
) ([]audit.StatusChange, error) {
	args := m.Called(ctx, query)
	records, _ := args.Get(0).([]audit.StatusChange)
	return records, args.Error(1)
}

type MockGetOverdueOrdersHandler struct {
	mock.Mock
}

func (m *MockGetOverdueOrdersHandler) Handle(
	ctx context.Context, query queries.GetOverdueOrdersQuery,
) ([]queries.GetOverdueOrdersQueryResponse, error) {
	args := m.Called(ctx, query)
	overdue, _ := args.Get(0).([]queries.GetOverdueOrdersQueryResponse)
	return overdue, args.Error(1)
}
