package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "rental/internal/adapters/in/http"
	"rental/internal/core/application/usecases/commands"
	"rental/internal/core/application/usecases/queries"
	"rental/internal/core/domain/model/audit"
	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/core/domain/services"
	"rental/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(d int) kernel.Date {
	return kernel.NewDateYMD(2024, time.January, d)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func newTestServer(t *testing.T, handlers httpadapter.Handlers) *echo.Echo {
	t.Helper()
	usage, err := services.NewUsageCalculator(1)
	require.NoError(t, err)
	pricing, err := services.NewPricingEngine(services.DefaultPricingPolicy())
	require.NoError(t, err)

	server := httpadapter.NewServer(
		handlers,
		httpadapter.Engine{
			Usage:          usage,
			Pricing:        pricing,
			DefaultProfile: order.FullProfile(),
			TaxRatePct:     dec("16"),
		},
		func() time.Time { return fixedNow },
		httpadapter.NewMetrics(prometheus.NewRegistry()),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	e := echo.New()
	server.RegisterRoutes(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// deliveredOrder is a full-profile order for 2024-01-01..05 priced at 10000,
// delivered on the first day and carrying no deposit.
func deliveredOrder(t *testing.T) *order.Order {
	t.Helper()
	item, err := order.NewItem("marquee", 1, dec("2000"), nil)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), order.FullProfile(), order.Terms{
		RentalStartDate: day(1),
		RentalEndDate:   day(5),
		Items:           []order.Item{item},
		DiscountPct:     decimal.Zero,
		TaxRatePct:      decimal.Zero,
		ChargeableDays:  5,
	}, dec("10000"), nil)
	require.NoError(t, err)

	usage, err := services.NewUsageCalculator(1)
	require.NoError(t, err)
	pricing, err := services.NewPricingEngine(services.DefaultPricingPolicy())
	require.NoError(t, err)
	coordinator := services.NewStatusChangeCoordinator(usage, pricing)
	for _, step := range []services.StatusChangeRequest{
		{To: order.Confirmed, At: fixedNow},
		{To: order.OutForDelivery, At: fixedNow},
		{To: order.Delivered, ActualDate: day(1), At: fixedNow},
	} {
		res, planErr := coordinator.Plan(o, step)
		require.NoError(t, planErr)
		o = res.Order
	}
	return o
}

func TestServer_ValidateTransition(t *testing.T) {
	e := newTestServer(t, httpadapter.Handlers{})

	testCases := []struct {
		name        string
		body        map[string]string
		allowed     bool
		reason      string
		allowedNext []string
	}{
		{
			name:        "allowed in full profile",
			body:        map[string]string{"currentStatus": "pending", "requestedStatus": "confirmed"},
			allowed:     true,
			allowedNext: []string{"confirmed", "cancelled"},
		},
		{
			name:        "backwards move is refused",
			body:        map[string]string{"currentStatus": "delivered", "requestedStatus": "pending"},
			reason:      "pending is not reachable from delivered",
			allowedNext: []string{"in_use", "return_scheduled", "completed", "cancelled"},
		},
		{
			name:        "terminal status has no exits",
			body:        map[string]string{"currentStatus": "completed", "requestedStatus": "cancelled"},
			reason:      "completed is a terminal status",
			allowedNext: []string{},
		},
		{
			name: "status outside the simple profile",
			body: map[string]string{
				"profile": "simple", "currentStatus": "confirmed", "requestedStatus": "out_for_delivery",
			},
			reason:      "out_for_delivery is not a status of the simple profile",
			allowedNext: []string{"in_progress", "cancelled"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/api/v1/transitions/validate", tc.body)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decode[httpadapter.TransitionResponse](t, rec)
			assert.Equal(t, tc.allowed, resp.Allowed)
			assert.Equal(t, tc.reason, resp.Reason)
			assert.Equal(t, tc.allowedNext, resp.AllowedNext)
		})
	}

	t.Run("unknown status is a bad request", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/transitions/validate",
			map[string]string{"currentStatus": "shipped", "requestedStatus": "confirmed"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown profile is a bad request", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/transitions/validate",
			map[string]string{"profile": "express", "currentStatus": "pending", "requestedStatus": "confirmed"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_CalculateUsage(t *testing.T) {
	e := newTestServer(t, httpadapter.Handlers{})

	t.Run("early return", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/calculations/usage", map[string]any{
			"plannedStart": "2024-01-01", "plannedEnd": "2024-01-05", "actualDate": "2024-01-04",
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[httpadapter.UsageResponse](t, rec)
		assert.Equal(t, httpadapter.UsageResponse{
			PlannedDays:         5,
			ActualDays:          4,
			ReturnAllowanceDate: "2024-01-06",
			IsEarlyReturn:       true,
		}, resp)
	})

	t.Run("grace days override", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/calculations/usage", map[string]any{
			"plannedStart": "2024-01-01", "plannedEnd": "2024-01-05", "actualDate": "2024-01-07", "graceDays": 3,
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[httpadapter.UsageResponse](t, rec)
		assert.True(t, resp.IsWithinGrace)
		assert.Equal(t, "2024-01-08", resp.ReturnAllowanceDate)
	})

	t.Run("malformed date", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/calculations/usage", map[string]any{
			"plannedStart": "01/01/2024", "plannedEnd": "2024-01-05", "actualDate": "2024-01-04",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative grace days", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/calculations/usage", map[string]any{
			"plannedStart": "2024-01-01", "plannedEnd": "2024-01-05", "actualDate": "2024-01-04", "graceDays": -1,
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_CalculatePricing(t *testing.T) {
	e := newTestServer(t, httpadapter.Handlers{})

	t.Run("late return", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/calculations/pricing", map[string]any{
			"originalAmount": 10000, "plannedDays": 5, "actualDays": 7, "isLateReturn": true, "extraDays": 1,
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[httpadapter.PricingResponse](t, rec)
		assertDecimal(t, "2000", resp.DailyRate)
		assertDecimal(t, "13000", resp.AdjustedAmount)
		assertDecimal(t, "0", resp.RefundAmount)
		assertDecimal(t, "3000", resp.PenaltyAmount)
		assert.Contains(t, resp.AdjustmentReason, "Late return")
	})

	t.Run("zero planned days", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/calculations/pricing", map[string]any{
			"originalAmount": 10000, "plannedDays": 0, "actualDays": 0,
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/calculations/pricing", "{")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_CalculateOrderTotals(t *testing.T) {
	e := newTestServer(t, httpadapter.Handlers{})
	items := []map[string]any{{"productId": "speaker", "quantity": 2, "unitPrice": 1000}}

	t.Run("configured tax rate", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/calculations/order-totals", map[string]any{
			"items": items, "rentalStartDate": "2024-01-01", "rentalEndDate": "2024-01-03", "discountPct": 10,
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[httpadapter.OrderTotalsResponse](t, rec)
		assert.Equal(t, 3, resp.ChargeableDays)
		assertDecimal(t, "6000", resp.Subtotal)
		assertDecimal(t, "600", resp.DiscountAmount)
		assertDecimal(t, "864", resp.TaxAmount)
		assertDecimal(t, "6264", resp.TotalAmount)
	})

	t.Run("explicit tax rate and override", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/calculations/order-totals", map[string]any{
			"items": items, "rentalStartDate": "2024-01-01", "rentalEndDate": "2024-01-03",
			"discountPct": 0, "taxRatePct": 0, "chargeableDays": 1,
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[httpadapter.OrderTotalsResponse](t, rec)
		assert.Equal(t, 1, resp.ChargeableDays)
		assertDecimal(t, "2000", resp.TotalAmount)
	})

	t.Run("no items", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/calculations/order-totals", map[string]any{
			"items": []any{}, "rentalStartDate": "2024-01-01", "rentalEndDate": "2024-01-03",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid item", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/calculations/order-totals", map[string]any{
			"items":           []map[string]any{{"productId": "speaker", "quantity": 0, "unitPrice": 1000}},
			"rentalStartDate": "2024-01-01", "rentalEndDate": "2024-01-03",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_DepositRecords(t *testing.T) {
	e := newTestServer(t, httpadapter.Handlers{})

	t.Run("collect while active", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/deposits/collect", map[string]any{
			"orderStatus": "in_use",
			"deposit":     map[string]any{"amount": 5000, "status": "pending"},
			"amount":      5000,
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[httpadapter.DepositRecord](t, rec)
		assert.Equal(t, "collected", resp.Status)
		assertDecimal(t, "5000", resp.Amount)
		require.NotNil(t, resp.CollectedAt)
		assert.True(t, fixedNow.Equal(*resp.CollectedAt))
	})

	t.Run("collect before delivery", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/deposits/collect", map[string]any{
			"orderStatus": "confirmed",
			"deposit":     map[string]any{"amount": 5000, "status": "pending"},
			"amount":      5000,
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("collect in simple profile", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/deposits/collect", map[string]any{
			"profile":     "simple",
			"orderStatus": "in_progress",
			"deposit":     map[string]any{"amount": 300, "status": "pending"},
			"amount":      300,
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "collected", decode[httpadapter.DepositRecord](t, rec).Status)
	})

	t.Run("settle partial deduction", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/deposits/settle", map[string]any{
			"orderStatus":     "completed",
			"deposit":         map[string]any{"amount": 5000, "status": "collected", "collectedAt": "2024-01-02T10:00:00Z"},
			"deductionAmount": 1200.5,
			"deductionReason": "torn canvas",
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[httpadapter.DepositRecord](t, rec)
		assert.Equal(t, "refunded", resp.Status)
		assertDecimal(t, "3799.5", resp.RefundAmount)
		assert.Equal(t, "torn canvas", resp.DeductionReason)
	})

	t.Run("settle over-deduction forfeits", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/deposits/settle", map[string]any{
			"orderStatus":     "completed",
			"deposit":         map[string]any{"amount": 5000, "status": "collected", "collectedAt": "2024-01-02T10:00:00Z"},
			"deductionAmount": 6000,
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[httpadapter.DepositRecord](t, rec)
		assert.Equal(t, "forfeited", resp.Status)
		assertDecimal(t, "0", resp.RefundAmount)
		assertDecimal(t, "6000", resp.DeductionAmount)
	})

	t.Run("collected record without collection time", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodPost, "/api/v1/deposits/settle", map[string]any{
			"orderStatus":     "completed",
			"deposit":         map[string]any{"amount": 5000, "status": "collected"},
			"deductionAmount": 0,
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_CreateOrder(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		created := deliveredOrder(t)
		handler := &MockCreateOrderHandler{}
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
			return cmd.ProfileName() == "full" &&
				len(cmd.Items()) == 1 &&
				cmd.RentalEndDate().Equal(day(5)) &&
				cmd.DepositAmount() != nil && cmd.DepositAmount().Equal(dec("5000"))
		})).Return(created, nil)
		e := newTestServer(t, httpadapter.Handlers{CreateOrder: handler})

		rec := doJSON(t, e, http.MethodPost, "/api/v1/orders", map[string]any{
			"profile":         "full",
			"rentalStartDate": "2024-01-01",
			"rentalEndDate":   "2024-01-05",
			"items":           []map[string]any{{"productId": "marquee", "quantity": 1, "unitPrice": 2000}},
			"discountPct":     0,
			"depositAmount":   5000,
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		resp := decode[httpadapter.OrderResponse](t, rec)
		assert.Equal(t, created.ID().String(), resp.ID)
		assert.Equal(t, "delivered", resp.Status)
		assert.Equal(t, "2024-01-01", resp.PickedUpOn)
		assert.Empty(t, resp.ReturnedOn)
		assertDecimal(t, "10000", resp.TotalAmount)
		assert.Equal(t, []string{"in_use", "return_scheduled", "completed", "cancelled"}, resp.AllowedTransitions)
		handler.AssertExpectations(t)
	})

	t.Run("end before start never reaches the handler", func(t *testing.T) {
		handler := &MockCreateOrderHandler{}
		e := newTestServer(t, httpadapter.Handlers{CreateOrder: handler})

		rec := doJSON(t, e, http.MethodPost, "/api/v1/orders", map[string]any{
			"rentalStartDate": "2024-01-05",
			"rentalEndDate":   "2024-01-01",
			"items":           []map[string]any{{"productId": "marquee", "quantity": 1, "unitPrice": 2000}},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("storage failure hides details", func(t *testing.T) {
		handler := &MockCreateOrderHandler{}
		handler.On("Handle", mock.Anything, mock.Anything).Return(nil, assert.AnError)
		e := newTestServer(t, httpadapter.Handlers{CreateOrder: handler})

		rec := doJSON(t, e, http.MethodPost, "/api/v1/orders", map[string]any{
			"rentalStartDate": "2024-01-01",
			"rentalEndDate":   "2024-01-05",
			"items":           []map[string]any{{"productId": "marquee", "quantity": 1, "unitPrice": 2000}},
		})

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decode[httpadapter.ErrorResponse](t, rec)
		assert.Equal(t, "Failed to create order", resp.Message)
	})
}

func TestServer_GetOrder(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		o := deliveredOrder(t)
		handler := &MockGetOrderHandler{}
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
			return q.OrderID().IsEqual(o.ID())
		})).Return(o, nil)
		e := newTestServer(t, httpadapter.Handlers{GetOrder: handler})

		rec := doJSON(t, e, http.MethodGet, "/api/v1/orders/"+o.ID().String(), nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, int64(4), decode[httpadapter.OrderResponse](t, rec).Version)
	})

	t.Run("not found", func(t *testing.T) {
		handler := &MockGetOrderHandler{}
		handler.On("Handle", mock.Anything, mock.Anything).
			Return(nil, errs.NewObjectNotFoundError("order", "missing"))
		e := newTestServer(t, httpadapter.Handlers{GetOrder: handler})

		rec := doJSON(t, e, http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String(), nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		e := newTestServer(t, httpadapter.Handlers{})

		rec := doJSON(t, e, http.MethodGet, "/api/v1/orders/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_ApplyStatusChange(t *testing.T) {
	t.Run("completion returns usage and pricing", func(t *testing.T) {
		o := deliveredOrder(t)
		usage, err := services.NewUsageCalculator(1)
		require.NoError(t, err)
		pricing, err := services.NewPricingEngine(services.DefaultPricingPolicy())
		require.NoError(t, err)
		result, err := services.NewStatusChangeCoordinator(usage, pricing).Plan(o, services.StatusChangeRequest{
			To: order.Completed, ActualDate: day(4), At: fixedNow,
		})
		require.NoError(t, err)

		handler := &MockApplyStatusChangeHandler{}
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ApplyStatusChangeCommand) bool {
			return cmd.OrderID().IsEqual(o.ID()) &&
				cmd.To() == order.Completed &&
				cmd.ActualDate().Equal(day(4)) &&
				cmd.ExpectedVersion() != nil && *cmd.ExpectedVersion() == 4
		})).Return(result, nil)
		e := newTestServer(t, httpadapter.Handlers{ApplyStatusChange: handler})

		rec := doJSON(t, e, http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/status", map[string]any{
			"status": "completed", "actualDate": "2024-01-04", "expectedVersion": 4,
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[httpadapter.StatusChangeResponse](t, rec)
		assert.Equal(t, "completed", resp.Order.Status)
		assert.Equal(t, "2024-01-04", resp.Order.ReturnedOn)
		require.NotNil(t, resp.Usage)
		assert.Equal(t, 4, resp.Usage.ActualDays)
		require.NotNil(t, resp.Pricing)
		assertDecimal(t, "8000", resp.Pricing.AdjustedAmount)
		assertDecimal(t, "2000", resp.Pricing.RefundAmount)
		assert.Nil(t, resp.Deposit)
	})

	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid transition", errs.NewInvalidTransitionError("completed", "pending", "completed is a terminal status"), http.StatusUnprocessableEntity},
		{"lost race", errs.NewConflictError("order", "x", 3), http.StatusConflict},
		{"missing order", errs.NewObjectNotFoundError("order", "x"), http.StatusNotFound},
		{"missing actual date", errs.NewValueIsRequiredError("actualDate"), http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := &MockApplyStatusChangeHandler{}
			handler.On("Handle", mock.Anything, mock.Anything).Return(services.StatusChangeResult{}, tc.err)
			e := newTestServer(t, httpadapter.Handlers{ApplyStatusChange: handler})

			rec := doJSON(t, e, http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/status",
				map[string]any{"status": "completed"})

			assert.Equal(t, tc.expected, rec.Code)
		})
	}

	t.Run("unknown status never reaches the handler", func(t *testing.T) {
		handler := &MockApplyStatusChangeHandler{}
		e := newTestServer(t, httpadapter.Handlers{ApplyStatusChange: handler})

		rec := doJSON(t, e, http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/status",
			map[string]any{"status": "returned"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("deduction is passed through", func(t *testing.T) {
		handler := &MockApplyStatusChangeHandler{}
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ApplyStatusChangeCommand) bool {
			d := cmd.Deduction()
			return d != nil && d.Amount.Equal(dec("250")) && d.Reason == "scratches" &&
				cmd.ChargeableDaysOverride() != nil && *cmd.ChargeableDaysOverride() == 3
		})).Return(services.StatusChangeResult{}, errs.NewInvalidStateError("deposit", "settle", "pending"))
		e := newTestServer(t, httpadapter.Handlers{ApplyStatusChange: handler})

		rec := doJSON(t, e, http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/status", map[string]any{
			"status":         "completed",
			"actualDate":     "2024-01-04",
			"chargeableDays": 3,
			"deduction":      map[string]any{"amount": 250, "reason": "scratches"},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		handler.AssertExpectations(t)
	})
}

func TestServer_CollectDeposit(t *testing.T) {
	t.Run("invalid state", func(t *testing.T) {
		handler := &MockCollectDepositHandler{}
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CollectDepositCommand) bool {
			return cmd.Amount().Equal(dec("5000")) && cmd.ExpectedVersion() == nil
		})).Return(nil, errs.NewInvalidStateError("deposit", "collect", "collected"))
		e := newTestServer(t, httpadapter.Handlers{CollectDeposit: handler})

		rec := doJSON(t, e, http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/deposit/collect",
			map[string]any{"amount": 5000})

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		handler.AssertExpectations(t)
	})

	t.Run("negative amount", func(t *testing.T) {
		handler := &MockCollectDepositHandler{}
		e := newTestServer(t, httpadapter.Handlers{CollectDeposit: handler})

		rec := doJSON(t, e, http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/deposit/collect",
			map[string]any{"amount": -1})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})
}

func TestServer_GetStatusHistory(t *testing.T) {
	orderID := kernel.NewUUID()

	t.Run("newest first with calculation", func(t *testing.T) {
		records := []audit.StatusChange{
			{
				ID:         kernel.NewUUID(),
				OrderID:    orderID,
				FromStatus: order.Delivered,
				ToStatus:   order.Completed,
				ActualDate: day(4),
				Calculation: &audit.Calculation{
					OriginalAmount: dec("10000"), PlannedDays: 5, ActualDays: 4,
					ReturnAllowanceDate: day(6), IsEarlyReturn: true,
					DailyRate: dec("2000"), AdjustedAmount: dec("8000"), RefundAmount: dec("2000"),
					PenaltyAmount: decimal.Zero, AdjustmentReason: "Early return: adjusted for usage (4 of 5 days)",
				},
				TotalAmount: dec("8000"),
				Version:     5,
				ChangedAt:   fixedNow,
			},
		}
		handler := &MockGetStatusHistoryHandler{}
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetStatusHistoryQuery) bool {
			return q.OrderID().IsEqual(orderID) && q.Limit() == 10
		})).Return(records, nil)
		e := newTestServer(t, httpadapter.Handlers{GetStatusHistory: handler})

		rec := doJSON(t, e, http.MethodGet, "/api/v1/orders/"+orderID.String()+"/history?limit=10", nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[[]httpadapter.HistoryEntryResponse](t, rec)
		require.Len(t, resp, 1)
		assert.Equal(t, "delivered", resp[0].FromStatus)
		assert.Equal(t, "completed", resp[0].ToStatus)
		require.NotNil(t, resp[0].Calculation)
		assert.Equal(t, "2024-01-06", resp[0].Calculation.ReturnAllowanceDate)
		assertDecimal(t, "8000", resp[0].Calculation.AdjustedAmount)
		assert.Nil(t, resp[0].Deposit)
	})

	t.Run("limit must be a number", func(t *testing.T) {
		e := newTestServer(t, httpadapter.Handlers{})

		rec := doJSON(t, e, http.MethodGet, "/api/v1/orders/"+orderID.String()+"/history?limit=ten", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("limit above maximum", func(t *testing.T) {
		e := newTestServer(t, httpadapter.Handlers{})

		rec := doJSON(t, e, http.MethodGet, "/api/v1/orders/"+orderID.String()+"/history?limit=501", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_GetOverdueOrders(t *testing.T) {
	overdueID := kernel.NewUUID()
	handler := &MockGetOverdueOrdersHandler{}
	handler.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOverdueOrdersQuery) bool {
		return q.Today().Equal(day(10)) && q.GraceDays() == 1
	})).Return([]queries.GetOverdueOrdersQueryResponse{
		{
			ID:                  overdueID,
			Profile:             "full",
			Status:              "in_use",
			RentalEndDate:       day(5),
			ReturnAllowanceDate: day(6),
			DaysOverdue:         4,
			TotalAmount:         dec("10000"),
		},
	}, nil)
	e := newTestServer(t, httpadapter.Handlers{GetOverdueOrders: handler})

	t.Run("defaults to today", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/api/v1/orders/overdue", nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[[]httpadapter.OverdueOrderResponse](t, rec)
		require.Len(t, resp, 1)
		assert.Equal(t, overdueID.String(), resp[0].ID)
		assert.Equal(t, 4, resp[0].DaysOverdue)
		assert.Equal(t, "2024-01-06", resp[0].ReturnAllowanceDate)
	})

	t.Run("explicit date", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/api/v1/orders/overdue?date=2024-01-10", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed date", func(t *testing.T) {
		rec := doJSON(t, e, http.MethodGet, "/api/v1/orders/overdue?date=yesterday", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Metrics(t *testing.T) {
	getOrder := &MockGetOrderHandler{}
	getOrder.On("Handle", mock.Anything, mock.Anything).Return(nil, errs.NewObjectNotFoundError("order", "x"))
	applyChange := &MockApplyStatusChangeHandler{}
	applyChange.On("Handle", mock.Anything, mock.Anything).
		Return(services.StatusChangeResult{}, errs.NewConflictError("order", "x", 2))
	e := newTestServer(t, httpadapter.Handlers{GetOrder: getOrder, ApplyStatusChange: applyChange})

	doJSON(t, e, http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String(), nil)
	doJSON(t, e, http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/status",
		map[string]any{"status": "cancelled"})

	rec := doJSON(t, e, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `rental_http_requests_total{method="GET",path="/api/v1/orders/:id",status="404"} 1`)
	assert.Contains(t, body, `rental_order_status_changes_total{outcome="conflict",to="cancelled"} 1`)
	assert.Contains(t, body, "rental_http_request_duration_seconds_bucket")
}
