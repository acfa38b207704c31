package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"rental/internal/core/application/usecases/commands"
	"rental/internal/core/application/usecases/queries"
	"rental/internal/core/domain/model/audit"
	"rental/internal/core/domain/model/kernel"
	"rental/internal/core/domain/model/order"
	"rental/internal/core/domain/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type CreateOrderHandler interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
}

type ApplyStatusChangeHandler interface {
	Handle(ctx context.Context, cmd commands.ApplyStatusChangeCommand) (services.StatusChangeResult, error)
}

type CollectDepositHandler interface {
	Handle(ctx context.Context, cmd commands.CollectDepositCommand) (*order.Order, error)
}

type GetOrderHandler interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (*order.Order, error)
}

type GetStatusHistoryHandler interface {
	Handle(ctx context.Context, query queries.GetStatusHistoryQuery) ([]audit.StatusChange, error)
}

type GetOverdueOrdersHandler interface {
	Handle(ctx context.Context, query queries.GetOverdueOrdersQuery) ([]queries.GetOverdueOrdersQueryResponse, error)
}

// Handlers groups the use cases the server delegates to.
type Handlers struct {
	CreateOrder       CreateOrderHandler
	ApplyStatusChange ApplyStatusChangeHandler
	CollectDeposit    CollectDepositHandler
	GetOrder          GetOrderHandler
	GetStatusHistory  GetStatusHistoryHandler
	GetOverdueOrders  GetOverdueOrdersHandler
}

// Engine holds the pure calculators behind the calculation endpoints.
type Engine struct {
	Usage          services.UsageCalculator
	Pricing        services.PricingEngine
	DefaultProfile order.Profile
	TaxRatePct     decimal.Decimal
}

// Server exposes order use cases and stateless calculations over HTTP.
type Server struct {
	handlers Handlers
	engine   Engine
	now      func() time.Time
	metrics  *Metrics
	logger   *slog.Logger
}

// NewServer creates the HTTP server. metrics may be nil.
func NewServer(handlers Handlers, engine Engine, now func() time.Time, metrics *Metrics, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		engine:   engine,
		now:      now,
		metrics:  metrics,
		logger:   logger.With("component", "HTTPServer"),
	}
}

// RegisterRoutes mounts the API under /api/v1 and, with metrics, /metrics.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	if s.metrics != nil {
		e.Use(s.metrics.Middleware())
		e.GET("/metrics", s.metrics.Handler())
	}

	api := e.Group("/api/v1")
	api.POST("/transitions/validate", s.ValidateTransition)
	api.POST("/calculations/usage", s.CalculateUsage)
	api.POST("/calculations/pricing", s.CalculatePricing)
	api.POST("/calculations/order-totals", s.CalculateOrderTotals)
	api.POST("/deposits/collect", s.CollectDepositRecord)
	api.POST("/deposits/settle", s.SettleDepositRecord)

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/overdue", s.GetOverdueOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders/:id/history", s.GetStatusHistory)
	api.POST("/orders/:id/status", s.ApplyStatusChange)
	api.POST("/orders/:id/deposit/collect", s.CollectDeposit)
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID := kernel.NewUUID()
	if req.ID != "" {
		id, err := kernel.UUIDFromString(req.ID)
		if err != nil {
			return s.writeError(ctx, err, "")
		}
		orderID = id
	}

	start, startErr := kernel.ParseDate("rentalStartDate", req.RentalStartDate)
	end, endErr := kernel.ParseDate("rentalEndDate", req.RentalEndDate)
	items, itemsErr := itemsToDomain(req.Items)
	if err := errors.Join(startErr, endErr, itemsErr); err != nil {
		return s.writeError(ctx, err, "")
	}

	cmd, err := commands.NewCreateOrderCommand(orderID, req.Profile, start, end, items,
		req.DiscountPct, req.ChargeableDays, req.DepositAmount)
	if err != nil {
		return s.writeError(ctx, err, "")
	}

	created, err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, orderResponse(created))
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.writeError(ctx, err, "")
	}

	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return s.writeError(ctx, err, "")
	}

	found, err := s.handlers.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err, "Failed to retrieve order")
	}

	return ctx.JSON(http.StatusOK, orderResponse(found))
}

// GetStatusHistory handles GET /api/v1/orders/:id/history?limit=N.
func (s *Server) GetStatusHistory(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.writeError(ctx, err, "")
	}

	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return badRequest(ctx, "limit must be an integer")
		}
	}

	query, err := queries.NewGetStatusHistoryQuery(id, limit)
	if err != nil {
		return s.writeError(ctx, err, "")
	}

	records, err := s.handlers.GetStatusHistory.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err, "Failed to retrieve status history")
	}

	response := make([]HistoryEntryResponse, len(records))
	for i, r := range records {
		response[i] = historyEntryResponse(r)
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetOverdueOrders handles GET /api/v1/orders/overdue?date=YYYY-MM-DD.
// Without a date the server's current day is used.
func (s *Server) GetOverdueOrders(ctx echo.Context) error {
	today, err := kernel.ParseOptionalDate("date", ctx.QueryParam("date"))
	if err != nil {
		return s.writeError(ctx, err, "")
	}
	if today.IsZero() {
		today = kernel.NewDate(s.now())
	}

	query, err := queries.NewGetOverdueOrdersQuery(today, s.engine.Usage.GraceDays())
	if err != nil {
		return s.writeError(ctx, err, "")
	}

	overdue, err := s.handlers.GetOverdueOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.writeError(ctx, err, "Failed to retrieve overdue orders")
	}

	response := make([]OverdueOrderResponse, len(overdue))
	for i, o := range overdue {
		response[i] = overdueOrderResponse(o)
	}
	return ctx.JSON(http.StatusOK, response)
}

// ApplyStatusChange handles POST /api/v1/orders/:id/status.
func (s *Server) ApplyStatusChange(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.writeError(ctx, err, "")
	}

	var req StatusChangeRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	to, toErr := order.ParseStatus(req.Status)
	actualDate, dateErr := kernel.ParseOptionalDate("actualDate", req.ActualDate)
	if err = errors.Join(toErr, dateErr); err != nil {
		s.observeStatusChange(req.Status, err)
		return s.writeError(ctx, err, "")
	}

	var deduction *services.DepositDeduction
	if req.Deduction != nil {
		deduction = &services.DepositDeduction{
			Amount: req.Deduction.Amount,
			Reason: req.Deduction.Reason,
			Notes:  req.Deduction.Notes,
		}
	}

	cmd, err := commands.NewApplyStatusChangeCommand(id, to, actualDate, req.ChargeableDays, deduction, req.ExpectedVersion)
	if err != nil {
		s.observeStatusChange(req.Status, err)
		return s.writeError(ctx, err, "")
	}

	result, err := s.handlers.ApplyStatusChange.Handle(ctx.Request().Context(), cmd)
	s.observeStatusChange(req.Status, err)
	if err != nil {
		return s.writeError(ctx, err, "Failed to apply status change")
	}

	return ctx.JSON(http.StatusOK, statusChangeResponse(result))
}

// CollectDeposit handles POST /api/v1/orders/:id/deposit/collect.
func (s *Server) CollectDeposit(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.writeError(ctx, err, "")
	}

	var req OrderDepositCollectRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCollectDepositCommand(id, req.Amount, req.ExpectedVersion)
	if err != nil {
		return s.writeError(ctx, err, "")
	}

	updated, err := s.handlers.CollectDeposit.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.writeError(ctx, err, "Failed to collect deposit")
	}

	return ctx.JSON(http.StatusOK, orderResponse(updated))
}

func (s *Server) observeStatusChange(to string, err error) {
	if s.metrics == nil {
		return
	}
	if _, parseErr := order.ParseStatus(to); parseErr != nil {
		to = "unknown"
	}

	outcome := OutcomeApplied
	if err != nil {
		switch code := statusFor(err); {
		case code == http.StatusConflict:
			outcome = OutcomeConflict
		case code == http.StatusInternalServerError:
			outcome = OutcomeFailed
		default:
			outcome = OutcomeRejected
		}
	}
	s.metrics.ObserveStatusChange(to, outcome)
}

