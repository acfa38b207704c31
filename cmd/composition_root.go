package cmd

import (
	"log/slog"
	"time"

	httpadapter "rental/internal/adapters/in/http"
	"rental/internal/adapters/out/postgres"
	"rental/internal/core/application/usecases/commands"
	"rental/internal/core/application/usecases/queries"
	"rental/internal/core/domain/services"
	"rental/internal/core/ports"
	"rental/internal/jobs"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	policy     Policy
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	usage      services.UsageCalculator
	pricing    services.PricingEngine
	publisher  ports.StatusChangePublisher
	now        func() time.Time
	logger     *slog.Logger
}

// NewCompositionRoot wires the application. publisher may be nil when events
// are disabled.
func NewCompositionRoot(
	config Config,
	policy Policy,
	gormDB *gorm.DB,
	publisher ports.StatusChangePublisher,
	logger *slog.Logger,
) (CompositionRoot, error) {
	usage, err := services.NewUsageCalculator(policy.GraceDays)
	if err != nil {
		return CompositionRoot{}, err
	}
	pricing, err := services.NewPricingEngine(policy.PricingPolicy)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		config:     config,
		policy:     policy,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		usage:      usage,
		pricing:    pricing,
		publisher:  publisher,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}, nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.pricing, c.policy.Profile, c.policy.TaxRatePct)
}

func (c *CompositionRoot) CreateApplyStatusChangeCommandHandler() commands.ApplyStatusChangeCommandHandler {
	var f commands.StatusChangeUoWFactory = FuncStatusChangeUoWFactory(func() commands.StatusChangeUoW {
		return c.uowFactory.Create()
	})
	coordinator := services.NewStatusChangeCoordinator(c.usage, c.pricing)
	return commands.NewApplyStatusChangeCommandHandler(f, coordinator, c.publisher, c.now, c.logger)
}

func (c *CompositionRoot) CreateCollectDepositCommandHandler() commands.CollectDepositCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCollectDepositCommandHandler(f, c.now)
}

// CreateGetOrderQueryHandler reads through a unit of work that never begins a
// transaction, so its repository uses the plain connection.
func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.uowFactory.Create().OrderRepository())
}

func (c *CompositionRoot) CreateGetStatusHistoryQueryHandler() queries.GetStatusHistoryQueryHandler {
	return queries.NewGetStatusHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOverdueOrdersQueryHandler() queries.GetOverdueOrdersQueryHandler {
	return queries.NewGetOverdueOrdersQueryHandler(c.gormDB)
}

// CreateHTTPServer builds the HTTP adapter with its metrics registered on reg.
func (c *CompositionRoot) CreateHTTPServer(reg *prometheus.Registry) *httpadapter.Server {
	createOrder := c.CreateCreateOrderCommandHandler()
	applyStatusChange := c.CreateApplyStatusChangeCommandHandler()
	collectDeposit := c.CreateCollectDepositCommandHandler()

	return httpadapter.NewServer(
		httpadapter.Handlers{
			CreateOrder:       &createOrder,
			ApplyStatusChange: &applyStatusChange,
			CollectDeposit:    &collectDeposit,
			GetOrder:          c.CreateGetOrderQueryHandler(),
			GetStatusHistory:  c.CreateGetStatusHistoryQueryHandler(),
			GetOverdueOrders:  c.CreateGetOverdueOrdersQueryHandler(),
		},
		httpadapter.Engine{
			Usage:          c.usage,
			Pricing:        c.pricing,
			DefaultProfile: c.policy.Profile,
			TaxRatePct:     c.policy.TaxRatePct,
		},
		c.now,
		httpadapter.NewMetrics(reg),
		c.logger,
	)
}

// CreateJobManager returns the background jobs enabled by the policy.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	var scheduled []jobs.ScheduledJob
	if c.policy.OverdueEnabled {
		scheduled = append(scheduled, jobs.NewOverdueOrdersJob(
			c.CreateGetOverdueOrdersQueryHandler(),
			c.policy.GraceDays,
			c.config.OverdueSchedule,
			c.now,
			c.logger,
		))
	}
	return jobs.NewJobManager(scheduled...)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncStatusChangeUoWFactory func() commands.StatusChangeUoW

func (f FuncStatusChangeUoWFactory) Create() commands.StatusChangeUoW {
	return f()
}
