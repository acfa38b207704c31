package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rental/internal/core/application/usecases/queries"
	"rental/internal/core/domain/model/kernel"

	"github.com/robfig/cron/v3"
)

// DefaultOverdueSchedule runs the overdue scan at the top of every hour.
const DefaultOverdueSchedule = "0 0 * * * *"

// OverdueOrdersFinder is the query the job runs on every tick.
type OverdueOrdersFinder interface {
	Handle(ctx context.Context, query queries.GetOverdueOrdersQuery) ([]queries.GetOverdueOrdersQueryResponse, error)
}

// OverdueOrdersJob periodically logs orders whose goods should already be
// back. It only reports; statuses are changed by the status change command.
type OverdueOrdersJob struct {
	finder    OverdueOrdersFinder
	graceDays int
	schedule  string
	now       func() time.Time
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewOverdueOrdersJob creates the job. An empty schedule means DefaultOverdueSchedule.
func NewOverdueOrdersJob(
	finder OverdueOrdersFinder,
	graceDays int,
	schedule string,
	now func() time.Time,
	logger *slog.Logger,
) *OverdueOrdersJob {
	if schedule == "" {
		schedule = DefaultOverdueSchedule
	}
	return &OverdueOrdersJob{
		finder:    finder,
		graceDays: graceDays,
		schedule:  schedule,
		now:       now,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "overdue_orders_job"),
	}
}

func (j *OverdueOrdersJob) Name() string {
	return "overdue orders"
}

// Start registers the scan on the configured schedule.
func (j *OverdueOrdersJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Overdue orders job failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", j.schedule, err)
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Overdue orders job started", "schedule", j.schedule)
	return nil
}

// Stop waits for a running scan to finish.
func (j *OverdueOrdersJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Overdue orders job stopped")
}

// RunOnce scans for overdue orders as of today and logs each one.
func (j *OverdueOrdersJob) RunOnce(ctx context.Context) ([]queries.GetOverdueOrdersQueryResponse, error) {
	query, err := queries.NewGetOverdueOrdersQuery(kernel.NewDate(j.now()), j.graceDays)
	if err != nil {
		return nil, err
	}

	overdue, err := j.finder.Handle(ctx, query)
	if err != nil {
		return nil, err
	}

	for _, o := range overdue {
		j.logger.WarnContext(ctx, "Order is overdue",
			"orderID", o.ID.String(),
			"status", o.Status,
			"rentalEndDate", o.RentalEndDate.String(),
			"daysOverdue", o.DaysOverdue,
		)
	}
	j.logger.InfoContext(ctx, "Overdue orders scan finished",
		"today", query.Today().String(),
		"count", len(overdue),
	)
	return overdue, nil
}
