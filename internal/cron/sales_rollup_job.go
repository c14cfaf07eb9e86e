package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/dmarceau/cartline-backend/pkg/logger"
)

// salesRollupDays is how many trailing days each run recomputes. Covering
// more than one day lets a run heal gaps left by a worker outage and pick
// up orders placed near midnight.
const salesRollupDays = 2

type SalesRollupJobParams struct {
	Logger    *logger.Logger
	Analytics salesRollupService
	Days      int
}

type salesRollupService interface {
	RollupDailySales(ctx context.Context, day time.Time) (int, error)
}

func NewSalesRollupJob(params SalesRollupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Analytics == nil {
		return nil, fmt.Errorf("analytics service required")
	}
	days := params.Days
	if days <= 0 {
		days = salesRollupDays
	}
	return &salesRollupJob{
		logg:      params.Logger,
		analytics: params.Analytics,
		days:      days,
		now:       time.Now,
	}, nil
}

type salesRollupJob struct {
	logg      *logger.Logger
	analytics salesRollupService
	days      int
	now       func() time.Time
}

func (j *salesRollupJob) Name() string { return "sales-metrics-rollup" }

func (j *salesRollupJob) Run(ctx context.Context) error {
	today := j.now().UTC()
	var errs []error
	for offset := 0; offset < j.days; offset++ {
		day := today.AddDate(0, 0, -offset)
		sellers, err := j.analytics.RollupDailySales(ctx, day)
		if err != nil {
			errs = append(errs, fmt.Errorf("rollup %s: %w", day.Format("2006-01-02"), err))
			continue
		}
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"day":     day.Format("2006-01-02"),
			"sellers": sellers,
		})
		j.logg.Info(logCtx, "daily sales rollup complete")
	}
	return multierr.Combine(errs...)
}
