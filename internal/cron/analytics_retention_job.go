package cron

import (
	"context"
	"fmt"

	"github.com/dmarceau/cartline-backend/pkg/logger"
)

const analyticsRetentionDays = 90

type AnalyticsRetentionJobParams struct {
	Logger    *logger.Logger
	Analytics analyticsRetentionService
	Retention int
}

type analyticsRetentionService interface {
	PurgeOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

func NewAnalyticsRetentionJob(params AnalyticsRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Analytics == nil {
		return nil, fmt.Errorf("analytics service required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = analyticsRetentionDays
	}
	return &analyticsRetentionJob{
		logg:      params.Logger,
		analytics: params.Analytics,
		retention: retention,
	}, nil
}

type analyticsRetentionJob struct {
	logg      *logger.Logger
	analytics analyticsRetentionService
	retention int
}

func (j *analyticsRetentionJob) Name() string { return "analytics-retention" }

func (j *analyticsRetentionJob) Run(ctx context.Context) error {
	deleted, err := j.analytics.PurgeOldEvents(ctx, j.retention)
	if err != nil {
		return fmt.Errorf("analytics retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "analytics event cleanup complete")
	return nil
}
