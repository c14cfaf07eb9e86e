package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmarceau/cartline-backend/pkg/logger"
)

type fakeRollupService struct {
	days []time.Time
	errs map[string]error
}

func (f *fakeRollupService) RollupDailySales(_ context.Context, day time.Time) (int, error) {
	f.days = append(f.days, day)
	if err, ok := f.errs[day.Format("2006-01-02")]; ok {
		return 0, err
	}
	return 3, nil
}

func newSalesRollupJob(t *testing.T, svc *fakeRollupService) *salesRollupJob {
	t.Helper()
	jobIface, err := NewSalesRollupJob(SalesRollupJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Analytics: svc,
	})
	if err != nil {
		t.Fatalf("NewSalesRollupJob: %v", err)
	}
	job, ok := jobIface.(*salesRollupJob)
	if !ok {
		t.Fatalf("expected salesRollupJob, got %T", jobIface)
	}
	return job
}

func TestSalesRollupJobCoversTrailingDays(t *testing.T) {
	now := time.Date(2026, 2, 10, 3, 0, 0, 0, time.UTC)
	svc := &fakeRollupService{}
	job := newSalesRollupJob(t, svc)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(svc.days) != salesRollupDays {
		t.Fatalf("expected %d rollups, got %d", salesRollupDays, len(svc.days))
	}
	if got := svc.days[0].Format("2006-01-02"); got != "2026-02-10" {
		t.Fatalf("expected first rollup for today, got %s", got)
	}
	if got := svc.days[1].Format("2006-01-02"); got != "2026-02-09" {
		t.Fatalf("expected second rollup for yesterday, got %s", got)
	}
}

func TestSalesRollupJobContinuesPastFailedDay(t *testing.T) {
	now := time.Date(2026, 2, 10, 3, 0, 0, 0, time.UTC)
	svc := &fakeRollupService{errs: map[string]error{"2026-02-10": errors.New("boom")}}
	job := newSalesRollupJob(t, svc)
	job.now = func() time.Time { return now }

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(svc.days) != salesRollupDays {
		t.Fatalf("expected all days attempted, got %d", len(svc.days))
	}
}
