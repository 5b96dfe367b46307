package service

import (
	"context"
	"testing"

	"options-dashboard/internal/model"
	"options-dashboard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSchedulerService_Execute(t *testing.T) {
	f := newDashboardFixture(t)
	f.prediction.On("Predict", mock.Anything, model.Ticker("AAPL")).Return(predictResponse("150"), nil)
	f.prediction.On("GetPrice", mock.Anything, model.Ticker("TSLA")).Return(dec("220"), nil)

	ctx := context.Background()
	_, _, _ = f.svc.Dashboard.AddTicker(ctx, "AAPL")
	f.svc.PullSyncClient.Wait()
	_, err := f.svc.PortfolioEngine.AddHolding(ctx, model.NewHolding{Ticker: "TSLA", Quantity: 1, PurchasePrice: dec("200")})
	require.NoError(t, err)

	require.NoError(t, f.svc.SchedulerService.Execute(ctx))

	f.prediction.AssertNumberOfCalls(t, "Predict", 2)
	f.prediction.AssertNumberOfCalls(t, "GetPrice", 1)
	assert.Equal(t, "220.00", f.svc.Dashboard.Snapshot().TotalValue.StringFixed(2))
}

func TestSchedulerService_RejectsOverlap(t *testing.T) {
	s := NewSchedulerService(testConfig(), logger.NewNop(), newDashboardFixture(t).svc.Dashboard).(*schedulerService)

	s.semaphore <- struct{}{}
	assert.Error(t, s.Execute(context.Background()))

	<-s.semaphore
	assert.NoError(t, s.Execute(context.Background()))
}

func TestSchedulerService_Start(t *testing.T) {
	t.Run("invalid expression", func(t *testing.T) {
		cfg := testConfig()
		cfg.Scheduler.RefreshCron = "every minute"
		s := NewSchedulerService(cfg, logger.NewNop(), newDashboardFixture(t).svc.Dashboard)
		assert.Error(t, s.Start(context.Background()))
	})

	t.Run("disabled", func(t *testing.T) {
		s := NewSchedulerService(testConfig(), logger.NewNop(), newDashboardFixture(t).svc.Dashboard)
		assert.NoError(t, s.Start(context.Background()))
	})

	t.Run("stops with context", func(t *testing.T) {
		cfg := testConfig()
		cfg.Scheduler.RefreshCron = "@every 1h"
		s := NewSchedulerService(cfg, logger.NewNop(), newDashboardFixture(t).svc.Dashboard)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Start(ctx) }()
		cancel()
		assert.NoError(t, <-done)
	})
}
