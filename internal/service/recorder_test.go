package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"options-dashboard/internal/model"
	"options-dashboard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPredictionRecorder_WritesMergedResults(t *testing.T) {
	var written atomic.Int32
	count := func(mock.Arguments) { written.Add(1) }

	history := new(MockPredictionHistoryRepository)
	history.On("Create", mock.Anything, mock.MatchedBy(func(r model.PredictionResult) bool { return r.Ticker == "AAPL" })).Run(count).Return(nil)
	history.On("Create", mock.Anything, mock.MatchedBy(func(r model.PredictionResult) bool { return r.Ticker == "TSLA" })).Run(count).Return(errors.New("db down"))

	recorder := NewPredictionRecorder(logger.NewNop(), history, 10)
	c := newTestCache()
	c.Subscribe(recorder.Record)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go recorder.Run(ctx)

	c.Merge("AAPL", success("AAPL", "150"))
	c.Merge("TSLA", model.NewPredictionFailure("TSLA", "", time.Now()))

	assert.Eventually(t, func() bool {
		return written.Load() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestPredictionRecorder_DropsWhenFull(t *testing.T) {
	history := new(MockPredictionHistoryRepository)
	recorder := NewPredictionRecorder(logger.NewNop(), history, 1)

	recorder.Record(success("AAPL", "150"))
	recorder.Record(success("TSLA", "220"))

	history.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
