package service

import (
	"context"

	"options-dashboard/internal/model"
	"options-dashboard/internal/repository"
	"options-dashboard/pkg/logger"
)

// PredictionRecorder keeps a history row for every merged result. Record is
// registered as a cache listener and never blocks the merge.
type PredictionRecorder interface {
	Record(result model.PredictionResult)
	Run(ctx context.Context)
}

type predictionRecorder struct {
	log         *logger.Logger
	historyRepo repository.PredictionHistoryRepository
	queue       chan model.PredictionResult
}

func NewPredictionRecorder(log *logger.Logger, historyRepo repository.PredictionHistoryRepository, bufferSize int) PredictionRecorder {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &predictionRecorder{
		log:         log,
		historyRepo: historyRepo,
		queue:       make(chan model.PredictionResult, bufferSize),
	}
}

func (r *predictionRecorder) Record(result model.PredictionResult) {
	select {
	case r.queue <- result:
	default:
		r.log.Warn("Prediction history queue full, dropping result", logger.StringField("ticker", result.Ticker.String()))
	}
}

// Run writes queued results until ctx is cancelled.
func (r *predictionRecorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case result := <-r.queue:
			if err := r.historyRepo.Create(ctx, result); err != nil {
				r.log.ErrorContext(ctx, "Failed to record prediction",
					logger.StringField("ticker", result.Ticker.String()),
					logger.ErrorField(err))
			}
		}
	}
}
