package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"options-dashboard/config"
	"options-dashboard/internal/model"
	"options-dashboard/internal/repository"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// PullSyncClient requests predictions on demand and merges each outcome,
// success or failure, into the cache.
type PullSyncClient interface {
	RequestPrediction(ctx context.Context, ticker model.Ticker) model.PredictionResult
	RequestPredictionAsync(ticker model.Ticker)
	RefreshAll(ctx context.Context, tickers []model.Ticker)
	Wait()
}

type pullSyncClient struct {
	cfg            *config.Config
	log            *logger.Logger
	predictionRepo repository.PredictionAPIRepository
	cache          PredictionCache
	now            func() time.Time
	inflight       sync.WaitGroup
}

func NewPullSyncClient(
	cfg *config.Config,
	log *logger.Logger,
	predictionRepo repository.PredictionAPIRepository,
	cache PredictionCache,
) PullSyncClient {
	return &pullSyncClient{
		cfg:            cfg,
		log:            log,
		predictionRepo: predictionRepo,
		cache:          cache,
		now:            time.Now,
	}
}

// RequestPrediction performs one request and merges the outcome. It returns
// the merged value. The request outlives a cancelled caller and is bounded by
// the upstream timeout only.
func (p *pullSyncClient) RequestPrediction(ctx context.Context, ticker model.Ticker) model.PredictionResult {
	reqCtx, cancel := upstreamContext(ctx, p.cfg)
	defer cancel()

	resp, err := p.predictionRepo.Predict(reqCtx, ticker)
	if errors.Is(err, context.Canceled) {
		// Abandoned request, not an upstream failure: keep the current entry.
		p.log.DebugContext(ctx, "Prediction request canceled", logger.StringField("ticker", ticker.String()))
		current, _ := p.cache.Get(ticker)
		return current
	}
	if err == nil {
		var result model.PredictionResult
		result, err = toPredictionResult(ticker, resp, p.now())
		if err == nil {
			p.cache.Merge(ticker, result)
			return result
		}
	}

	p.log.WarnContext(ctx, "Prediction request failed",
		logger.StringField("ticker", ticker.String()),
		logger.ErrorField(err))

	result := model.NewPredictionFailure(ticker, failureMessage(err), p.now())
	p.cache.Merge(ticker, result)
	return result
}

// RequestPredictionAsync fires a request in the background.
func (p *pullSyncClient) RequestPredictionAsync(ticker model.Ticker) {
	p.inflight.Add(1)
	utils.GoSafe(func() {
		defer p.inflight.Done()

		p.RequestPrediction(context.Background(), ticker)
	})
}

// RefreshAll sends one independent request per ticker. A failing ticker only
// produces its own error entry; the batch always runs to completion.
func (p *pullSyncClient) RefreshAll(ctx context.Context, tickers []model.Ticker) {
	p.log.InfoContext(ctx, "Refreshing predictions", logger.IntField("ticker_count", len(tickers)))

	g, gctx := errgroup.WithContext(ctx)
	if p.cfg.Upstream.MaxConcurrency > 0 {
		g.SetLimit(p.cfg.Upstream.MaxConcurrency)
	}
	for _, ticker := range tickers {
		if !utils.ShouldContinue(gctx, p.log) {
			break
		}
		g.Go(func() error {
			p.RequestPrediction(gctx, ticker)
			return nil
		})
	}
	_ = g.Wait()
}

// Wait blocks until every async request has finished.
func (p *pullSyncClient) Wait() {
	p.inflight.Wait()
}

// upstreamContext detaches an upstream call from the caller's cancellation and
// bounds it by the configured upstream timeout.
func upstreamContext(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	timeout := cfg.Upstream.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}
