package service

import (
	"options-dashboard/config"
	"options-dashboard/internal/model"
	"options-dashboard/internal/repository"
	"options-dashboard/pkg/cache"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/session"
)

type Service struct {
	PredictionCache  PredictionCache
	TickerStore      TickerStore
	PullSyncClient   PullSyncClient
	PushSyncClient   PushSyncClient
	PortfolioEngine  PortfolioEngine
	WatchlistView    WatchlistView
	Dashboard        Dashboard
	Recorder         PredictionRecorder
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	credential *session.Credential,
	dial DialFunc,
) *Service {
	predictionCache := NewPredictionCache(inmemoryCache)
	pullSyncClient := NewPullSyncClient(cfg, log, repo.PredictionAPIRepo, predictionCache)

	// A re-added ticker starts without a prediction even if a late response
	// landed after it was removed.
	tickerStore := NewTickerStore(func(ticker model.Ticker) {
		predictionCache.Remove(ticker)
		pullSyncClient.RequestPredictionAsync(ticker)
	})

	pushSyncClient := NewPushSyncClient(cfg, log, credential, predictionCache, dial)
	portfolioEngine := NewPortfolioEngine(cfg, log, repo.PortfolioAPIRepo, repo.PredictionAPIRepo)
	watchlistView := NewWatchlistView(repo.SectorRepo)
	dashboard := NewDashboard(log, tickerStore, predictionCache, pullSyncClient, portfolioEngine, watchlistView, repo)

	recorder := NewPredictionRecorder(log, repo.PredictionHistoryRepo, 0)
	predictionCache.Subscribe(recorder.Record)

	return &Service{
		PredictionCache:  predictionCache,
		TickerStore:      tickerStore,
		PullSyncClient:   pullSyncClient,
		PushSyncClient:   pushSyncClient,
		PortfolioEngine:  portfolioEngine,
		WatchlistView:    watchlistView,
		Dashboard:        dashboard,
		Recorder:         recorder,
		SchedulerService: NewSchedulerService(cfg, log, dashboard),
	}
}
