package service

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"sync"

	"options-dashboard/internal/model"
	"options-dashboard/internal/repository"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/utils"

	"github.com/google/uuid"
)

// Dashboard is the surface the presentation layer talks to: read accessors
// over the caches and the user actions that mutate them.
type Dashboard interface {
	LoadWatchlist(ctx context.Context) error

	Tracked() []model.Ticker
	Prediction(symbol string) (model.PredictionResult, error)
	Predictions() []model.PredictionResult
	Snapshot() model.PortfolioSnapshot
	Watchlist(sort SortMode, filter FilterMode) iter.Seq[model.Ticker]
	Sectors(ticker model.Ticker) []string
	Historical(ctx context.Context, symbol string) (json.RawMessage, error)
	History(ctx context.Context, symbol string, limit int) ([]model.PredictionHistory, error)

	AddTicker(ctx context.Context, symbol string) (model.Ticker, bool, error)
	RemoveTicker(ctx context.Context, symbol string) (model.Ticker, bool, error)
	AddToWatchlist(ctx context.Context, symbol string) (model.Ticker, bool, error)
	RemoveFromWatchlist(ctx context.Context, symbol string) (model.Ticker, bool, error)
	AddHolding(ctx context.Context, input model.NewHolding) (model.Holding, error)
	RemoveHolding(ctx context.Context, id uuid.UUID) error
	Refresh(ctx context.Context, symbol string) (model.PredictionResult, error)
	RefreshAll(ctx context.Context)
	RefreshPrices(ctx context.Context)
}

type dashboard struct {
	log            *logger.Logger
	store          TickerStore
	cache          PredictionCache
	pull           PullSyncClient
	portfolio      PortfolioEngine
	view           WatchlistView
	watchlistRepo  repository.WatchlistRepository
	sectorRepo     repository.SectorRepository
	predictionRepo repository.PredictionAPIRepository
	historyRepo    repository.PredictionHistoryRepository

	// nextPosition is the stored position for the next watchlist entry. It
	// only grows, so removals never let a new entry sort ahead of older ones.
	positionMu   sync.Mutex
	nextPosition int
}

func NewDashboard(
	log *logger.Logger,
	store TickerStore,
	cache PredictionCache,
	pull PullSyncClient,
	portfolio PortfolioEngine,
	view WatchlistView,
	repo *repository.Repository,
) Dashboard {
	return &dashboard{
		log:            log,
		store:          store,
		cache:          cache,
		pull:           pull,
		portfolio:      portfolio,
		view:           view,
		watchlistRepo:  repo.WatchlistRepo,
		sectorRepo:     repo.SectorRepo,
		predictionRepo: repo.PredictionAPIRepo,
		historyRepo:    repo.PredictionHistoryRepo,
	}
}

// LoadWatchlist fills the watchlist from storage, seeding the defaults when
// storage is empty.
func (d *dashboard) LoadWatchlist(ctx context.Context) error {
	entries, err := d.watchlistRepo.List(ctx)
	if err != nil {
		d.log.ErrorContext(ctx, "Failed to load watchlist", logger.ErrorField(err))
		return fmt.Errorf("failed to load watchlist: %w", err)
	}

	if len(entries) == 0 {
		for _, ticker := range repository.DefaultWatchlist {
			if _, _, err := d.AddToWatchlist(ctx, ticker.String()); err != nil {
				return err
			}
		}
		return nil
	}

	d.positionMu.Lock()
	for _, entry := range entries {
		d.nextPosition = max(d.nextPosition, entry.Position+1)
	}
	d.positionMu.Unlock()

	for _, entry := range entries {
		if _, _, err := d.store.AddToWatchlist(entry.Symbol); err != nil {
			d.log.WarnContext(ctx, "Skipping invalid watchlist entry",
				logger.StringField("symbol", entry.Symbol),
				logger.ErrorField(err))
		}
	}
	return nil
}

func (d *dashboard) Tracked() []model.Ticker {
	return d.store.Tracked()
}

// Prediction returns model.ErrTickerNotFound while the ticker is untracked or
// nothing has arrived for it yet.
func (d *dashboard) Prediction(symbol string) (model.PredictionResult, error) {
	ticker, err := model.NormalizeTicker(symbol)
	if err != nil {
		return model.PredictionResult{}, err
	}
	if !d.store.IsTracked(ticker) {
		return model.PredictionResult{}, fmt.Errorf("%w: %s is not tracked", model.ErrTickerNotFound, ticker)
	}
	result, ok := d.cache.Get(ticker)
	if !ok {
		return model.PredictionResult{}, fmt.Errorf("%w: no prediction for %s yet", model.ErrTickerNotFound, ticker)
	}
	return result, nil
}

// Predictions lists the present entries of tracked tickers in tracked order.
func (d *dashboard) Predictions() []model.PredictionResult {
	tracked := d.store.Tracked()
	results := make([]model.PredictionResult, 0, len(tracked))
	for _, ticker := range tracked {
		if result, ok := d.cache.Get(ticker); ok {
			results = append(results, result)
		}
	}
	return results
}

func (d *dashboard) Snapshot() model.PortfolioSnapshot {
	return d.portfolio.ComputeSnapshot()
}

func (d *dashboard) Watchlist(sort SortMode, filter FilterMode) iter.Seq[model.Ticker] {
	return d.view.Project(d.store.Watchlist(), sort, filter)
}

func (d *dashboard) Sectors(ticker model.Ticker) []string {
	return d.sectorRepo.Sectors(ticker)
}

func (d *dashboard) Historical(ctx context.Context, symbol string) (json.RawMessage, error) {
	ticker, err := model.NormalizeTicker(symbol)
	if err != nil {
		return nil, err
	}
	return d.predictionRepo.GetHistorical(ctx, ticker)
}

// History lists recorded results for ticker, newest first. It is empty when
// no database is configured.
func (d *dashboard) History(ctx context.Context, symbol string, limit int) ([]model.PredictionHistory, error) {
	ticker, err := model.NormalizeTicker(symbol)
	if err != nil {
		return nil, err
	}
	histories, err := d.historyRepo.ListByTicker(ctx, ticker, utils.WithLimit(limit))
	if err != nil {
		d.log.ErrorContext(ctx, "Failed to list prediction history", logger.StringField("ticker", ticker.String()), logger.ErrorField(err))
		return nil, fmt.Errorf("failed to list prediction history: %w", err)
	}
	return histories, nil
}

func (d *dashboard) AddTicker(ctx context.Context, symbol string) (model.Ticker, bool, error) {
	ticker, added, err := d.store.AddTicker(symbol)
	if err != nil {
		return "", false, err
	}
	if added {
		d.log.InfoContext(ctx, "Ticker added", logger.StringField("ticker", ticker.String()))
	}
	return ticker, added, nil
}

// RemoveTicker drops the ticker and its prediction. A response still in
// flight for it may land afterwards; it is discarded again on re-add.
func (d *dashboard) RemoveTicker(ctx context.Context, symbol string) (model.Ticker, bool, error) {
	ticker, removed, err := d.store.RemoveTicker(symbol)
	if err != nil {
		return "", false, err
	}
	if removed {
		d.cache.Remove(ticker)
		d.log.InfoContext(ctx, "Ticker removed", logger.StringField("ticker", ticker.String()))
	}
	return ticker, removed, nil
}

// AddToWatchlist persists the entry; a storage failure undoes the change.
func (d *dashboard) AddToWatchlist(ctx context.Context, symbol string) (model.Ticker, bool, error) {
	ticker, added, err := d.store.AddToWatchlist(symbol)
	if err != nil || !added {
		return ticker, false, err
	}

	entry := model.WatchlistEntry{Symbol: ticker.String(), Position: d.takePosition()}
	if err := d.watchlistRepo.Add(ctx, entry); err != nil {
		_, _, _ = d.store.RemoveFromWatchlist(ticker.String())
		d.log.ErrorContext(ctx, "Failed to save watchlist entry", logger.StringField("ticker", ticker.String()), logger.ErrorField(err))
		return "", false, fmt.Errorf("failed to save watchlist entry: %w", err)
	}
	return ticker, true, nil
}

func (d *dashboard) takePosition() int {
	d.positionMu.Lock()
	defer d.positionMu.Unlock()
	position := d.nextPosition
	d.nextPosition++
	return position
}

func (d *dashboard) RemoveFromWatchlist(ctx context.Context, symbol string) (model.Ticker, bool, error) {
	ticker, removed, err := d.store.RemoveFromWatchlist(symbol)
	if err != nil || !removed {
		return ticker, false, err
	}

	if err := d.watchlistRepo.Remove(ctx, ticker.String()); err != nil {
		_, _, _ = d.store.AddToWatchlist(ticker.String())
		d.log.ErrorContext(ctx, "Failed to delete watchlist entry", logger.StringField("ticker", ticker.String()), logger.ErrorField(err))
		return "", false, fmt.Errorf("failed to delete watchlist entry: %w", err)
	}
	return ticker, true, nil
}

// AddHolding stores the row and starts a price lookup for it.
func (d *dashboard) AddHolding(ctx context.Context, input model.NewHolding) (model.Holding, error) {
	holding, err := d.portfolio.AddHolding(ctx, input)
	if err != nil {
		return model.Holding{}, err
	}
	holding.CurrentPrice = d.portfolio.RefreshPrice(ctx, holding.Ticker)
	return holding, nil
}

func (d *dashboard) RemoveHolding(_ context.Context, id uuid.UUID) error {
	return d.portfolio.RemoveHolding(id)
}

// Refresh re-requests one tracked ticker and returns what was merged.
func (d *dashboard) Refresh(ctx context.Context, symbol string) (model.PredictionResult, error) {
	ticker, err := model.NormalizeTicker(symbol)
	if err != nil {
		return model.PredictionResult{}, err
	}
	if !d.store.IsTracked(ticker) {
		return model.PredictionResult{}, fmt.Errorf("%w: %s is not tracked", model.ErrTickerNotFound, ticker)
	}
	return d.pull.RequestPrediction(ctx, ticker), nil
}

func (d *dashboard) RefreshAll(ctx context.Context) {
	d.pull.RefreshAll(ctx, d.store.Tracked())
}

func (d *dashboard) RefreshPrices(ctx context.Context) {
	d.portfolio.RefreshAll(ctx)
}
