package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"options-dashboard/config"
	"options-dashboard/internal/dto"
	"options-dashboard/internal/model"
	"options-dashboard/internal/repository"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// PortfolioEngine owns the holdings list. Prices arrive asynchronously and
// every derived figure is computed on read.
type PortfolioEngine interface {
	Load(ctx context.Context) error
	AddHolding(ctx context.Context, input model.NewHolding) (model.Holding, error)
	RemoveHolding(id uuid.UUID) error
	RefreshPrice(ctx context.Context, ticker model.Ticker) decimal.NullDecimal
	RefreshAll(ctx context.Context)
	Holdings() []model.Holding
	ComputeSnapshot() model.PortfolioSnapshot
}

type portfolioEngine struct {
	cfg            *config.Config
	log            *logger.Logger
	portfolioRepo  repository.PortfolioAPIRepository
	predictionRepo repository.PredictionAPIRepository

	mu       sync.RWMutex
	holdings []model.Holding
}

func NewPortfolioEngine(
	cfg *config.Config,
	log *logger.Logger,
	portfolioRepo repository.PortfolioAPIRepository,
	predictionRepo repository.PredictionAPIRepository,
) PortfolioEngine {
	return &portfolioEngine{
		cfg:            cfg,
		log:            log,
		portfolioRepo:  portfolioRepo,
		predictionRepo: predictionRepo,
	}
}

// Load replaces the holdings with the remote portfolio. Prices stay unknown
// until refreshed. Without a remote it is a no-op.
func (e *portfolioEngine) Load(ctx context.Context) error {
	if !e.cfg.Portfolio.Remote {
		return nil
	}

	payloads, err := e.portfolioRepo.GetHoldings(ctx, e.cfg.Portfolio.UserID)
	if err != nil {
		e.log.ErrorContext(ctx, "Failed to load portfolio", logger.ErrorField(err))
		return fmt.Errorf("failed to load portfolio: %w", err)
	}

	holdings := make([]model.Holding, 0, len(payloads))
	for _, p := range payloads {
		input := model.NewHolding{Ticker: p.Ticker, Quantity: p.Quantity, PurchasePrice: p.PurchasePrice}
		ticker, err := input.Validate()
		if err != nil {
			e.log.WarnContext(ctx, "Skipping invalid remote holding",
				logger.IntField("remote_id", int(p.ID)),
				logger.ErrorField(err))
			continue
		}
		holdings = append(holdings, model.Holding{
			ID:            uuid.New(),
			RemoteID:      p.ID,
			Ticker:        ticker,
			Quantity:      p.Quantity,
			PurchasePrice: p.PurchasePrice,
		})
	}

	e.mu.Lock()
	e.holdings = holdings
	e.mu.Unlock()

	e.log.InfoContext(ctx, "Portfolio loaded", logger.IntField("holding_count", len(holdings)))
	return nil
}

// AddHolding validates input and appends a new row. With a remote configured
// the row is stored upstream first and nothing changes locally if that fails.
func (e *portfolioEngine) AddHolding(ctx context.Context, input model.NewHolding) (model.Holding, error) {
	ticker, err := input.Validate()
	if err != nil {
		return model.Holding{}, err
	}

	holding := model.Holding{
		ID:            uuid.New(),
		Ticker:        ticker,
		Quantity:      input.Quantity,
		PurchasePrice: input.PurchasePrice,
	}

	if e.cfg.Portfolio.Remote {
		saved, err := e.portfolioRepo.AddHolding(ctx, e.cfg.Portfolio.UserID, dto.HoldingPayload{
			Ticker:        ticker.String(),
			Quantity:      input.Quantity,
			PurchasePrice: input.PurchasePrice,
		})
		if err != nil {
			e.log.ErrorContext(ctx, "Failed to save holding", logger.StringField("ticker", ticker.String()), logger.ErrorField(err))
			return model.Holding{}, fmt.Errorf("failed to save holding: %w", err)
		}
		if saved != nil {
			holding.RemoteID = saved.ID
		}
	}

	e.mu.Lock()
	e.holdings = append(e.holdings, holding)
	e.mu.Unlock()

	return holding, nil
}

func (e *portfolioEngine) RemoveHolding(id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := slices.IndexFunc(e.holdings, func(h model.Holding) bool { return h.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", model.ErrHoldingNotFound, id)
	}
	e.holdings = slices.Delete(e.holdings, i, i+1)
	return nil
}

// RefreshPrice resolves the price for ticker and applies it to every row of
// that ticker. A failed lookup leaves the price unknown, never zero. A
// cancelled caller does not abort the lookup.
func (e *portfolioEngine) RefreshPrice(ctx context.Context, ticker model.Ticker) decimal.NullDecimal {
	reqCtx, cancel := upstreamContext(ctx, e.cfg)
	defer cancel()

	var price decimal.NullDecimal
	value, err := e.predictionRepo.GetPrice(reqCtx, ticker)
	if errors.Is(err, context.Canceled) {
		e.log.DebugContext(ctx, "Price refresh canceled", logger.StringField("ticker", ticker.String()))
		return e.currentPrice(ticker)
	}
	if err != nil {
		e.log.WarnContext(ctx, "Failed to refresh price",
			logger.StringField("ticker", ticker.String()),
			logger.ErrorField(err))
	} else {
		price = decimal.NewNullDecimal(value)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.holdings {
		if e.holdings[i].Ticker == ticker {
			e.holdings[i].CurrentPrice = price
		}
	}
	return price
}

// RefreshAll refreshes each distinct ticker once.
func (e *portfolioEngine) RefreshAll(ctx context.Context) {
	tickers := e.distinctTickers()

	g, gctx := errgroup.WithContext(ctx)
	if e.cfg.Upstream.MaxConcurrency > 0 {
		g.SetLimit(e.cfg.Upstream.MaxConcurrency)
	}
	for _, ticker := range tickers {
		if !utils.ShouldContinue(gctx, e.log) {
			break
		}
		g.Go(func() error {
			e.RefreshPrice(gctx, ticker)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *portfolioEngine) currentPrice(ticker model.Ticker) decimal.NullDecimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, h := range e.holdings {
		if h.Ticker == ticker {
			return h.CurrentPrice
		}
	}
	return decimal.NullDecimal{}
}

func (e *portfolioEngine) Holdings() []model.Holding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.holdings)
}

func (e *portfolioEngine) ComputeSnapshot() model.PortfolioSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return model.NewPortfolioSnapshot(e.holdings)
}

func (e *portfolioEngine) distinctTickers() []model.Ticker {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var tickers []model.Ticker
	for _, h := range e.holdings {
		if !slices.Contains(tickers, h.Ticker) {
			tickers = append(tickers, h.Ticker)
		}
	}
	return tickers
}
