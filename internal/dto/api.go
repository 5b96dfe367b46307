package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TickerRequest is the body for adding a ticker or a watchlist entry.
type TickerRequest struct {
	Ticker string `json:"ticker" validate:"required"`
}

// AddHoldingRequest is the body of POST /api/v1/portfolio/holdings.
type AddHoldingRequest struct {
	Ticker        string          `json:"ticker" validate:"required"`
	Quantity      int64           `json:"quantity" validate:"required"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// HoldingView is a portfolio row as shown to the presentation layer, with
// derived values already rendered ("N/A" while the price is unknown).
type HoldingView struct {
	ID            string `json:"id"`
	Ticker        string `json:"ticker"`
	Quantity      int64  `json:"quantity"`
	PurchasePrice string `json:"purchase_price"`
	CurrentPrice  string `json:"current_price"`
	ProfitLoss    string `json:"profit_loss"`
}

type PortfolioView struct {
	Holdings   []HoldingView `json:"holdings"`
	TotalValue string        `json:"total_value"`
	Unpriced   int           `json:"unpriced"`
}

type StrategyView struct {
	Name           string `json:"name"`
	Confidence     string `json:"confidence"`
	ExecutionSteps string `json:"execution_steps"`
}

// PredictionView is either a prediction or an inline error for one ticker.
type PredictionView struct {
	Ticker         string         `json:"ticker"`
	PredictedClose string         `json:"predicted_close,omitempty"`
	Strategies     []StrategyView `json:"strategies,omitempty"`
	Error          string         `json:"error,omitempty"`
	ReceivedAt     string         `json:"received_at"`
}

type WatchlistItemView struct {
	Ticker  string   `json:"ticker"`
	Sectors []string `json:"sectors"`
}

// PredictionHistoryView is one recorded result.
type PredictionHistoryView struct {
	Ticker         string          `json:"ticker"`
	PredictedClose string          `json:"predicted_close,omitempty"`
	Strategies     json.RawMessage `json:"strategies,omitempty"`
	Error          string          `json:"error,omitempty"`
	ReceivedAt     string          `json:"received_at"`
}
