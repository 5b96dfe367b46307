package http

import (
	"encoding/json"
	"time"

	"options-dashboard/internal/dto"
	"options-dashboard/internal/model"
)

func toPredictionView(result model.PredictionResult) dto.PredictionView {
	view := dto.PredictionView{
		Ticker:     result.Ticker.String(),
		Error:      result.Error,
		ReceivedAt: result.ReceivedAt.UTC().Format(time.RFC3339),
	}
	if result.IsError() {
		return view
	}

	view.PredictedClose = result.Prediction.PredictedClose.StringFixed(2)
	view.Strategies = make([]dto.StrategyView, 0, len(result.Prediction.Strategies))
	for _, s := range result.Prediction.Strategies {
		view.Strategies = append(view.Strategies, dto.StrategyView{
			Name:           s.Name,
			Confidence:     string(s.Confidence),
			ExecutionSteps: s.ExecutionSteps,
		})
	}
	return view
}

// ToPredictionView is the payload pushed to SSE clients.
func ToPredictionView(result model.PredictionResult) dto.PredictionView {
	return toPredictionView(result)
}

func toHistoryView(h model.PredictionHistory) dto.PredictionHistoryView {
	view := dto.PredictionHistoryView{
		Ticker:     h.Ticker,
		ReceivedAt: h.ReceivedAt.UTC().Format(time.RFC3339),
	}
	if h.ErrorMessage.Valid {
		view.Error = h.ErrorMessage.String
	}
	if h.PredictedClose.Valid {
		view.PredictedClose = h.PredictedClose.Decimal.StringFixed(2)
		view.Strategies = json.RawMessage(h.Strategies)
	}
	return view
}

func toHoldingView(h model.Holding) dto.HoldingView {
	return dto.HoldingView{
		ID:            h.ID.String(),
		Ticker:        h.Ticker.String(),
		Quantity:      h.Quantity,
		PurchasePrice: h.PurchasePrice.StringFixed(2),
		CurrentPrice:  h.CurrentPriceDisplay(),
		ProfitLoss:    h.ProfitLossDisplay(),
	}
}

func toPortfolioView(snapshot model.PortfolioSnapshot) dto.PortfolioView {
	view := dto.PortfolioView{
		Holdings:   make([]dto.HoldingView, 0, len(snapshot.Holdings)),
		TotalValue: snapshot.TotalValue.StringFixed(2),
		Unpriced:   snapshot.Unpriced,
	}
	for _, h := range snapshot.Holdings {
		view.Holdings = append(view.Holdings, toHoldingView(h))
	}
	return view
}

func toTickerStrings(tickers []model.Ticker) []string {
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, t.String())
	}
	return out
}
