package dto

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Ticker string `json:"ticker"`
}

// StrategyPayload is one recommended strategy. Older backends send the
// execution steps as "execution" instead of "details".
type StrategyPayload struct {
	Name       string `json:"name"`
	Confidence string `json:"confidence"`
	Details    string `json:"details"`
	Execution  string `json:"execution,omitempty"`
}

// Steps returns the execution steps from whichever field was populated.
func (s StrategyPayload) Steps() string {
	if s.Details != "" {
		return s.Details
	}
	return s.Execution
}

// PredictResponse is the success body of POST /predict and the push stream payload.
type PredictResponse struct {
	Ticker                string            `json:"ticker,omitempty"`
	PredictedClose        *decimal.Decimal  `json:"predicted_close"`
	RecommendedStrategies []StrategyPayload `json:"recommended_strategies"`
	DataSource            string            `json:"data_source,omitempty"`
}

// ErrorResponse is the error body returned by the backend.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// Message extracts a readable detail. The backend sends either a string or a
// list of validation objects.
func (e ErrorResponse) Message() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(e.Detail, &text); err == nil {
		return text
	}
	return string(e.Detail)
}

// PriceResponse is the body of GET /price/{ticker}.
type PriceResponse struct {
	CurrentPrice *decimal.Decimal `json:"current_price"`
}

// HistoricalResponse is passed through to the presentation layer untouched.
type HistoricalResponse json.RawMessage

// HoldingPayload is one holding row of the portfolio backend.
type HoldingPayload struct {
	ID            int64           `json:"id,omitempty"`
	Ticker        string          `json:"ticker"`
	Quantity      int64           `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// PortfolioResponse is the body of GET /portfolio/{userId}.
type PortfolioResponse struct {
	Holdings []HoldingPayload `json:"holdings"`
}

// APIError is a non-2xx answer from an upstream endpoint.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Detail)
}
