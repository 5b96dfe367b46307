package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Confidence is Low, Medium or High, but the backend may send free text.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// IsKnown reports whether c is one of the enumerated levels.
func (c Confidence) IsKnown() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	default:
		return false
	}
}

type Strategy struct {
	Name           string     `json:"name"`
	Confidence     Confidence `json:"confidence"`
	ExecutionSteps string     `json:"execution_steps"`
}

type Prediction struct {
	PredictedClose decimal.Decimal `json:"predicted_close"`
	Strategies     []Strategy      `json:"strategies"`
}

// PredictionResult is the per-ticker prediction-or-error variant shared by
// both sync channels. Exactly one of Prediction and Error is set.
type PredictionResult struct {
	Ticker     Ticker      `json:"ticker"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Error      string      `json:"error,omitempty"`
	ReceivedAt time.Time   `json:"received_at"`
}

// NewPredictionSuccess builds a populated result. Strategies are copied so the
// caller's slice can not alter the stored value afterwards.
func NewPredictionSuccess(ticker Ticker, predictedClose decimal.Decimal, strategies []Strategy, receivedAt time.Time) PredictionResult {
	copied := make([]Strategy, len(strategies))
	copy(copied, strategies)
	return PredictionResult{
		Ticker: ticker,
		Prediction: &Prediction{
			PredictedClose: predictedClose,
			Strategies:     copied,
		},
		ReceivedAt: receivedAt,
	}
}

// NewPredictionFailure builds an error result. An empty message falls back to
// the generic failure text.
func NewPredictionFailure(ticker Ticker, message string, receivedAt time.Time) PredictionResult {
	if message == "" {
		message = GenericFailureMessage
	}
	return PredictionResult{
		Ticker:     ticker,
		Error:      message,
		ReceivedAt: receivedAt,
	}
}

// GenericFailureMessage is shown when the backend gave no detail.
const GenericFailureMessage = "Server Error"

func (r PredictionResult) IsError() bool {
	return r.Prediction == nil
}

// Clone returns a deep copy so readers never share the cached strategies slice.
func (r PredictionResult) Clone() PredictionResult {
	if r.Prediction == nil {
		return r
	}
	return NewPredictionSuccess(r.Ticker, r.Prediction.PredictedClose, r.Prediction.Strategies, r.ReceivedAt)
}
