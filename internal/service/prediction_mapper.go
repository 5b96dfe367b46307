package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"options-dashboard/internal/dto"
	"options-dashboard/internal/model"
	"options-dashboard/pkg/session"
)

// toPredictionResult converts a backend payload into a populated result. Both
// the pull response and the push message go through here.
func toPredictionResult(ticker model.Ticker, resp *dto.PredictResponse, receivedAt time.Time) (model.PredictionResult, error) {
	if resp == nil || resp.PredictedClose == nil {
		return model.PredictionResult{}, fmt.Errorf("prediction for %s has no predicted_close", ticker)
	}

	strategies := make([]model.Strategy, 0, len(resp.RecommendedStrategies))
	for i, s := range resp.RecommendedStrategies {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return model.PredictionResult{}, fmt.Errorf("strategy %d for %s has no name", i, ticker)
		}
		strategies = append(strategies, model.Strategy{
			Name:           name,
			Confidence:     model.Confidence(strings.TrimSpace(s.Confidence)),
			ExecutionSteps: s.Steps(),
		})
	}

	return model.NewPredictionSuccess(ticker, *resp.PredictedClose, strategies, receivedAt), nil
}

// failureMessage picks the text stored in an error entry: the backend detail
// when there is one, the session problem for auth failures, the generic text
// otherwise.
func failureMessage(err error) string {
	var apiErr *dto.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if session.IsAuthError(err) {
		return err.Error()
	}
	return model.GenericFailureMessage
}
