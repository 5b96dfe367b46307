package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"options-dashboard/config"
	"options-dashboard/internal/dto"
	"options-dashboard/internal/model"
	"options-dashboard/pkg/httpclient"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/session"

	"github.com/shopspring/decimal"
)

type PredictionAPIRepository interface {
	Predict(ctx context.Context, ticker model.Ticker) (*dto.PredictResponse, error)
	GetPrice(ctx context.Context, ticker model.Ticker) (decimal.Decimal, error)
	GetHistorical(ctx context.Context, ticker model.Ticker) (json.RawMessage, error)
}

type predictionAPIRepository struct {
	upstreamBase
	logger *logger.Logger
}

func NewPredictionAPIRepository(cfg *config.Config, log *logger.Logger, httpClient httpclient.HTTPClient, credential *session.Credential) PredictionAPIRepository {
	return &predictionAPIRepository{
		upstreamBase: newUpstreamBase(httpClient, credential, cfg.Upstream.MaxRequestPerMinute),
		logger:       log,
	}
}

func (r *predictionAPIRepository) Predict(ctx context.Context, ticker model.Ticker) (*dto.PredictResponse, error) {
	headers, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}

	var result dto.PredictResponse
	resp, err := r.httpClient.Post(ctx, "/predict", dto.PredictRequest{Ticker: ticker.String()}, headers, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to request prediction: %w", err)
	}

	if !resp.IsSuccess() {
		r.logger.WarnContext(ctx, "Prediction API returned Non-OK status",
			logger.StringField("ticker", ticker.String()),
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, toAPIError(resp)
	}

	if result.PredictedClose == nil {
		return nil, fmt.Errorf("prediction for %s has no predicted_close", ticker)
	}

	return &result, nil
}

func (r *predictionAPIRepository) GetPrice(ctx context.Context, ticker model.Ticker) (decimal.Decimal, error) {
	headers, err := r.prepare(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	var result dto.PriceResponse
	resp, err := r.httpClient.Get(ctx, "/price/"+url.PathEscape(ticker.String()), nil, headers, &result)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch price: %w", err)
	}

	if !resp.IsSuccess() {
		r.logger.WarnContext(ctx, "Price API returned Non-OK status",
			logger.StringField("ticker", ticker.String()),
			logger.IntField("status_code", resp.StatusCode))
		return decimal.Zero, toAPIError(resp)
	}

	if result.CurrentPrice == nil {
		return decimal.Zero, fmt.Errorf("price for %s has no current_price", ticker)
	}

	return *result.CurrentPrice, nil
}

func (r *predictionAPIRepository) GetHistorical(ctx context.Context, ticker model.Ticker) (json.RawMessage, error) {
	headers, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Get(ctx, "/historical", map[string]string{"ticker": ticker.String()}, headers, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch historical data: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, toAPIError(resp)
	}

	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("historical data for %s is not valid json", ticker)
	}

	return json.RawMessage(resp.Body), nil
}
