package repository

import (
	"context"
	"fmt"

	"options-dashboard/config"
	"options-dashboard/internal/dto"
	"options-dashboard/pkg/httpclient"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/session"
)

type PortfolioAPIRepository interface {
	GetHoldings(ctx context.Context, userID int64) ([]dto.HoldingPayload, error)
	AddHolding(ctx context.Context, userID int64, holding dto.HoldingPayload) (*dto.HoldingPayload, error)
}

type portfolioAPIRepository struct {
	upstreamBase
	logger *logger.Logger
}

func NewPortfolioAPIRepository(cfg *config.Config, log *logger.Logger, httpClient httpclient.HTTPClient, credential *session.Credential) PortfolioAPIRepository {
	return &portfolioAPIRepository{
		upstreamBase: newUpstreamBase(httpClient, credential, cfg.Upstream.MaxRequestPerMinute),
		logger:       log,
	}
}

func (r *portfolioAPIRepository) GetHoldings(ctx context.Context, userID int64) ([]dto.HoldingPayload, error) {
	headers, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}

	var result dto.PortfolioResponse
	resp, err := r.httpClient.Get(ctx, fmt.Sprintf("/portfolio/%d", userID), nil, headers, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch portfolio: %w", err)
	}

	if !resp.IsSuccess() {
		r.logger.WarnContext(ctx, "Portfolio API returned Non-OK status",
			logger.IntField("user_id", int(userID)),
			logger.IntField("status_code", resp.StatusCode))
		return nil, toAPIError(resp)
	}

	return result.Holdings, nil
}

func (r *portfolioAPIRepository) AddHolding(ctx context.Context, userID int64, holding dto.HoldingPayload) (*dto.HoldingPayload, error) {
	headers, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}

	var result dto.HoldingPayload
	resp, err := r.httpClient.Post(ctx, fmt.Sprintf("/portfolio/%d/holdings", userID), holding, headers, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to add holding: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, toAPIError(resp)
	}

	return &result, nil
}
