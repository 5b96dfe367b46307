package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"options-dashboard/internal/model"
	"options-dashboard/pkg/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PredictionHistoryRepository interface {
	Create(ctx context.Context, result model.PredictionResult) error
	ListByTicker(ctx context.Context, ticker model.Ticker, opts ...utils.DBOption) ([]model.PredictionHistory, error)
}

type predictionHistoryRepository struct {
	db *gorm.DB
}

func NewPredictionHistoryRepository(db *gorm.DB) PredictionHistoryRepository {
	return &predictionHistoryRepository{
		db: db,
	}
}

func (r *predictionHistoryRepository) Create(ctx context.Context, result model.PredictionResult) error {
	history, err := ToPredictionHistory(result)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&history).Error
}

func (r *predictionHistoryRepository) ListByTicker(ctx context.Context, ticker model.Ticker, opts ...utils.DBOption) ([]model.PredictionHistory, error) {
	var histories []model.PredictionHistory
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("ticker = ?", ticker.String()).
		Order("received_at DESC").
		Find(&histories).Error
	if err != nil {
		return nil, err
	}
	return histories, nil
}

// ToPredictionHistory flattens a result into its table row.
func ToPredictionHistory(result model.PredictionResult) (model.PredictionHistory, error) {
	history := model.PredictionHistory{
		Ticker:     result.Ticker.String(),
		ReceivedAt: result.ReceivedAt,
	}
	if result.IsError() {
		history.ErrorMessage = sql.NullString{String: result.Error, Valid: true}
		return history, nil
	}

	strategies, err := json.Marshal(result.Prediction.Strategies)
	if err != nil {
		return history, err
	}
	history.PredictedClose = decimal.NewNullDecimal(result.Prediction.PredictedClose)
	history.Strategies = datatypes.JSON(strategies)
	return history, nil
}

type noopPredictionHistoryRepository struct{}

// NewNoopPredictionHistoryRepository is used when no database is configured.
func NewNoopPredictionHistoryRepository() PredictionHistoryRepository {
	return noopPredictionHistoryRepository{}
}

func (noopPredictionHistoryRepository) Create(_ context.Context, _ model.PredictionResult) error {
	return nil
}

func (noopPredictionHistoryRepository) ListByTicker(_ context.Context, _ model.Ticker, _ ...utils.DBOption) ([]model.PredictionHistory, error) {
	return nil, nil
}
