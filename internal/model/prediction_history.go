package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PredictionHistory is an append-only record of every merged prediction result.
type PredictionHistory struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	Ticker         string              `gorm:"not null;index" json:"ticker"`
	PredictedClose decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"predicted_close"`
	Strategies     datatypes.JSON      `json:"strategies"`
	ErrorMessage   sql.NullString      `gorm:"type:text" json:"error_message"`
	ReceivedAt     time.Time           `gorm:"not null" json:"received_at"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (PredictionHistory) TableName() string {
	return "prediction_histories"
}
