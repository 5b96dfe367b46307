package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"options-dashboard/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSectorRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sectors.yaml")
	content := "sectors:\n  aapl: [Technology]\n  TSLA: [automotive, technology]\n  BAD.X: [energy]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	repo, err := NewSectorRepository(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"technology"}, repo.Sectors("AAPL"))
	assert.Equal(t, []string{"automotive", "technology"}, repo.Sectors("TSLA"))
	assert.Empty(t, repo.Sectors("XOM"))
}

func TestNewSectorRepository_MissingFile(t *testing.T) {
	repo, err := NewSectorRepository(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, repo.Sectors("AAPL"))
}

func TestNewSectorRepository_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sectors: [unclosed"), 0o600))

	_, err := NewSectorRepository(path)
	assert.Error(t, err)
}

func TestToPredictionHistory(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	ok := model.NewPredictionSuccess("AAPL", decimal.NewFromInt(150), []model.Strategy{{Name: "Call Spread", Confidence: model.ConfidenceHigh}}, now)
	history, err := ToPredictionHistory(ok)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", history.Ticker)
	assert.True(t, history.PredictedClose.Valid)
	assert.False(t, history.ErrorMessage.Valid)
	assert.JSONEq(t, `[{"name":"Call Spread","confidence":"High","execution_steps":""}]`, string(history.Strategies))

	failed := model.NewPredictionFailure("AAPL", "boom", now)
	history, err = ToPredictionHistory(failed)
	require.NoError(t, err)
	assert.False(t, history.PredictedClose.Valid)
	assert.Equal(t, "boom", history.ErrorMessage.String)
}
