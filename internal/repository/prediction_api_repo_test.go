package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"options-dashboard/config"
	"options-dashboard/internal/dto"
	"options-dashboard/pkg/httpclient"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Upstream: config.Upstream{
			Timeout:             5 * time.Second,
			MaxRequestPerMinute: 600000,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestPredictionRepo(t *testing.T, handler http.HandlerFunc, credential *session.Credential) PredictionAPIRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testConfig()
	return NewPredictionAPIRepository(cfg, logger.NewNop(), httpclient.New(server.URL, cfg.Upstream.Timeout), credential)
}

func TestPredictionAPIRepository_Predict(t *testing.T) {
	repo := newTestPredictionRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body dto.PredictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "AAPL", body.Ticker)

		writeJSON(w, http.StatusOK, `{"ticker":"AAPL","predicted_close":150.0,"recommended_strategies":[{"name":"Call Spread","confidence":"High","details":"buy 150C sell 155C"}]}`)
	}, session.NewCredential("secret", time.Time{}))

	resp, err := repo.Predict(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, resp.PredictedClose)
	assert.True(t, decimal.NewFromInt(150).Equal(*resp.PredictedClose))
	require.Len(t, resp.RecommendedStrategies, 1)
	assert.Equal(t, "Call Spread", resp.RecommendedStrategies[0].Name)
	assert.Equal(t, "buy 150C sell 155C", resp.RecommendedStrategies[0].Steps())
}

func TestPredictionAPIRepository_PredictErrorDetail(t *testing.T) {
	repo := newTestPredictionRepo(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"detail":"Failed to train LSTM model for ZZZ."}`)
	}, session.NewCredential("secret", time.Time{}))

	_, err := repo.Predict(context.Background(), "ZZZ")

	var apiErr *dto.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Failed to train LSTM model for ZZZ.", apiErr.Detail)
}

func TestPredictionAPIRepository_PredictMissingClose(t *testing.T) {
	repo := newTestPredictionRepo(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"recommended_strategies":[]}`)
	}, session.NewCredential("secret", time.Time{}))

	_, err := repo.Predict(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestPredictionAPIRepository_MissingCredential(t *testing.T) {
	var hits int32
	repo := newTestPredictionRepo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusOK, `{}`)
	}, session.NewCredential("", time.Time{}))

	_, err := repo.Predict(context.Background(), "AAPL")
	assert.ErrorIs(t, err, session.ErrMissingCredential)

	_, err = repo.GetPrice(context.Background(), "AAPL")
	assert.ErrorIs(t, err, session.ErrMissingCredential)

	assert.Equal(t, int32(0), atomic.LoadInt32(&hits), "no request may leave without a credential")
}

func TestPredictionAPIRepository_GetPrice(t *testing.T) {
	repo := newTestPredictionRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/price/TSLA", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"current_price":220.5}`)
	}, session.NewCredential("secret", time.Time{}))

	price, err := repo.GetPrice(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, "220.5", price.String())
}

func TestPredictionAPIRepository_GetPriceUnauthorized(t *testing.T) {
	repo := newTestPredictionRepo(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`)
	}, session.NewCredential("stale", time.Time{}))

	_, err := repo.GetPrice(context.Background(), "TSLA")

	var apiErr *dto.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Could not validate credentials", apiErr.Detail)
}

func TestPredictionAPIRepository_GetHistorical(t *testing.T) {
	repo := newTestPredictionRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/historical", r.URL.Path)
		assert.Equal(t, "MSFT", r.URL.Query().Get("ticker"))
		writeJSON(w, http.StatusOK, `{"close":[1,2,3]}`)
	}, session.NewCredential("secret", time.Time{}))

	raw, err := repo.GetHistorical(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.JSONEq(t, `{"close":[1,2,3]}`, string(raw))
}
