package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"options-dashboard/config"
	"options-dashboard/internal/dto"
	"options-dashboard/internal/model"
	"options-dashboard/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		Upstream: config.Upstream{
			Timeout:             time.Second,
			MaxRequestPerMinute: 600000,
			MaxConcurrency:      2,
		},
		Stream: config.Stream{
			URL: "ws://predictions.test/ws",
		},
	}
}

func predictResponse(close string, strategies ...dto.StrategyPayload) *dto.PredictResponse {
	value := decimal.RequireFromString(close)
	return &dto.PredictResponse{PredictedClose: &value, RecommendedStrategies: strategies}
}

type MockPredictionAPIRepository struct {
	mock.Mock
}

func (m *MockPredictionAPIRepository) Predict(ctx context.Context, ticker model.Ticker) (*dto.PredictResponse, error) {
	args := m.Called(ctx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PredictResponse), args.Error(1)
}

func (m *MockPredictionAPIRepository) GetPrice(ctx context.Context, ticker model.Ticker) (decimal.Decimal, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPredictionAPIRepository) GetHistorical(ctx context.Context, ticker model.Ticker) (json.RawMessage, error) {
	args := m.Called(ctx, ticker)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

type MockPortfolioAPIRepository struct {
	mock.Mock
}

func (m *MockPortfolioAPIRepository) GetHoldings(ctx context.Context, userID int64) ([]dto.HoldingPayload, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.HoldingPayload), args.Error(1)
}

func (m *MockPortfolioAPIRepository) AddHolding(ctx context.Context, userID int64, holding dto.HoldingPayload) (*dto.HoldingPayload, error) {
	args := m.Called(ctx, userID, holding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.HoldingPayload), args.Error(1)
}

type MockWatchlistRepository struct {
	mock.Mock
}

func (m *MockWatchlistRepository) List(ctx context.Context) ([]model.WatchlistEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WatchlistEntry), args.Error(1)
}

func (m *MockWatchlistRepository) Add(ctx context.Context, entry model.WatchlistEntry, opts ...utils.DBOption) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWatchlistRepository) Remove(ctx context.Context, symbol string, opts ...utils.DBOption) error {
	args := m.Called(ctx, symbol)
	return args.Error(0)
}

type MockPredictionHistoryRepository struct {
	mock.Mock
}

func (m *MockPredictionHistoryRepository) Create(ctx context.Context, result model.PredictionResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockPredictionHistoryRepository) ListByTicker(ctx context.Context, ticker model.Ticker, opts ...utils.DBOption) ([]model.PredictionHistory, error) {
	args := m.Called(ctx, ticker, len(opts))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PredictionHistory), args.Error(1)
}

var errConnClosed = errors.New("use of closed network connection")

// fakeConn feeds queued messages to the push client. Closing messages
// simulates a dropped connection.
type fakeConn struct {
	messages  chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	pings     atomic.Int32
	// dropErr is returned once messages is closed.
	dropErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		messages: make(chan []byte),
		closed:   make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case msg, ok := <-c.messages:
		if !ok {
			if c.dropErr != nil {
				return nil, c.dropErr
			}
			return nil, errors.New("connection reset by peer")
		}
		return msg, nil
	case <-c.closed:
		return nil, errConnClosed
	}
}

func (c *fakeConn) Ping() error {
	c.pings.Add(1)
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
