package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"options-dashboard/internal/model"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/session"
	"options-dashboard/pkg/stream"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const waitFor = time.Second
const tick = 5 * time.Millisecond

func newTestPushClient(c PredictionCache, conn *fakeConn) (PushSyncClient, *int) {
	dials := 0
	dial := func(_ context.Context, url, token string) (stream.Conn, error) {
		dials++
		return conn, nil
	}
	cred := session.NewCredential("token", time.Time{})
	return NewPushSyncClient(testConfig(), logger.NewNop(), cred, c, dial), &dials
}

func runAsync(ctx context.Context, client PushSyncClient) <-chan error {
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()
	return done
}

func TestPushSyncClient_MergesMessages(t *testing.T) {
	c := newTestCache()
	conn := newFakeConn()
	client, _ := newTestPushClient(c, conn)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, client)

	conn.messages <- []byte(`{"ticker":"aapl","predicted_close":151,"recommended_strategies":[{"name":"Iron Condor","confidence":"Low","details":"Sell 140P/160C"}]}`)

	require.Eventually(t, func() bool {
		_, ok := c.Get("AAPL")
		return ok
	}, waitFor, tick)
	assert.Equal(t, StreamConnected, client.Status())

	got, _ := c.Get("AAPL")
	assert.Equal(t, "151", got.Prediction.PredictedClose.String())
	assert.Equal(t, "Iron Condor", got.Prediction.Strategies[0].Name)

	cancel()
	assert.NoError(t, <-done)
	assert.True(t, conn.isClosed())
	assert.Equal(t, StreamIdle, client.Status())
}

func TestPushSyncClient_DropsMalformedMessages(t *testing.T) {
	c := newTestCache()
	conn := newFakeConn()
	client, _ := newTestPushClient(c, conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runAsync(ctx, client)

	conn.messages <- []byte(`not json`)
	conn.messages <- []byte(`{"ticker":"TOOLONG","predicted_close":1}`)
	conn.messages <- []byte(`{"ticker":"MSFT","recommended_strategies":[]}`)
	conn.messages <- []byte(`{"ticker":"NVDA","predicted_close":900,"recommended_strategies":[{"confidence":"High"}]}`)
	conn.messages <- []byte(`{"ticker":"TSLA","predicted_close":220,"recommended_strategies":[]}`)

	require.Eventually(t, func() bool {
		_, ok := c.Get("TSLA")
		return ok
	}, waitFor, tick)

	assert.Len(t, c.All(), 1, "only the well-formed message is merged")

	cancel()
	assert.NoError(t, <-done)
}

func TestPushSyncClient_PushedFailure(t *testing.T) {
	c := newTestCache()
	conn := newFakeConn()
	client, _ := newTestPushClient(c, conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runAsync(ctx, client)

	conn.messages <- []byte(`{"ticker":"AAPL","detail":"Model retraining"}`)

	require.Eventually(t, func() bool {
		got, ok := c.Get("AAPL")
		return ok && got.Error == "Model retraining"
	}, waitFor, tick)

	cancel()
	assert.NoError(t, <-done)
}

func TestPushSyncClient_ConnectionLost(t *testing.T) {
	c := newTestCache()
	conn := newFakeConn()
	client, _ := newTestPushClient(c, conn)

	done := runAsync(context.Background(), client)
	close(conn.messages)

	err := <-done
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prediction stream lost")
	assert.NotErrorIs(t, err, ErrStreamClosedByServer)
	assert.Equal(t, StreamDisconnected, client.Status())
}

func TestPushSyncClient_ServerClosedCleanly(t *testing.T) {
	c := newTestCache()
	conn := newFakeConn()
	conn.dropErr = &websocket.CloseError{Code: websocket.CloseNormalClosure, Text: "bye"}
	client, _ := newTestPushClient(c, conn)

	done := runAsync(context.Background(), client)
	close(conn.messages)

	err := <-done
	require.ErrorIs(t, err, ErrStreamClosedByServer)
	assert.Equal(t, StreamDisconnected, client.Status())
}

func TestPushSyncClient_SingleActiveConnection(t *testing.T) {
	c := newTestCache()
	conn := newFakeConn()
	client, dials := newTestPushClient(c, conn)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, client)
	require.Eventually(t, func() bool { return client.Status() == StreamConnected }, waitFor, tick)

	err := client.Run(ctx)
	assert.ErrorIs(t, err, ErrStreamAlreadyActive)
	assert.Equal(t, 1, *dials)

	cancel()
	assert.NoError(t, <-done)
}

func TestPushSyncClient_RequiresCredential(t *testing.T) {
	c := newTestCache()
	dialed := false
	dial := func(_ context.Context, _, _ string) (stream.Conn, error) {
		dialed = true
		return newFakeConn(), nil
	}
	client := NewPushSyncClient(testConfig(), logger.NewNop(), session.NewCredential("", time.Time{}), c, dial)

	err := client.Run(context.Background())
	assert.ErrorIs(t, err, session.ErrMissingCredential)
	assert.False(t, dialed)
}

func TestPushSyncClient_DialFailure(t *testing.T) {
	dial := func(_ context.Context, _, _ string) (stream.Conn, error) {
		return nil, errors.New("connection refused")
	}
	client := NewPushSyncClient(testConfig(), logger.NewNop(), session.NewCredential("token", time.Time{}), newTestCache(), dial)

	err := client.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StreamDisconnected, client.Status())
}

func TestPushSyncClient_KeepAlive(t *testing.T) {
	cfg := testConfig()
	cfg.Stream.PingInterval = 5 * time.Millisecond
	conn := newFakeConn()
	dial := func(_ context.Context, _, _ string) (stream.Conn, error) { return conn, nil }
	client := NewPushSyncClient(cfg, logger.NewNop(), session.NewCredential("token", time.Time{}), newTestCache(), dial)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, client)

	require.Eventually(t, func() bool { return conn.pings.Load() >= 2 }, waitFor, tick)

	cancel()
	assert.NoError(t, <-done)
}

// A pull result and a later push for the same ticker: the push wins because
// it arrived last.
func TestSync_PullThenPush(t *testing.T) {
	c := newTestCache()

	repo := new(MockPredictionAPIRepository)
	repo.On("Predict", mock.Anything, model.Ticker("AAPL")).Return(predictResponse("150"), nil)
	pull := NewPullSyncClient(testConfig(), logger.NewNop(), repo, c)

	conn := newFakeConn()
	push, _ := newTestPushClient(c, conn)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, push)

	pull.RequestPrediction(ctx, "AAPL")
	got, _ := c.Get("AAPL")
	assert.Equal(t, "150", got.Prediction.PredictedClose.String())

	conn.messages <- []byte(`{"ticker":"AAPL","predicted_close":151,"recommended_strategies":[]}`)
	require.Eventually(t, func() bool {
		got, _ := c.Get("AAPL")
		return got.Prediction != nil && got.Prediction.PredictedClose.String() == "151"
	}, waitFor, tick)

	cancel()
	assert.NoError(t, <-done)
}
