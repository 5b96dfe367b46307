package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"options-dashboard/config"
	"options-dashboard/internal/dto"
	"options-dashboard/internal/model"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/session"
	"options-dashboard/pkg/stream"
	"options-dashboard/pkg/utils"
)

var (
	ErrStreamAlreadyActive  = errors.New("prediction stream is already active")
	ErrStreamClosedByServer = errors.New("prediction stream closed by server")
)

type StreamStatus string

const (
	StreamIdle         StreamStatus = "idle"
	StreamConnecting   StreamStatus = "connecting"
	StreamConnected    StreamStatus = "connected"
	StreamDisconnected StreamStatus = "disconnected"
)

// DialFunc opens the streaming connection.
type DialFunc func(ctx context.Context, url, token string) (stream.Conn, error)

func defaultDial(ctx context.Context, url, token string) (stream.Conn, error) {
	return stream.Dial(ctx, url, token)
}

// PushSyncClient keeps one streaming connection open for the lifetime of the
// ctx given to Run and merges every decoded message into the cache.
type PushSyncClient interface {
	Run(ctx context.Context) error
	Status() StreamStatus
}

type pushSyncClient struct {
	cfg        *config.Config
	log        *logger.Logger
	credential *session.Credential
	cache      PredictionCache
	dial       DialFunc
	now        func() time.Time

	active atomic.Bool
	mu     sync.RWMutex
	status StreamStatus
}

// NewPushSyncClient uses the websocket dialer when dial is nil.
func NewPushSyncClient(
	cfg *config.Config,
	log *logger.Logger,
	credential *session.Credential,
	cache PredictionCache,
	dial DialFunc,
) PushSyncClient {
	if dial == nil {
		dial = defaultDial
	}
	return &pushSyncClient{
		cfg:        cfg,
		log:        log,
		credential: credential,
		cache:      cache,
		dial:       dial,
		now:        time.Now,
		status:     StreamIdle,
	}
}

func (p *pushSyncClient) Status() StreamStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *pushSyncClient) setStatus(status StreamStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
}

// Run connects and reads until ctx ends or the connection drops. It returns
// nil on deactivation and an error when the connection was lost; the caller
// decides whether to reconnect. Only one Run may be active at a time.
func (p *pushSyncClient) Run(ctx context.Context) error {
	if !p.active.CompareAndSwap(false, true) {
		return ErrStreamAlreadyActive
	}
	defer p.active.Store(false)

	token, err := p.credential.Token()
	if err != nil {
		p.setStatus(StreamDisconnected)
		return fmt.Errorf("prediction stream: %w", err)
	}

	p.setStatus(StreamConnecting)
	conn, err := p.dial(ctx, p.cfg.Stream.URL, token)
	if err != nil {
		p.setStatus(StreamDisconnected)
		p.log.ErrorContext(ctx, "Failed to connect prediction stream", logger.ErrorField(err))
		return fmt.Errorf("failed to connect prediction stream: %w", err)
	}
	p.setStatus(StreamConnected)
	p.log.InfoContext(ctx, "Prediction stream connected", logger.StringField("url", p.cfg.Stream.URL))

	done := make(chan struct{})
	defer close(done)
	defer conn.Close()

	utils.GoSafe(func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	})

	if p.cfg.Stream.PingInterval > 0 {
		utils.GoSafe(func() {
			p.keepAlive(ctx, conn, done)
		})
	}

	for {
		data, err := conn.ReadMessage()
		if ctx.Err() != nil {
			p.setStatus(StreamIdle)
			p.log.InfoContext(ctx, "Prediction stream closed")
			return nil
		}
		if stream.IsNormalClose(err) {
			p.setStatus(StreamDisconnected)
			p.log.InfoContext(ctx, "Prediction stream closed by server", logger.ErrorField(err))
			return fmt.Errorf("%w: %w", ErrStreamClosedByServer, err)
		}
		if err != nil {
			p.setStatus(StreamDisconnected)
			p.log.WarnContext(ctx, "Prediction stream lost", logger.ErrorField(err))
			return fmt.Errorf("prediction stream lost: %w", err)
		}
		p.handleMessage(ctx, data)
	}
}

func (p *pushSyncClient) keepAlive(ctx context.Context, conn stream.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(p.cfg.Stream.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				p.log.WarnContext(ctx, "Prediction stream ping failed", logger.ErrorField(err))
				return
			}
		}
	}
}

// streamMessage is a pushed prediction. The backend may push a failure as
// {ticker, detail} instead.
type streamMessage struct {
	dto.PredictResponse
	Detail json.RawMessage `json:"detail,omitempty"`
}

// handleMessage merges one inbound payload. Anything that does not decode to
// a prediction for a valid ticker is dropped.
func (p *pushSyncClient) handleMessage(ctx context.Context, data []byte) {
	var msg streamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		p.log.WarnContext(ctx, "Dropping malformed stream message", logger.ErrorField(err))
		return
	}

	ticker, err := model.NormalizeTicker(msg.Ticker)
	if err != nil {
		p.log.WarnContext(ctx, "Dropping stream message with invalid ticker", logger.ErrorField(err))
		return
	}

	if msg.PredictedClose == nil && len(msg.Detail) > 0 {
		detail := dto.ErrorResponse{Detail: msg.Detail}.Message()
		p.cache.Merge(ticker, model.NewPredictionFailure(ticker, detail, p.now()))
		return
	}

	result, err := toPredictionResult(ticker, &msg.PredictResponse, p.now())
	if err != nil {
		p.log.WarnContext(ctx, "Dropping incomplete stream message",
			logger.StringField("ticker", ticker.String()),
			logger.ErrorField(err))
		return
	}
	p.cache.Merge(ticker, result)
}
