package cmd

import (
	"context"
	"time"

	"options-dashboard/config"
	"options-dashboard/pkg/cache"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/middleware"
	"options-dashboard/pkg/postgres"
	"options-dashboard/pkg/realtime"
	"options-dashboard/pkg/session"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AppDependency struct {
	db         *postgres.DB
	cfg        *config.Config
	log        *logger.Logger
	validator  *goValidator.Validate
	echo       *echo.Echo
	cache      cache.Cache
	credential *session.Credential
	broker     *realtime.Broker
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	var db *postgres.DB
	if cfg.DB.Enabled {
		db, err = postgres.NewDB(cfg.DB, log)
		if err != nil {
			log.Error("Failed to connect to database", zap.Error(err))
			return nil, err
		}
	} else {
		log.Info("Database disabled, watchlist and prediction history are kept in memory")
	}

	var expiresAt time.Time
	if cfg.Session.TTL > 0 {
		expiresAt = time.Now().Add(cfg.Session.TTL)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.NewRequestLoggerMiddleware(log.Named("http")))
	return &AppDependency{
		cfg:        cfg,
		log:        log,
		validator:  goValidator.New(),
		db:         db,
		echo:       e,
		cache:      cache.NewCache(cache.NoExpiration, cfg.Cache.CleanupInterval),
		credential: session.NewCredential(cfg.Session.Token, expiresAt),
		broker:     realtime.NewBroker(log.Named("realtime")),
	}, nil
}

// gormDB is nil when the database is disabled.
func (d *AppDependency) gormDB() *gorm.DB {
	if d.db == nil {
		return nil
	}
	return d.db.DB
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	_ = d.log.Sync()
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
