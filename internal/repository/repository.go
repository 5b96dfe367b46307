package repository

import (
	"options-dashboard/config"
	"options-dashboard/pkg/httpclient"
	"options-dashboard/pkg/logger"
	"options-dashboard/pkg/session"

	"gorm.io/gorm"
)

type Repository struct {
	PredictionAPIRepo     PredictionAPIRepository
	PortfolioAPIRepo      PortfolioAPIRepository
	WatchlistRepo         WatchlistRepository
	PredictionHistoryRepo PredictionHistoryRepository
	SectorRepo            SectorRepository
}

// NewRepository wires the upstream clients and, when db is not nil, the
// Postgres-backed stores. Without a database the stores fall back to
// in-process defaults.
func NewRepository(cfg *config.Config, db *gorm.DB, credential *session.Credential, log *logger.Logger) (*Repository, error) {
	httpClient := httpclient.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)

	sectorRepo, err := NewSectorRepository(cfg.Sectors.File)
	if err != nil {
		return nil, err
	}

	repo := &Repository{
		PredictionAPIRepo:     NewPredictionAPIRepository(cfg, log, httpClient, credential),
		PortfolioAPIRepo:      NewPortfolioAPIRepository(cfg, log, httpClient, credential),
		WatchlistRepo:         NewStaticWatchlistRepository(),
		PredictionHistoryRepo: NewNoopPredictionHistoryRepository(),
		SectorRepo:            sectorRepo,
	}

	if db != nil {
		repo.WatchlistRepo = NewWatchlistRepository(db)
		repo.PredictionHistoryRepo = NewPredictionHistoryRepository(db)
	}

	return repo, nil
}
