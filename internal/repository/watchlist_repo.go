package repository

import (
	"context"

	"options-dashboard/internal/model"
	"options-dashboard/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultWatchlist seeds a fresh install.
var DefaultWatchlist = []model.Ticker{"AAPL", "TSLA"}

type WatchlistRepository interface {
	List(ctx context.Context) ([]model.WatchlistEntry, error)
	Add(ctx context.Context, entry model.WatchlistEntry, opts ...utils.DBOption) error
	Remove(ctx context.Context, symbol string, opts ...utils.DBOption) error
}

type watchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{
		db: db,
	}
}

func (r *watchlistRepository) List(ctx context.Context) ([]model.WatchlistEntry, error) {
	var entries []model.WatchlistEntry
	if err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Add ignores a symbol that is already stored.
func (r *watchlistRepository) Add(ctx context.Context, entry model.WatchlistEntry, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "symbol"}}, DoNothing: true}).
		Create(&entry).Error
}

func (r *watchlistRepository) Remove(ctx context.Context, symbol string, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("symbol = ?", symbol).
		Delete(&model.WatchlistEntry{}).Error
}

// staticWatchlistRepository serves the default watchlist when no database is
// configured. Changes then live only in the ticker store.
type staticWatchlistRepository struct{}

func NewStaticWatchlistRepository() WatchlistRepository {
	return staticWatchlistRepository{}
}

func (staticWatchlistRepository) List(_ context.Context) ([]model.WatchlistEntry, error) {
	entries := make([]model.WatchlistEntry, 0, len(DefaultWatchlist))
	for i, t := range DefaultWatchlist {
		entries = append(entries, model.WatchlistEntry{Symbol: t.String(), Position: i})
	}
	return entries, nil
}

func (staticWatchlistRepository) Add(_ context.Context, _ model.WatchlistEntry, _ ...utils.DBOption) error {
	return nil
}

func (staticWatchlistRepository) Remove(_ context.Context, _ string, _ ...utils.DBOption) error {
	return nil
}
