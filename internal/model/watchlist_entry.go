package model

import "time"

// WatchlistEntry persists one symbol of the watchlist set.
type WatchlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"not null;uniqueIndex" json:"symbol"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}
