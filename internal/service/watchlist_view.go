package service

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"options-dashboard/internal/model"
	"options-dashboard/internal/repository"
)

type SortMode string

const (
	SortInsertion    SortMode = "insertion"
	SortAlphabetical SortMode = "alphabetical"
)

// ParseSortMode maps a query value to a SortMode. Empty means insertion order.
func ParseSortMode(value string) (SortMode, error) {
	switch mode := SortMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "", SortInsertion:
		return SortInsertion, nil
	case SortAlphabetical:
		return SortAlphabetical, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q", value)
	}
}

// FilterMode is a sector tag. The empty value selects everything.
type FilterMode string

// WatchlistView derives a presentation sequence from the watchlist without
// touching the store.
type WatchlistView interface {
	Project(watchlist []model.Ticker, sort SortMode, filter FilterMode) iter.Seq[model.Ticker]
}

type watchlistView struct {
	sectorRepo repository.SectorRepository
}

func NewWatchlistView(sectorRepo repository.SectorRepository) WatchlistView {
	return &watchlistView{
		sectorRepo: sectorRepo,
	}
}

// Project snapshots watchlist and returns a sequence that sorts and filters
// it each time it is ranged over.
func (v *watchlistView) Project(watchlist []model.Ticker, sort SortMode, filter FilterMode) iter.Seq[model.Ticker] {
	snapshot := slices.Clone(watchlist)
	tag := strings.ToLower(strings.TrimSpace(string(filter)))

	return func(yield func(model.Ticker) bool) {
		ordered := snapshot
		if sort == SortAlphabetical {
			ordered = slices.Clone(snapshot)
			slices.SortStableFunc(ordered, func(a, b model.Ticker) int {
				return strings.Compare(strings.ToLower(a.String()), strings.ToLower(b.String()))
			})
		}

		for _, ticker := range ordered {
			if tag != "" && !slices.Contains(v.sectorRepo.Sectors(ticker), tag) {
				continue
			}
			if !yield(ticker) {
				return
			}
		}
	}
}
