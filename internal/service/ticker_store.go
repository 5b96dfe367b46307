package service

import (
	"slices"
	"sync"

	"options-dashboard/internal/model"
)

// FetchTrigger is invoked once for every ticker newly added to the tracked set.
type FetchTrigger func(ticker model.Ticker)

// TickerStore holds the tracked tickers and the independent watchlist. Both
// sets keep insertion order and never hold duplicates.
type TickerStore interface {
	AddTicker(symbol string) (model.Ticker, bool, error)
	RemoveTicker(symbol string) (model.Ticker, bool, error)
	AddToWatchlist(symbol string) (model.Ticker, bool, error)
	RemoveFromWatchlist(symbol string) (model.Ticker, bool, error)
	Tracked() []model.Ticker
	Watchlist() []model.Ticker
	IsTracked(ticker model.Ticker) bool
	IsWatchlisted(ticker model.Ticker) bool
}

type tickerStore struct {
	mu        sync.RWMutex
	tracked   orderedSet
	watchlist orderedSet
	onAdded   FetchTrigger
}

// NewTickerStore creates an empty store. onAdded may be nil.
func NewTickerStore(onAdded FetchTrigger) TickerStore {
	return &tickerStore{
		onAdded: onAdded,
	}
}

// AddTicker normalizes symbol and appends it to the tracked set. The bool
// result is false when the ticker was already tracked; the fetch trigger
// only fires for a real insertion.
func (s *tickerStore) AddTicker(symbol string) (model.Ticker, bool, error) {
	ticker, err := model.NormalizeTicker(symbol)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	added := s.tracked.add(ticker)
	s.mu.Unlock()

	if added && s.onAdded != nil {
		s.onAdded(ticker)
	}
	return ticker, added, nil
}

func (s *tickerStore) RemoveTicker(symbol string) (model.Ticker, bool, error) {
	ticker, err := model.NormalizeTicker(symbol)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return ticker, s.tracked.remove(ticker), nil
}

func (s *tickerStore) AddToWatchlist(symbol string) (model.Ticker, bool, error) {
	ticker, err := model.NormalizeTicker(symbol)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return ticker, s.watchlist.add(ticker), nil
}

// RemoveFromWatchlist leaves the tracked set untouched.
func (s *tickerStore) RemoveFromWatchlist(symbol string) (model.Ticker, bool, error) {
	ticker, err := model.NormalizeTicker(symbol)
	if err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return ticker, s.watchlist.remove(ticker), nil
}

func (s *tickerStore) Tracked() []model.Ticker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracked.values()
}

func (s *tickerStore) Watchlist() []model.Ticker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watchlist.values()
}

func (s *tickerStore) IsTracked(ticker model.Ticker) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracked.contains(ticker)
}

func (s *tickerStore) IsWatchlisted(ticker model.Ticker) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watchlist.contains(ticker)
}

// orderedSet is not safe for concurrent use; tickerStore guards it.
type orderedSet struct {
	items []model.Ticker
}

func (o *orderedSet) add(t model.Ticker) bool {
	if o.contains(t) {
		return false
	}
	o.items = append(o.items, t)
	return true
}

func (o *orderedSet) remove(t model.Ticker) bool {
	i := slices.Index(o.items, t)
	if i < 0 {
		return false
	}
	o.items = slices.Delete(o.items, i, i+1)
	return true
}

func (o *orderedSet) contains(t model.Ticker) bool {
	return slices.Contains(o.items, t)
}

func (o *orderedSet) values() []model.Ticker {
	return slices.Clone(o.items)
}
