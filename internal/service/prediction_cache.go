package service

import (
	"fmt"
	"sort"
	"sync"

	"options-dashboard/internal/model"
	"options-dashboard/pkg/cache"
	"options-dashboard/pkg/common"
)

// MergeListener is called after every merge with the value that was stored.
// It runs while the cache is locked and must return promptly.
type MergeListener func(result model.PredictionResult)

// PredictionCache maps each ticker to its latest prediction or error. It is
// the only place where pull and push results meet.
type PredictionCache interface {
	Get(ticker model.Ticker) (model.PredictionResult, bool)
	Merge(ticker model.Ticker, result model.PredictionResult)
	Remove(ticker model.Ticker)
	All() []model.PredictionResult
	Subscribe(listener MergeListener)
}

type predictionCache struct {
	mu        sync.Mutex
	store     cache.Cache
	listeners []MergeListener
}

func NewPredictionCache(store cache.Cache) PredictionCache {
	return &predictionCache{
		store: store,
	}
}

func cacheKey(ticker model.Ticker) string {
	return fmt.Sprintf(common.KEY_PREDICTION, ticker)
}

func (c *predictionCache) Get(ticker model.Ticker) (model.PredictionResult, bool) {
	result, ok := cache.GetFromCache[model.PredictionResult](c.store, cacheKey(ticker))
	if !ok {
		return model.PredictionResult{}, false
	}
	return result.Clone(), true
}

// Merge overwrites the entry for ticker. The last call wins whatever the
// channel or the timestamp carried by result. Listeners run under the lock so
// they observe merges in write order; they must not block or call Merge.
func (c *predictionCache) Merge(ticker model.Ticker, result model.PredictionResult) {
	result = result.Clone()
	result.Ticker = ticker

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Set(cacheKey(ticker), result, cache.NoExpiration)
	for _, listener := range c.listeners {
		listener(result.Clone())
	}
}

func (c *predictionCache) Remove(ticker model.Ticker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(cacheKey(ticker))
}

// All returns every entry ordered by ticker.
func (c *predictionCache) All() []model.PredictionResult {
	items := c.store.Items()
	results := make([]model.PredictionResult, 0, len(items))
	for _, item := range items {
		if result, ok := item.(model.PredictionResult); ok {
			results = append(results, result.Clone())
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Ticker < results[j].Ticker
	})
	return results
}

func (c *predictionCache) Subscribe(listener MergeListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}
