package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Provider supplies bar history for a symbol. Implementations live outside
// this module (exchange clients, file readers); the engine only consumes the
// interface. A failed or empty fetch is reported as an error and treated as
// insufficient data by the caller, never as a crash.
type Provider interface {
	GetBars(ctx context.Context, symbol string, interval Interval, limit int) (*BarSeries, error)
}

// cacheEntry holds one fetched series with its expiry.
type cacheEntry struct {
	series    *BarSeries
	expiresAt time.Time
}

// CachedProvider wraps a Provider with an in-memory TTL cache so the three
// horizon fetches of repeated analyses do not hammer the upstream source.
type CachedProvider struct {
	upstream Provider
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	now      func() time.Time
}

// NewCachedProvider wraps upstream with caching.
func NewCachedProvider(upstream Provider) *CachedProvider {
	return &CachedProvider{
		upstream: upstream,
		entries:  make(map[string]cacheEntry),
		now:      time.Now,
	}
}

// GetBars returns a cached series when fresh, otherwise fetches and caches.
func (p *CachedProvider) GetBars(ctx context.Context, symbol string, interval Interval, limit int) (*BarSeries, error) {
	key := fmt.Sprintf("%s:%s:%d", symbol, interval, limit)

	p.mu.RLock()
	entry, ok := p.entries[key]
	p.mu.RUnlock()
	if ok && p.now().Before(entry.expiresAt) {
		return entry.series, nil
	}

	series, err := p.upstream.GetBars(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.entries[key] = cacheEntry{series: series, expiresAt: p.now().Add(cacheTTL(interval))}
	p.mu.Unlock()

	return series, nil
}

// Evict drops expired entries. Safe to call from a background sweeper.
func (p *CachedProvider) Evict() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for key, entry := range p.entries {
		if now.After(entry.expiresAt) {
			delete(p.entries, key)
		}
	}
}

// cacheTTL scales the cache lifetime with the bar interval: fast intervals
// go stale quickly, weekly bars barely move.
func cacheTTL(interval Interval) time.Duration {
	switch interval {
	case Interval1m:
		return 30 * time.Second
	case Interval5m:
		return 2 * time.Minute
	case Interval15m:
		return 5 * time.Minute
	case Interval1h:
		return 30 * time.Minute
	case Interval4h:
		return 2 * time.Hour
	case Interval1d:
		return 12 * time.Hour
	case Interval1wk:
		return 24 * time.Hour
	default:
		return time.Minute
	}
}
