// Package cache provides Redis-backed caching of analysis reports with
// graceful degradation: when Redis is down the cache reports misses and
// drops writes instead of failing the analysis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"stock-analyst/config"
	"stock-analyst/internal/analysis"
)

// ErrCacheMiss is returned when no report is cached for a symbol.
var ErrCacheMiss = errors.New("cache miss")

// ErrCacheUnavailable is returned while the circuit breaker holds Redis
// unhealthy.
var ErrCacheUnavailable = errors.New("cache unavailable")

const reportKeyPrefix = "analysis:report:%s"

// redisClient is the slice of *redis.Client the cache uses. Tests swap in
// a fake.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// ReportCache stores full analysis reports keyed by symbol. A circuit
// breaker trips after repeated Redis failures and probes for recovery in
// the background, so a dead Redis costs one timeout rather than one per
// request.
type ReportCache struct {
	client redisClient
	ttl    time.Duration
	logger zerolog.Logger

	mu           sync.RWMutex
	healthy      bool
	failureCount int
	lastCheck    time.Time

	maxFailures   int
	checkInterval time.Duration
}

// NewReportCache connects to Redis using the provided configuration. A
// failed initial connection is not an error: the cache starts degraded and
// recovers once Redis comes back.
func NewReportCache(cfg config.RedisConfig, logger zerolog.Logger) (*ReportCache, error) {
	if !cfg.Enabled {
		return nil, errors.New("redis is not enabled in configuration")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	rc := &ReportCache{
		client:        client,
		ttl:           cfg.TTL,
		logger:        logger.With().Str("component", "report_cache").Logger(),
		maxFailures:   3,
		checkInterval: 30 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		rc.logger.Warn().Err(err).Str("address", cfg.Address).Msg("initial redis connection failed, starting degraded")
		return rc, nil
	}

	rc.healthy = true
	rc.lastCheck = time.Now()
	rc.logger.Info().Str("address", cfg.Address).Dur("ttl", cfg.TTL).Msg("redis connected")
	return rc, nil
}

func reportKey(symbol string) string {
	return fmt.Sprintf(reportKeyPrefix, symbol)
}

// Get returns the cached report for a symbol, ErrCacheMiss when none is
// stored, or ErrCacheUnavailable while the breaker is open.
func (rc *ReportCache) Get(ctx context.Context, symbol string) (*analysis.Report, error) {
	rc.checkHealth()

	if !rc.IsHealthy() {
		return nil, ErrCacheUnavailable
	}

	data, err := rc.client.Get(ctx, reportKey(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			rc.recordSuccess()
			return nil, ErrCacheMiss
		}
		rc.recordFailure()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var report analysis.Report
	if err := json.Unmarshal(data, &report); err != nil {
		// A corrupt entry is treated as a miss so the caller recomputes
		// and overwrites it.
		rc.logger.Warn().Err(err).Str("symbol", symbol).Msg("dropping corrupt cached report")
		rc.recordSuccess()
		return nil, ErrCacheMiss
	}

	rc.recordSuccess()
	return &report, nil
}

// Put stores a report under its symbol with the configured TTL.
func (rc *ReportCache) Put(ctx context.Context, report *analysis.Report) error {
	rc.checkHealth()

	if !rc.IsHealthy() {
		return ErrCacheUnavailable
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := rc.client.Set(ctx, reportKey(report.Symbol), data, rc.ttl).Err(); err != nil {
		rc.recordFailure()
		return fmt.Errorf("redis set: %w", err)
	}

	rc.recordSuccess()
	return nil
}

// Invalidate removes the cached report for a symbol, if any.
func (rc *ReportCache) Invalidate(ctx context.Context, symbol string) error {
	rc.checkHealth()

	if !rc.IsHealthy() {
		return ErrCacheUnavailable
	}

	if err := rc.client.Del(ctx, reportKey(symbol)).Err(); err != nil {
		rc.recordFailure()
		return fmt.Errorf("redis del: %w", err)
	}

	rc.recordSuccess()
	return nil
}

// IsHealthy reports whether Redis is currently considered available.
func (rc *ReportCache) IsHealthy() bool {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.healthy
}

func (rc *ReportCache) recordFailure() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.failureCount++
	if rc.failureCount >= rc.maxFailures {
		if rc.healthy {
			rc.logger.Warn().Int("failures", rc.failureCount).Msg("circuit breaker open, redis marked unhealthy")
		}
		rc.healthy = false
	}
}

func (rc *ReportCache) recordSuccess() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if !rc.healthy {
		rc.logger.Info().Msg("circuit breaker closed, redis recovered")
	}
	rc.healthy = true
	rc.failureCount = 0
	rc.lastCheck = time.Now()
}

// checkHealth probes Redis in the background once the breaker has been
// open long enough.
func (rc *ReportCache) checkHealth() {
	rc.mu.RLock()
	shouldCheck := !rc.healthy && time.Since(rc.lastCheck) >= rc.checkInterval
	rc.mu.RUnlock()

	if !shouldCheck {
		return
	}

	rc.mu.Lock()
	rc.lastCheck = time.Now()
	rc.mu.Unlock()

	go func() {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := rc.client.Ping(pingCtx).Err(); err == nil {
			rc.recordSuccess()
		}
	}()
}

// Close closes the Redis connection.
func (rc *ReportCache) Close() error {
	if rc.client != nil {
		return rc.client.Close()
	}
	return nil
}
