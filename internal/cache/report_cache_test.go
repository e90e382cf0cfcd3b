package cache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"stock-analyst/internal/analysis"
)

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error

	getCalls int
	setCalls int
	delCalls int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case string:
		f.data[key] = v
	case []byte:
		f.data[key] = string(v)
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delCalls++
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var deleted int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, nil)
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Close() error { return nil }

func (f *fakeRedis) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func newTestCache(client redisClient) *ReportCache {
	return &ReportCache{
		client:        client,
		ttl:           15 * time.Minute,
		logger:        zerolog.Nop(),
		healthy:       true,
		lastCheck:     time.Now(),
		maxFailures:   3,
		checkInterval: 30 * time.Second,
	}
}

func sampleReport(symbol string) *analysis.Report {
	return &analysis.Report{
		ID:          uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Symbol:      symbol,
		GeneratedAt: time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC),
		Consensus: analysis.ConsensusResult{
			AverageScore: 72.5,
			Signal:       analysis.Buy,
			Confidence:   80,
		},
	}
}

func TestReportCacheRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	rc := newTestCache(fake)

	want := sampleReport("AAPL")
	if err := rc.Put(context.Background(), want); err != nil {
		t.Fatal(err)
	}
	if fake.ttls[reportKey("AAPL")] != 15*time.Minute {
		t.Fatalf("ttl = %v, want 15m", fake.ttls[reportKey("AAPL")])
	}

	got, err := rc.Get(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestReportCacheMiss(t *testing.T) {
	rc := newTestCache(newFakeRedis())

	if _, err := rc.Get(context.Background(), "MSFT"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestReportCacheCorruptEntryIsAMiss(t *testing.T) {
	fake := newFakeRedis()
	fake.data[reportKey("AAPL")] = "{not json"
	rc := newTestCache(fake)

	if _, err := rc.Get(context.Background(), "AAPL"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestReportCacheInvalidate(t *testing.T) {
	fake := newFakeRedis()
	rc := newTestCache(fake)

	if err := rc.Put(context.Background(), sampleReport("AAPL")); err != nil {
		t.Fatal(err)
	}
	if err := rc.Invalidate(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}
	if _, err := rc.Get(context.Background(), "AAPL"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err after invalidate = %v, want ErrCacheMiss", err)
	}
}

func TestReportCacheCircuitBreakerOpens(t *testing.T) {
	fake := newFakeRedis()
	fake.setError(errors.New("connection refused"))
	rc := newTestCache(fake)

	for i := 0; i < 3; i++ {
		if err := rc.Put(context.Background(), sampleReport("AAPL")); err == nil {
			t.Fatal("expected error while redis is down")
		}
	}
	if rc.IsHealthy() {
		t.Fatal("breaker should be open after repeated failures")
	}

	// Once open, requests do not reach Redis at all.
	before := fake.getCalls
	if _, err := rc.Get(context.Background(), "AAPL"); !errors.Is(err, ErrCacheUnavailable) {
		t.Fatalf("err = %v, want ErrCacheUnavailable", err)
	}
	if fake.getCalls != before {
		t.Fatal("open breaker should not issue redis commands")
	}
}

func TestReportCacheCircuitBreakerRecovers(t *testing.T) {
	fake := newFakeRedis()
	fake.setError(errors.New("connection refused"))
	rc := newTestCache(fake)

	for i := 0; i < 3; i++ {
		rc.Put(context.Background(), sampleReport("AAPL"))
	}
	if rc.IsHealthy() {
		t.Fatal("breaker should be open")
	}

	fake.setError(nil)
	rc.mu.Lock()
	rc.checkInterval = 0
	rc.lastCheck = time.Time{}
	rc.mu.Unlock()

	// Trigger the background probe and wait for it to close the breaker.
	rc.Get(context.Background(), "AAPL")
	deadline := time.Now().Add(time.Second)
	for !rc.IsHealthy() {
		if time.Now().After(deadline) {
			t.Fatal("breaker did not close after redis recovered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := rc.Put(context.Background(), sampleReport("AAPL")); err != nil {
		t.Fatal(err)
	}
}
