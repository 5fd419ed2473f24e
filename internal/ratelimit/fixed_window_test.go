package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeStore is an in-memory Store with programmable failures.
type fakeStore struct {
	counts  map[string]int64
	ttls    map[string]time.Duration
	incrErr error
	ttlErr  error

	expireCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Incr(_ context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.expireCalls++
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) TTL(_ context.Context, key string) (time.Duration, error) {
	if f.ttlErr != nil {
		return 0, f.ttlErr
	}
	return f.ttls[key], nil
}

func TestFixedWindow_BoundaryAt100(t *testing.T) {
	store := newFakeStore()
	fw := &FixedWindow{Store: store, Limit: 100, Window: time.Hour, Prefix: "cron:rate:"}

	for i := 1; i <= 100; i++ {
		res := fw.Check(context.Background(), "checkUserStatus")
		if !res.Allowed {
			t.Fatalf("request %d denied, the 100th within the window must still pass", i)
		}
	}

	res := fw.Check(context.Background(), "checkUserStatus")
	if res.Allowed {
		t.Fatal("request 101 must be denied")
	}
	if res.RetryAfter != time.Hour {
		t.Fatalf("RetryAfter = %v, want the remaining window TTL", res.RetryAfter)
	}
}

func TestFixedWindow_ExpireOnlyOnFirstHit(t *testing.T) {
	store := newFakeStore()
	fw := &FixedWindow{Store: store, Limit: 10, Window: time.Hour, Prefix: "cron:rate:"}

	for i := 0; i < 5; i++ {
		fw.Check(context.Background(), "weeklyDigest")
	}
	if store.expireCalls != 1 {
		t.Fatalf("expire called %d times, want once (window anchored at first hit)", store.expireCalls)
	}
	if ttl := store.ttls["cron:rate:weeklyDigest"]; ttl != time.Hour {
		t.Fatalf("window TTL = %v, want 1h", ttl)
	}
}

func TestFixedWindow_SeparateWindowsPerJob(t *testing.T) {
	store := newFakeStore()
	fw := &FixedWindow{Store: store, Limit: 1, Window: time.Hour, Prefix: "cron:rate:"}

	if !fw.Check(context.Background(), "a").Allowed {
		t.Fatal("first hit on job a must pass")
	}
	if fw.Check(context.Background(), "a").Allowed {
		t.Fatal("second hit on job a must be denied at limit 1")
	}
	if !fw.Check(context.Background(), "b").Allowed {
		t.Fatal("job b has its own window")
	}
}

func TestFixedWindow_FailOpenOnStoreError(t *testing.T) {
	store := newFakeStore()
	store.incrErr = errors.New("redis down")
	fw := &FixedWindow{Store: store, Limit: 1, Window: time.Hour}

	for i := 0; i < 3; i++ {
		if !fw.Check(context.Background(), "job").Allowed {
			t.Fatal("store errors must fail open")
		}
	}
}

func TestFixedWindow_NilStoreDisablesLimiting(t *testing.T) {
	fw := &FixedWindow{Store: nil, Limit: 1, Window: time.Hour}
	for i := 0; i < 5; i++ {
		if !fw.Check(context.Background(), "job").Allowed {
			t.Fatal("nil store must disable limiting entirely")
		}
	}
}

func TestFixedWindow_TTLErrorFallsBackToWindow(t *testing.T) {
	store := newFakeStore()
	store.ttlErr = errors.New("ttl failed")
	fw := &FixedWindow{Store: store, Limit: 1, Window: 30 * time.Minute}

	fw.Check(context.Background(), "job")
	res := fw.Check(context.Background(), "job")
	if res.Allowed {
		t.Fatal("second hit must be denied")
	}
	if res.RetryAfter != 30*time.Minute {
		t.Fatalf("RetryAfter = %v, want the configured window as fallback", res.RetryAfter)
	}
}
