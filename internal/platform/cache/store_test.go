package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStoreGetOrLoadCollapsesConcurrentLoads(t *testing.T) {
	store := NewStore(time.Minute)

	var loads int32
	release := make(chan struct{})
	loader := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return []string{"Virtanen Aatos", "Korhonen Eero"}, nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]any, workers)
	failures := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			value, err := store.GetOrLoad(context.Background(), "players:current", loader)
			results[slot] = value
			failures[slot] = err
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Fatalf("expected a single load, got %d", got)
	}
	for i := 0; i < workers; i++ {
		if failures[i] != nil {
			t.Fatalf("worker %d failed: %v", i, failures[i])
		}
		players, ok := results[i].([]string)
		if !ok || len(players) != 2 {
			t.Fatalf("worker %d got unexpected value %#v", i, results[i])
		}
	}
}

func TestStoreGetOrLoadCachesAfterFirstLoad(t *testing.T) {
	store := NewStore(time.Minute)

	var loads int32
	loader := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&loads, 1)
		return 3, nil
	}

	for i := 0; i < 5; i++ {
		value, err := store.GetOrLoad(context.Background(), "round:current", loader)
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if value != 3 {
			t.Fatalf("call %d got %v, want 3", i, value)
		}
	}

	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Fatalf("expected a single load, got %d", got)
	}
}

func TestStoreDeletePrefixEvictsMatchingKeys(t *testing.T) {
	store := NewStore(time.Minute)

	counts := map[string]*int32{
		"fixtures:round:1": new(int32),
		"fixtures:round:2": new(int32),
		"players:current":  new(int32),
	}
	load := func(key string) {
		t.Helper()
		if _, err := store.GetOrLoad(context.Background(), key, func(ctx context.Context) (any, error) {
			atomic.AddInt32(counts[key], 1)
			return key, nil
		}); err != nil {
			t.Fatalf("load %q failed: %v", key, err)
		}
	}

	for key := range counts {
		load(key)
	}

	store.DeletePrefix(context.Background(), "fixtures:")

	for key := range counts {
		load(key)
	}

	if got := atomic.LoadInt32(counts["fixtures:round:1"]); got != 2 {
		t.Fatalf("fixtures:round:1 loaded %d times, want 2", got)
	}
	if got := atomic.LoadInt32(counts["fixtures:round:2"]); got != 2 {
		t.Fatalf("fixtures:round:2 loaded %d times, want 2", got)
	}
	if got := atomic.LoadInt32(counts["players:current"]); got != 1 {
		t.Fatalf("players:current loaded %d times, want 1", got)
	}
}

func TestStoreExpiresEntriesAfterTTL(t *testing.T) {
	store := NewStore(10 * time.Millisecond)

	var loads int32
	loader := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&loads, 1)
		return "stale-check", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "fixtures:round:3", loader); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := store.GetOrLoad(context.Background(), "fixtures:round:3", loader); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if got := atomic.LoadInt32(&loads); got != 2 {
		t.Fatalf("expected expired entry to reload, got %d loads", got)
	}
}

func TestStoreGetOrLoadPropagatesLoaderError(t *testing.T) {
	store := NewStore(time.Minute)
	wantErr := errors.New("ledger offline")

	_, err := store.GetOrLoad(context.Background(), "players:current", func(ctx context.Context) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got error %v, want %v", err, wantErr)
	}

	var loads int32
	value, err := store.GetOrLoad(context.Background(), "players:current", func(ctx context.Context) (any, error) {
		atomic.AddInt32(&loads, 1)
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if value != "recovered" || atomic.LoadInt32(&loads) != 1 {
		t.Fatalf("failed load should not be cached, got %v after %d loads", value, loads)
	}
}
