package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight
	var loads int32
	var sharedCount int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			val, err, shared := g.Do("players:current", func() (any, error) {
				atomic.AddInt32(&loads, 1)
				time.Sleep(20 * time.Millisecond)
				return "roster", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if val != "roster" {
				t.Errorf("unexpected value: %v", val)
			}
			if shared {
				atomic.AddInt32(&sharedCount, 1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Fatalf("expected the loader to run once, got %d", got)
	}
	if got := atomic.LoadInt32(&sharedCount); got != workers-1 {
		t.Fatalf("expected %d shared results, got %d", workers-1, got)
	}
}

func TestSingleFlight_SequentialCallsRunSeparately(t *testing.T) {
	var g SingleFlight
	var loads int32

	for i := 0; i < 3; i++ {
		_, err, shared := g.Do("fixtures:round:2", func() (any, error) {
			atomic.AddInt32(&loads, 1)
			return nil, nil
		})
		if err != nil {
			t.Fatalf("singleflight call failed: %v", err)
		}
		if shared {
			t.Fatal("a call with no concurrent twin must not be shared")
		}
	}
	if got := atomic.LoadInt32(&loads); got != 3 {
		t.Fatalf("expected 3 separate loads, got %d", got)
	}
}
