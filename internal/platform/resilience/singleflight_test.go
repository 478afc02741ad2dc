package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var executions atomic.Int32
	var shared atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err, wasShared := g.Do("key", func() (any, error) {
				executions.Add(1)
				time.Sleep(20 * time.Millisecond)
				return 42, nil
			})
			if err != nil || value != 42 {
				t.Errorf("unexpected result %v err=%v", value, err)
			}
			if wasShared {
				shared.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("expected a single execution, got %d", got)
	}
	if got := shared.Load(); got != 9 {
		t.Fatalf("expected 9 shared results, got %d", got)
	}
}

func TestSingleFlight_ErrorsAreShared(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	wantErr := errors.New("boom")

	_, err, _ := g.Do("key", func() (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected boom, got %v", err)
	}

	// The failed call is removed; the next call executes again.
	value, err, _ := g.Do("key", func() (any, error) {
		return "ok", nil
	})
	if err != nil || value != "ok" {
		t.Fatalf("expected fresh execution after error, got %v err=%v", value, err)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	t.Parallel()

	var g SingleFlight

	a, _, _ := g.Do("a", func() (any, error) { return "a", nil })
	b, _, _ := g.Do("b", func() (any, error) { return "b", nil })
	if a != "a" || b != "b" {
		t.Fatalf("keys leaked between calls: a=%v b=%v", a, b)
	}
}
