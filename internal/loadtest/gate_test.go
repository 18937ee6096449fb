package loadtest

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestGate_HighWaterNeverExceedsCapacity(t *testing.T) {
	const capacity = 5
	const workers = 50

	gate := NewGate(capacity)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Acquire(ctx); err != nil {
				t.Errorf("Acquire() = %v", err)
				return
			}
			if held := gate.Held(); held > capacity {
				t.Errorf("Held() = %d, exceeds capacity %d", held, capacity)
			}
			time.Sleep(time.Millisecond)
			gate.Release()
		}()
	}
	wg.Wait()

	if hw := gate.HighWater(); hw > capacity {
		t.Errorf("HighWater() = %d, exceeds capacity %d", hw, capacity)
	}
	if hw := gate.HighWater(); hw < 1 {
		t.Errorf("HighWater() = %d, want >= 1", hw)
	}
	if held := gate.Held(); held != 0 {
		t.Errorf("Held() = %d after all releases, want 0", held)
	}
}

func TestGate_AcquireBlocksUntilRelease(t *testing.T) {
	gate := NewGate(1)
	ctx := context.Background()

	if err := gate.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() = %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		gate.Acquire(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire() succeeded while slot was held")
	case <-time.After(20 * time.Millisecond):
	}

	gate.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire() did not proceed after Release()")
	}
}

func TestGate_AcquireHonorsCancellation(t *testing.T) {
	gate := NewGate(1)
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- gate.Acquire(ctx)
	}()

	cancel()
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("Acquire() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire() did not return after cancellation")
	}
}

func TestNewGate_MinimumCapacity(t *testing.T) {
	if got := NewGate(0).Capacity(); got != 1 {
		t.Errorf("NewGate(0).Capacity() = %d, want 1", got)
	}
}
