package loadtest

import (
	"context"
	"testing"
	"time"
)

func TestNewPacer_DefaultsToBatch(t *testing.T) {
	sc := validScenario()
	if _, ok := newPacer(sc).(*batchPacer); !ok {
		t.Error("empty pacing policy did not select the batch pacer")
	}

	sc.Pacing = PacingTokenBucket
	if _, ok := newPacer(sc).(*tokenPacer); !ok {
		t.Error("token-bucket policy did not select the token pacer")
	}
}

func TestBatchPacer_PausesOnlyAtBatchBoundaries(t *testing.T) {
	p := &batchPacer{batch: 5, pause: 30 * time.Millisecond}
	ctx := context.Background()

	// Items 0..4 schedule without pausing.
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := p.wait(ctx, i); err != nil {
			t.Fatalf("wait(%d) = %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 10*time.Millisecond {
		t.Errorf("first batch took %v, want no pause", elapsed)
	}

	// Item 5 crosses the batch boundary and pauses.
	start = time.Now()
	if err := p.wait(ctx, 5); err != nil {
		t.Fatalf("wait(5) = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("boundary wait took %v, want >= 30ms pause", elapsed)
	}
}

func TestBatchPacer_PauseHonorsCancellation(t *testing.T) {
	p := &batchPacer{batch: 1, pause: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.wait(ctx, 1) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("wait() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("wait() did not return after cancellation")
	}
}

func TestTokenPacer_SpacesItems(t *testing.T) {
	sc := validScenario()
	sc.Pacing = PacingTokenBucket
	sc.TargetRatePerSecond = 100 // 10ms apart

	p := newPacer(sc)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := p.wait(ctx, i); err != nil {
			t.Fatalf("wait(%d) = %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// First token is free; the remaining four are spaced 10ms apart.
	if elapsed < 30*time.Millisecond {
		t.Errorf("5 items at 100/s took %v, want >= 30ms", elapsed)
	}
	if elapsed > 200*time.Millisecond {
		t.Errorf("5 items at 100/s took %v, want well under 200ms", elapsed)
	}
}
