package loadtest

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer spaces scheduled work items against the scenario's target rate.
type pacer interface {
	// wait blocks before work item next is scheduled. It returns ctx.Err()
	// if the context is cancelled mid-pause.
	wait(ctx context.Context, next int) error
}

func newPacer(sc ScenarioConfig) pacer {
	if sc.Pacing == PacingTokenBucket {
		return &tokenPacer{limiter: rate.NewLimiter(rate.Limit(sc.TargetRatePerSecond), 1)}
	}
	return &batchPacer{batch: sc.TargetRatePerSecond, pause: time.Second}
}

// batchPacer implements the batch-then-pause policy: after every batch-th
// scheduled item it pauses for a full second. The achieved rate is
// approximate, not exact; a batch is released as fast as the gate admits
// it.
type batchPacer struct {
	batch int
	pause time.Duration
}

func (p *batchPacer) wait(ctx context.Context, next int) error {
	if next == 0 || next%p.batch != 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.pause):
		return nil
	}
}

// tokenPacer spaces every item individually with a token bucket, giving a
// much closer match to the nominal rate.
type tokenPacer struct {
	limiter *rate.Limiter
}

func (p *tokenPacer) wait(ctx context.Context, next int) error {
	return p.limiter.Wait(ctx)
}
