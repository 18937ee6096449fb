package loadtest

import (
	"context"
	"sync/atomic"
)

// Gate is a counting semaphore bounding simultaneous in-flight operations.
// Admission blocks until a slot frees up; this is the engine's only
// backpressure mechanism. A gate is owned by one engine invocation and is
// never reused across scenarios.
type Gate struct {
	slots     chan struct{}
	held      atomic.Int32
	highWater atomic.Int32
}

// NewGate creates a gate admitting up to capacity concurrent holders.
// capacity < 1 is treated as 1.
func NewGate(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{slots: make(chan struct{}, capacity)}
}

// Acquire blocks until a slot is available or ctx is cancelled.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	held := g.held.Add(1)
	for {
		hw := g.highWater.Load()
		if held <= hw || g.highWater.CompareAndSwap(hw, held) {
			return nil
		}
	}
}

// Release returns a slot acquired with Acquire.
func (g *Gate) Release() {
	g.held.Add(-1)
	<-g.slots
}

// Capacity returns the maximum number of concurrent holders.
func (g *Gate) Capacity() int {
	return cap(g.slots)
}

// Held returns the number of slots currently held.
func (g *Gate) Held() int {
	return int(g.held.Load())
}

// HighWater returns the maximum number of slots ever held simultaneously.
// It never exceeds Capacity.
func (g *Gate) HighWater() int {
	return int(g.highWater.Load())
}
