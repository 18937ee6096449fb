package loadtest

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// SyntheticWorkload fabricates realistic timings when no real backend is
// wired in: operation latencies are exponentially distributed around a base
// latency with an injected failure rate, and streaming delivery delays are
// normally distributed. All draws come from one seeded source, so runs with
// the same seed and configuration are reproducible.
//
// Production use always substitutes a real Workload; the synthetic one
// exists for standalone demonstration and for testing the engine itself.
type SyntheticWorkload struct {
	// BaseLatencyMillis is the mean operation latency.
	BaseLatencyMillis float64

	// FailureRate is the fraction of operations that fail, in [0,1].
	FailureRate float64

	// StreamDelayMeanMillis and StreamDelayStdDevMillis shape the normal
	// distribution of per-message delivery delays.
	StreamDelayMeanMillis   float64
	StreamDelayStdDevMillis float64

	// Cadence is the interval between streamed messages. 0 means
	// DefaultMessageCadence.
	Cadence time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// DefaultMessageCadence is the streamed-message interval when none is set.
const DefaultMessageCadence = 100 * time.Millisecond

// NewSyntheticWorkload creates a generator with defaults that resemble a
// healthy exchange backend: 20ms mean operation latency, 2% failures, 5ms
// mean streaming delay.
func NewSyntheticWorkload(seed int64) *SyntheticWorkload {
	return &SyntheticWorkload{
		BaseLatencyMillis:       20,
		FailureRate:             0.02,
		StreamDelayMeanMillis:   5,
		StreamDelayStdDevMillis: 1.5,
		rng:                     rand.New(rand.NewSource(seed)),
	}
}

// Workload adapts the generator to the engine contract.
func (s *SyntheticWorkload) Workload() Workload {
	return Workload{
		Operations: s.Operation,
		Stream:     s.Stream,
	}
}

// Operation builds one synthetic order-placement operation: sleep an
// exponentially distributed latency, then fail with probability
// FailureRate.
func (s *SyntheticWorkload) Operation(item WorkItem) Operation {
	delay, fail := s.drawOperation()
	return func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if fail {
			return fmt.Errorf("synthetic rejection: %s %s order", item.Subject, item.Side)
		}
		return nil
	}
}

// Stream simulates one market-data subscription: every cadence interval it
// delivers one message with a normally distributed delay until duration has
// elapsed. The elapsed check happens once per tick, so the stream can
// overshoot duration by up to one interval.
func (s *SyntheticWorkload) Stream(ctx context.Context, subject string, duration time.Duration, deliver func(latencyMillis float64)) (int64, error) {
	cadence := s.Cadence
	if cadence <= 0 {
		cadence = DefaultMessageCadence
	}

	deadline := time.Now().Add(duration)
	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	var n int64
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case <-ticker.C:
		}
		deliver(s.drawStreamDelay())
		n++
	}
	return n, nil
}

func (s *SyntheticWorkload) drawOperation() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latency := s.rng.ExpFloat64() * s.BaseLatencyMillis
	fail := s.rng.Float64() < s.FailureRate
	return time.Duration(latency * float64(time.Millisecond)), fail
}

func (s *SyntheticWorkload) drawStreamDelay() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	delay := s.StreamDelayMeanMillis + s.rng.NormFloat64()*s.StreamDelayStdDevMillis
	if delay < 0 {
		delay = 0
	}
	return delay
}
