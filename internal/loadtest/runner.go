package loadtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Operation is one unit of synthetic work against the target system, e.g.
// one simulated order placement. The harness never inspects what the
// callback does; it only times it and classifies the returned error.
type Operation func(ctx context.Context) error

// Outcome reports how a single operation ended.
type Outcome struct {
	Subject       string
	ElapsedMillis float64
	Err           error
}

// OperationRunner executes single operations under a concurrency gate,
// times them, and writes exactly one sample per completed operation to the
// shared recorder. Multiple Run calls may execute in parallel up to the
// gate's capacity; the gate is the only serialization point.
type OperationRunner struct {
	gate     *Gate
	recorder *Recorder
	scenario ScenarioConfig
	logger   *zap.Logger
}

// NewOperationRunner wires a runner to one scenario run's gate and
// recorder.
func NewOperationRunner(gate *Gate, recorder *Recorder, scenario ScenarioConfig, logger *zap.Logger) *OperationRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OperationRunner{
		gate:     gate,
		recorder: recorder,
		scenario: scenario,
		logger:   logger,
	}
}

// Run acquires a gate slot (blocking until one is free), invokes op, and
// records one sample with the elapsed milliseconds whether or not the
// operation succeeded. Errors and recovered panics are classified as
// failures, logged, and never propagated; the batch must not abort on a
// single failing operation.
//
// If ctx is cancelled while waiting for a slot, no sample is recorded: the
// operation never started.
func (r *OperationRunner) Run(ctx context.Context, op Operation, subject string) Outcome {
	if err := r.gate.Acquire(ctx); err != nil {
		return Outcome{Subject: subject, Err: err}
	}
	defer r.gate.Release()

	opCtx := ctx
	var cancel context.CancelFunc
	if timeout := r.scenario.OperationTimeout(); timeout > 0 {
		opCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := invoke(opCtx, op)
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)

	if err != nil {
		r.logger.Warn("operation failed",
			zap.String("scenario", r.scenario.Name),
			zap.String("subject", subject),
			zap.Float64("elapsedMillis", elapsed),
			zap.Error(err))
	}

	r.recorder.Record(Sample{
		Timestamp:   start,
		Metric:      r.scenario.Metric(),
		ValueMillis: elapsed,
		Scenario:    r.scenario.Kind,
		Failed:      err != nil,
		Tags:        map[string]string{"subject": subject},
	})

	return Outcome{Subject: subject, ElapsedMillis: elapsed, Err: err}
}

// invoke calls op, converting a panic in the injected callback into an
// error so a miswired workload cannot take down the run.
func invoke(ctx context.Context, op Operation) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("operation panicked: %v", rec)
		}
	}()
	return op(ctx)
}
