package loadtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RequestResponseEngine generates WorkloadSize discrete operations, cycling
// subjects and alternating sides deterministically, and schedules them
// through an OperationRunner under the scenario's concurrency gate.
//
// Pacing follows the scenario's PacingPolicy (batch-then-pause by default).
// A single failing operation never aborts the batch; report generation
// waits on a hard join barrier until every scheduled operation has reached
// a terminal state.
type RequestResponseEngine struct {
	logger *zap.Logger
}

// NewRequestResponseEngine creates the request-response engine variant.
func NewRequestResponseEngine(logger *zap.Logger) *RequestResponseEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestResponseEngine{logger: logger}
}

// Kind returns KindRequestResponse.
func (e *RequestResponseEngine) Kind() Kind {
	return KindRequestResponse
}

// Execute runs the scenario and returns its report. If ctx is cancelled,
// scheduling stops but already-dispatched operations still run to a
// terminal state and are included in the report.
func (e *RequestResponseEngine) Execute(ctx context.Context, sc ScenarioConfig, w Workload) (*Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if sc.Kind != KindRequestResponse {
		return nil, fmt.Errorf("request-response engine cannot run %q scenario %q", sc.Kind, sc.Name)
	}
	if w.Operations == nil {
		return nil, fmt.Errorf("scenario %q: workload has no operation factory", sc.Name)
	}

	recorder := NewRecorder()
	gate := NewGate(sc.Concurrency)
	runner := NewOperationRunner(gate, recorder, sc, e.logger)
	pace := newPacer(sc)

	e.logger.Info("starting request-response scenario",
		zap.String("scenario", sc.Name),
		zap.Int("workloadSize", sc.WorkloadSize),
		zap.Int("concurrency", sc.Concurrency),
		zap.Int("targetRatePerSecond", sc.TargetRatePerSecond))

	startedAt := time.Now()
	var wg sync.WaitGroup

	for i := 0; i < sc.WorkloadSize; i++ {
		if err := pace.wait(ctx, i); err != nil {
			e.logger.Info("scheduling stopped early",
				zap.String("scenario", sc.Name),
				zap.Int("scheduled", i),
				zap.Error(err))
			break
		}

		item := WorkItem{Index: i, Subject: sc.SubjectFor(i), Side: sideFor(i)}
		op := w.Operations(item)

		wg.Add(1)
		go func(item WorkItem, op Operation) {
			defer wg.Done()
			runner.Run(ctx, op, item.Subject)
		}(item, op)
	}

	// Join barrier: every scheduled operation reaches success or failure
	// before the report is built.
	wg.Wait()
	endedAt := time.Now()

	return Summarize(sc, recorder.Samples(), startedAt, endedAt), nil
}

var _ Engine = (*RequestResponseEngine)(nil)
