package loadtest

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Side is the synthetic direction flag alternated across generated work
// items so the load is evenly distributed without real input data.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// sideFor alternates sides by work item parity.
func sideFor(i int) Side {
	if i%2 == 0 {
		return SideBuy
	}
	return SideSell
}

// WorkItem is one deterministically generated unit of synthetic load:
// item i uses Subjects[i mod len(Subjects)] and alternates Side by parity.
type WorkItem struct {
	Index   int
	Subject string
	Side    Side
}

// OperationFactory builds the operation for one generated work item. It is
// invoked once per item; the engine performs no retries.
type OperationFactory func(item WorkItem) Operation

// StreamFunc runs one subject-bound stream until duration has elapsed and
// returns how many messages it delivered. Each received message must be
// reported through deliver with its delivery delay in milliseconds; the
// engine records one sample per deliver call.
type StreamFunc func(ctx context.Context, subject string, duration time.Duration, deliver func(latencyMillis float64)) (messages int64, err error)

// Workload supplies the externally-injected callbacks an engine drives.
// The request-response engine requires Operations; the streaming engine
// requires Stream. Both may be set so one workload serves a whole suite.
type Workload struct {
	Operations OperationFactory
	Stream     StreamFunc
}

// Engine drives many operations according to a scenario's concurrency and
// rate limits and produces a report. Implementations run to natural
// completion (duration elapsed or workload exhausted) unless ctx is
// cancelled.
type Engine interface {
	// Kind returns the scenario kind this engine handles.
	Kind() Kind

	// Execute runs the scenario to completion and returns its report.
	// Report generation only begins after every scheduled operation has
	// reached a terminal state.
	Execute(ctx context.Context, scenario ScenarioConfig, workload Workload) (*Report, error)
}

// Engines returns the dispatch table mapping scenario kind to its engine.
func Engines(logger *zap.Logger) map[Kind]Engine {
	return map[Kind]Engine{
		KindRequestResponse: NewRequestResponseEngine(logger),
		KindStreaming:       NewStreamingEngine(logger),
	}
}
