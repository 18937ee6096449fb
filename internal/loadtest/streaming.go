package loadtest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StreamingEngine spawns Concurrency independent streaming workers, each
// bound to one subject, each running until the scenario duration elapses.
// Every delivered message records one latency-style sample.
//
// Workers fail independently: a failing stream is marked failed and logged
// without cancelling its siblings. There is no explicit stop signal; a
// stream notices duration expiry at its own message-cadence granularity,
// so total run time can overshoot DurationSeconds by up to one cadence
// interval. That overshoot is deliberate and covered by tests.
type StreamingEngine struct {
	logger *zap.Logger
}

// NewStreamingEngine creates the streaming engine variant.
func NewStreamingEngine(logger *zap.Logger) *StreamingEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamingEngine{logger: logger}
}

// Kind returns KindStreaming.
func (e *StreamingEngine) Kind() Kind {
	return KindStreaming
}

// Execute runs the scenario and returns its report, including the
// streaming-specific TotalMessages aggregate.
func (e *StreamingEngine) Execute(ctx context.Context, sc ScenarioConfig, w Workload) (*Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if sc.Kind != KindStreaming {
		return nil, fmt.Errorf("streaming engine cannot run %q scenario %q", sc.Kind, sc.Name)
	}
	if w.Stream == nil {
		return nil, fmt.Errorf("scenario %q: workload has no stream callback", sc.Name)
	}

	recorder := NewRecorder()
	duration := sc.Duration()

	e.logger.Info("starting streaming scenario",
		zap.String("scenario", sc.Name),
		zap.Int("workers", sc.Concurrency),
		zap.Duration("duration", duration))

	startedAt := time.Now()
	var totalMessages atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < sc.Concurrency; i++ {
		worker := i
		subject := sc.SubjectFor(i)

		wg.Add(1)
		go func() {
			defer wg.Done()

			workerStart := time.Now()
			deliver := func(latencyMillis float64) {
				if latencyMillis < 0 {
					latencyMillis = 0
				}
				recorder.Record(Sample{
					Timestamp:   time.Now(),
					Metric:      MetricStreamingLatency,
					ValueMillis: latencyMillis,
					Scenario:    KindStreaming,
					Tags: map[string]string{
						"subject": subject,
						"worker":  strconv.Itoa(worker),
					},
				})
			}

			n, err := runStream(ctx, w.Stream, subject, duration, deliver)
			totalMessages.Add(n)

			if err != nil {
				elapsed := float64(time.Since(workerStart)) / float64(time.Millisecond)
				e.logger.Warn("stream worker failed",
					zap.String("scenario", sc.Name),
					zap.String("subject", subject),
					zap.Int("worker", worker),
					zap.Int64("messages", n),
					zap.Error(err))
				recorder.Record(Sample{
					Timestamp:   time.Now(),
					Metric:      MetricStreamingLatency,
					ValueMillis: elapsed,
					Scenario:    KindStreaming,
					Failed:      true,
					Tags: map[string]string{
						"subject": subject,
						"worker":  strconv.Itoa(worker),
					},
				})
			}
		}()
	}

	// All workers finish naturally by duration expiry (or early failure);
	// no cancellation signal is sent.
	wg.Wait()
	endedAt := time.Now()

	report := Summarize(sc, recorder.Samples(), startedAt, endedAt)
	report.TotalMessages = totalMessages.Load()
	return report, nil
}

// runStream invokes the injected stream callback, converting a panic into
// an error so one miswired worker cannot take down the scenario.
func runStream(ctx context.Context, stream StreamFunc, subject string, duration time.Duration, deliver func(float64)) (n int64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("stream panicked: %v", rec)
		}
	}()
	return stream(ctx, subject, duration, deliver)
}

var _ Engine = (*StreamingEngine)(nil)
