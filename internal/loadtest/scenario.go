// Package loadtest provides a bounded-concurrency load-generation harness:
// scenario configuration, concurrent sample collection, pluggable load
// engines for request/response and streaming workloads, and statistical
// report generation with threshold-based recommendations.
package loadtest

import (
	"fmt"
	"time"
)

// Kind selects which load engine drives a scenario.
type Kind string

const (
	// KindRequestResponse generates a fixed number of discrete operations
	// (e.g. synthetic order placements) under a concurrency gate.
	KindRequestResponse Kind = "request-response"

	// KindStreaming runs long-lived per-subject streams (e.g. market-data
	// subscriptions) for the scenario duration.
	KindStreaming Kind = "streaming"
)

// PacingPolicy controls how the request-response engine spaces scheduled
// operations against TargetRatePerSecond.
type PacingPolicy string

const (
	// PacingBatch pauses one second after every TargetRatePerSecond-th
	// scheduled operation. The resulting rate is approximate: a batch is
	// released as fast as the gate admits it, then scheduling stops for a
	// full second. Kept as the default so existing result sets stay
	// comparable.
	PacingBatch PacingPolicy = "batch"

	// PacingTokenBucket spaces individual operations with a token bucket
	// at TargetRatePerSecond. Smoother and closer to the nominal rate
	// than PacingBatch, which changes reported throughput numbers; it
	// must be selected explicitly.
	PacingTokenBucket PacingPolicy = "token-bucket"
)

// ScenarioConfig describes one complete load-test scenario. It is treated
// as immutable after construction: validate with NewScenarioConfig or
// Validate before handing it to an engine, so invalid configurations fail
// before any operation is scheduled.
type ScenarioConfig struct {
	// Name identifies the scenario in summaries, logs and the export
	// artifact.
	Name string

	// Kind selects the engine variant.
	Kind Kind

	// DurationSeconds is the total wall-clock run time. Streaming workers
	// may overshoot it by up to one message cadence (see StreamingEngine).
	DurationSeconds int

	// Concurrency is the maximum number of simultaneous in-flight
	// operations (request-response) or streaming workers (streaming).
	Concurrency int

	// TargetRatePerSecond is a soft throughput ceiling enforced by pacing.
	TargetRatePerSecond int

	// RampUpSeconds is advisory: it is recorded and exported but not
	// enforced mid-run.
	RampUpSeconds int

	// TargetLatencyMillis is the average-latency threshold used by the
	// recommendation engine.
	TargetLatencyMillis float64

	// MaxErrorRateFraction is the error-rate threshold used by the
	// recommendation engine, as a fraction in [0,1].
	MaxErrorRateFraction float64

	// WorkloadSize is the number of synthetic work items generated by the
	// request-response engine.
	WorkloadSize int

	// Subjects are cycled deterministically across generated work items
	// and streaming workers (item i uses Subjects[i mod len(Subjects)]).
	Subjects []string

	// Pacing selects the request-response scheduling policy. Empty means
	// PacingBatch.
	Pacing PacingPolicy

	// OperationTimeoutMillis bounds a single operation. On expiry the
	// runner records a failure sample and releases the gate slot.
	// 0 disables the timeout; a hung operation then holds its slot
	// indefinitely.
	OperationTimeoutMillis int
}

// ValidationError reports an invalid scenario field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid scenario config: field '" + e.Field + "': " + e.Message
}

// NewScenarioConfig validates cfg and returns it unchanged, so callers can
// build configurations literally and still fail fast.
func NewScenarioConfig(cfg ScenarioConfig) (ScenarioConfig, error) {
	if err := cfg.Validate(); err != nil {
		return ScenarioConfig{}, err
	}
	return cfg, nil
}

// Validate checks every invariant the engines rely on. It must pass before
// any operation is scheduled; these are the only errors intended to be
// fatal to the caller.
func (c ScenarioConfig) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	switch c.Kind {
	case KindRequestResponse, KindStreaming:
	default:
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown scenario kind %q", c.Kind)}
	}
	if c.DurationSeconds < 1 {
		return &ValidationError{Field: "durationSeconds", Message: "must be >= 1"}
	}
	if c.Concurrency < 1 {
		return &ValidationError{Field: "concurrency", Message: "must be >= 1"}
	}
	if c.TargetRatePerSecond < 1 {
		return &ValidationError{Field: "targetRatePerSecond", Message: "must be >= 1"}
	}
	if c.RampUpSeconds < 0 {
		return &ValidationError{Field: "rampUpSeconds", Message: "must be >= 0"}
	}
	if c.TargetLatencyMillis <= 0 {
		return &ValidationError{Field: "targetLatencyMillis", Message: "must be > 0"}
	}
	if c.MaxErrorRateFraction < 0 || c.MaxErrorRateFraction > 1 {
		return &ValidationError{Field: "maxErrorRateFraction", Message: "must be within [0,1]"}
	}
	if c.WorkloadSize < 1 {
		return &ValidationError{Field: "workloadSize", Message: "must be >= 1"}
	}
	if len(c.Subjects) == 0 {
		return &ValidationError{Field: "subjects", Message: "at least one subject is required"}
	}
	for i, s := range c.Subjects {
		if s == "" {
			return &ValidationError{Field: "subjects", Message: fmt.Sprintf("subject %d is empty", i)}
		}
	}
	switch c.Pacing {
	case "", PacingBatch, PacingTokenBucket:
	default:
		return &ValidationError{Field: "pacing", Message: fmt.Sprintf("unknown pacing policy %q", c.Pacing)}
	}
	if c.OperationTimeoutMillis < 0 {
		return &ValidationError{Field: "operationTimeoutMillis", Message: "must be >= 0"}
	}
	return nil
}

// Duration returns the configured run time as a time.Duration.
func (c ScenarioConfig) Duration() time.Duration {
	return time.Duration(c.DurationSeconds) * time.Second
}

// OperationTimeout returns the per-operation timeout, or 0 when disabled.
func (c ScenarioConfig) OperationTimeout() time.Duration {
	return time.Duration(c.OperationTimeoutMillis) * time.Millisecond
}

// SubjectFor returns the subject for work item or worker i.
func (c ScenarioConfig) SubjectFor(i int) string {
	return c.Subjects[i%len(c.Subjects)]
}

// Metric returns the sample metric kind produced by this scenario.
func (c ScenarioConfig) Metric() MetricKind {
	if c.Kind == KindStreaming {
		return MetricStreamingLatency
	}
	return MetricOperationLatency
}
