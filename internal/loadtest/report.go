package loadtest

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Report is the aggregated statistical summary of one scenario run. It is
// built exactly once, after every scheduled operation has reached a
// terminal state, and is immutable thereafter.
type Report struct {
	Scenario  ScenarioConfig
	StartedAt time.Time
	EndedAt   time.Time

	TotalOperations      int64
	SuccessfulOperations int64
	FailedOperations     int64

	AverageLatencyMillis float64
	P95LatencyMillis     float64
	P99LatencyMillis     float64
	MaxLatencyMillis     float64

	// ThroughputOpsPerSecond is successful operations per elapsed second,
	// 0 when no time elapsed.
	ThroughputOpsPerSecond float64

	// ErrorRateFraction is failed/total, 0 when no operations ran.
	ErrorRateFraction float64

	// TotalMessages is the streaming-specific sum of per-worker message
	// counts; 0 for request-response scenarios.
	TotalMessages int64

	// Recommendations are threshold findings in a fixed order: latency,
	// error rate, throughput shortfall, or a single all-clear.
	Recommendations []string
}

// Elapsed returns the wall-clock span of the run.
func (r *Report) Elapsed() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SuccessRate returns successful/total as a fraction, 1 when nothing ran.
func (r *Report) SuccessRate() float64 {
	if r.TotalOperations == 0 {
		return 1
	}
	return float64(r.SuccessfulOperations) / float64(r.TotalOperations)
}

// MeetsTargets reports whether the run stayed within every threshold.
func (r *Report) MeetsTargets() bool {
	return len(r.Recommendations) == 1 && r.Recommendations[0] == recommendationAllClear
}

const (
	recommendationAllClear = "meets all targets: latency, error rate and throughput are within thresholds"
	recommendationNoData   = "no samples collected: the target may be unreachable or the run was cancelled before any operation completed"
)

// Summarize turns raw samples plus the originating scenario into a report.
// Pure function: no I/O, no side effects, deterministic for a given sample
// set.
//
// Percentiles use linear interpolation between closest ranks (the same
// convention as numpy's default): for percentile p over n sorted values,
// rank = p/100*(n-1), interpolating between floor(rank) and ceil(rank).
// All latency figures are 0 when no samples exist.
func Summarize(sc ScenarioConfig, samples []Sample, startedAt, endedAt time.Time) *Report {
	report := &Report{
		Scenario:  sc,
		StartedAt: startedAt,
		EndedAt:   endedAt,
	}

	values := make([]float64, 0, len(samples))
	var sum float64
	for _, s := range samples {
		report.TotalOperations++
		if s.Failed {
			report.FailedOperations++
		} else {
			report.SuccessfulOperations++
		}
		values = append(values, s.ValueMillis)
		sum += s.ValueMillis
	}

	if len(values) > 0 {
		sort.Float64s(values)
		report.AverageLatencyMillis = sum / float64(len(values))
		report.MaxLatencyMillis = values[len(values)-1]
		report.P95LatencyMillis = percentile(values, 95)
		report.P99LatencyMillis = percentile(values, 99)
	}

	if elapsed := endedAt.Sub(startedAt).Seconds(); elapsed > 0 {
		report.ThroughputOpsPerSecond = float64(report.SuccessfulOperations) / elapsed
	}
	if report.TotalOperations > 0 {
		report.ErrorRateFraction = float64(report.FailedOperations) / float64(report.TotalOperations)
	}

	report.Recommendations = recommend(sc, report)
	return report
}

// percentile computes the p-th percentile of sorted values by linear
// interpolation between closest ranks. values must be sorted and non-empty.
func percentile(values []float64, p float64) float64 {
	if len(values) == 1 {
		return values[0]
	}
	rank := p / 100 * float64(len(values)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return values[lo]
	}
	frac := rank - float64(lo)
	return values[lo] + frac*(values[hi]-values[lo])
}

// recommend compares the report against the scenario thresholds. The
// checks are independent and fire in a fixed priority order; several may
// fire at once. A run with no operations gets only the no-data finding.
func recommend(sc ScenarioConfig, r *Report) []string {
	if r.TotalOperations == 0 {
		return []string{recommendationNoData}
	}

	var recs []string
	if r.AverageLatencyMillis > sc.TargetLatencyMillis {
		recs = append(recs, fmt.Sprintf(
			"average latency %.1fms exceeds the %.1fms target: reduce concurrency or investigate slow paths",
			r.AverageLatencyMillis, sc.TargetLatencyMillis))
	}
	if r.ErrorRateFraction > sc.MaxErrorRateFraction {
		recs = append(recs, fmt.Sprintf(
			"error rate %.2f%% exceeds the %.2f%% maximum: inspect failed operations before raising load",
			r.ErrorRateFraction*100, sc.MaxErrorRateFraction*100))
	}
	if r.ThroughputOpsPerSecond < 0.8*float64(sc.TargetRatePerSecond) {
		recs = append(recs, fmt.Sprintf(
			"throughput %.1f ops/s is below 80%% of the %d ops/s target: the system under test may be saturated",
			r.ThroughputOpsPerSecond, sc.TargetRatePerSecond))
	}
	if len(recs) == 0 {
		recs = append(recs, recommendationAllClear)
	}
	return recs
}
