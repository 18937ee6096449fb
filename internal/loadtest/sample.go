package loadtest

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// MetricKind distinguishes what a sample measures.
type MetricKind string

const (
	// MetricOperationLatency is the elapsed time of one request-response
	// operation, successful or not.
	MetricOperationLatency MetricKind = "operation_latency"

	// MetricStreamingLatency is the synthetic delivery delay of one
	// streamed message.
	MetricStreamingLatency MetricKind = "streaming_latency"
)

// Sample is one timestamped observation produced by a completed operation
// or stream tick. Samples are immutable once recorded.
//
// Failed operations still carry their elapsed time: the latency up to the
// failure point contributes to report percentiles.
type Sample struct {
	Timestamp   time.Time
	Metric      MetricKind
	ValueMillis float64
	Scenario    Kind

	// Failed marks the sample as produced by a failed operation. It is
	// what the report generator counts; Tags are never used in
	// aggregation math.
	Failed bool

	// Tags carry diagnostic grouping only (subject id, worker id).
	Tags map[string]string
}

// Recorder is an append-only sample store owned by exactly one scenario
// run. It is safe for concurrent writes up to the scenario's gate capacity
// and is never shared across runs.
//
// Alongside the raw slice it feeds an HDR histogram (1µs..1h, 3 significant
// figures) so an in-flight run can be observed cheaply without copying
// samples; final report percentiles are computed from the raw samples, not
// the histogram.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
	hist    *hdrhistogram.Histogram
}

const (
	histMinMicros = 1
	histMaxMicros = 3600000000 // 1 hour
	histSigFigs   = 3
)

// NewRecorder creates an empty recorder for one scenario run.
func NewRecorder() *Recorder {
	return &Recorder{
		hist: hdrhistogram.New(histMinMicros, histMaxMicros, histSigFigs),
	}
}

// Record appends one sample. Safe for concurrent use.
func (r *Recorder) Record(s Sample) {
	micros := int64(s.ValueMillis * 1000)
	if micros < histMinMicros {
		micros = histMinMicros
	}
	if micros > histMaxMicros {
		micros = histMaxMicros
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
	r.hist.RecordValue(micros)
}

// Samples returns a copy of everything recorded so far.
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Len returns the number of recorded samples.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// LiveStats is a point-in-time latency view of a run still in flight,
// derived from the HDR histogram.
type LiveStats struct {
	Count     int64
	MinMillis float64
	MaxMillis float64
	P50Millis float64
	P95Millis float64
	P99Millis float64
}

// Live returns current latency statistics without copying samples.
func (r *Recorder) Live() LiveStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hist.TotalCount() == 0 {
		return LiveStats{}
	}
	return LiveStats{
		Count:     r.hist.TotalCount(),
		MinMillis: float64(r.hist.Min()) / 1000,
		MaxMillis: float64(r.hist.Max()) / 1000,
		P50Millis: float64(r.hist.ValueAtQuantile(50)) / 1000,
		P95Millis: float64(r.hist.ValueAtQuantile(95)) / 1000,
		P99Millis: float64(r.hist.ValueAtQuantile(99)) / 1000,
	}
}
