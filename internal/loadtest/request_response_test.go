package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// rrScenario is small enough that the batch pacer never pauses: fewer work
// items than TargetRatePerSecond.
func rrScenario() ScenarioConfig {
	return ScenarioConfig{
		Name:                 "order-flow",
		Kind:                 KindRequestResponse,
		DurationSeconds:      5,
		Concurrency:          2,
		TargetRatePerSecond:  100,
		TargetLatencyMillis:  100,
		MaxErrorRateFraction: 0.1,
		WorkloadSize:         10,
		Subjects:             []string{"BTC-USD", "ETH-USD"},
	}
}

func fixedDelayFactory(d time.Duration, err error) OperationFactory {
	return func(item WorkItem) Operation {
		return func(ctx context.Context) error {
			time.Sleep(d)
			return err
		}
	}
}

func TestRequestResponseEngine_AllSucceed(t *testing.T) {
	engine := NewRequestResponseEngine(nil)
	sc := rrScenario()

	report, err := engine.Execute(context.Background(), sc,
		Workload{Operations: fixedDelayFactory(10*time.Millisecond, nil)})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	if report.TotalOperations != 10 || report.SuccessfulOperations != 10 || report.FailedOperations != 0 {
		t.Errorf("counts = %d/%d/%d, want 10/10/0",
			report.TotalOperations, report.SuccessfulOperations, report.FailedOperations)
	}
	if report.ErrorRateFraction != 0 {
		t.Errorf("ErrorRateFraction = %v, want 0", report.ErrorRateFraction)
	}
	// 10ms operations: average close to 10, generous upper bound for
	// scheduler jitter.
	if report.AverageLatencyMillis < 10 || report.AverageLatencyMillis > 50 {
		t.Errorf("AverageLatencyMillis = %v, want ~10", report.AverageLatencyMillis)
	}
	if !report.MeetsTargets() {
		t.Errorf("Recommendations = %v, want single all-clear", report.Recommendations)
	}
}

func TestRequestResponseEngine_AllFail(t *testing.T) {
	engine := NewRequestResponseEngine(nil)
	sc := rrScenario()

	report, err := engine.Execute(context.Background(), sc,
		Workload{Operations: fixedDelayFactory(time.Millisecond, errors.New("venue unavailable"))})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	if report.FailedOperations != 10 || report.SuccessfulOperations != 0 {
		t.Errorf("counts = %d failed / %d ok, want 10/0",
			report.FailedOperations, report.SuccessfulOperations)
	}
	if report.ErrorRateFraction != 1.0 {
		t.Errorf("ErrorRateFraction = %v, want 1.0", report.ErrorRateFraction)
	}

	found := false
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, "error rate") {
			found = true
		}
	}
	if !found {
		t.Errorf("Recommendations = %v, want an error-rate finding", report.Recommendations)
	}
}

func TestRequestResponseEngine_ConcurrencyBound(t *testing.T) {
	engine := NewRequestResponseEngine(nil)
	sc := rrScenario()
	sc.Concurrency = 2
	sc.WorkloadSize = 20

	var inFlight, highWater atomic.Int32
	var mu sync.Mutex

	factory := func(item WorkItem) Operation {
		return func(ctx context.Context) error {
			now := inFlight.Add(1)
			mu.Lock()
			if now > highWater.Load() {
				highWater.Store(now)
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		}
	}

	if _, err := engine.Execute(context.Background(), sc, Workload{Operations: factory}); err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	if hw := highWater.Load(); hw > int32(sc.Concurrency) {
		t.Errorf("in-flight high water = %d, exceeds concurrency %d", hw, sc.Concurrency)
	}
}

func TestRequestResponseEngine_DeterministicWorkItems(t *testing.T) {
	engine := NewRequestResponseEngine(nil)
	sc := rrScenario()
	sc.Subjects = []string{"a", "b", "c"}
	sc.WorkloadSize = 6

	var mu sync.Mutex
	var items []WorkItem

	factory := func(item WorkItem) Operation {
		mu.Lock()
		items = append(items, item)
		mu.Unlock()
		return func(ctx context.Context) error { return nil }
	}

	if _, err := engine.Execute(context.Background(), sc, Workload{Operations: factory}); err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	if len(items) != 6 {
		t.Fatalf("factory invoked %d times, want 6", len(items))
	}
	// The factory is called from the scheduling loop, so items arrive in
	// order even though operations run concurrently.
	for i, item := range items {
		if item.Index != i {
			t.Errorf("item %d has index %d", i, item.Index)
		}
		if want := sc.SubjectFor(i); item.Subject != want {
			t.Errorf("item %d subject = %q, want %q", i, item.Subject, want)
		}
		if want := sideFor(i); item.Side != want {
			t.Errorf("item %d side = %v, want %v", i, item.Side, want)
		}
	}
}

func TestRequestResponseEngine_DeterministicCounts(t *testing.T) {
	engine := NewRequestResponseEngine(nil)
	sc := rrScenario()

	// Every third item fails, deterministically.
	factory := func(item WorkItem) Operation {
		fail := item.Index%3 == 0
		return func(ctx context.Context) error {
			if fail {
				return fmt.Errorf("rejected item %d", item.Index)
			}
			return nil
		}
	}

	first, err := engine.Execute(context.Background(), sc, Workload{Operations: factory})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	second, err := engine.Execute(context.Background(), sc, Workload{Operations: factory})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	if first.TotalOperations != second.TotalOperations ||
		first.SuccessfulOperations != second.SuccessfulOperations ||
		first.FailedOperations != second.FailedOperations {
		t.Errorf("two identical runs disagree: %d/%d/%d vs %d/%d/%d",
			first.TotalOperations, first.SuccessfulOperations, first.FailedOperations,
			second.TotalOperations, second.SuccessfulOperations, second.FailedOperations)
	}
	if math.Abs(first.ErrorRateFraction-second.ErrorRateFraction) > 1e-9 {
		t.Errorf("error rates disagree: %v vs %v", first.ErrorRateFraction, second.ErrorRateFraction)
	}
}

func TestRequestResponseEngine_PartialFailureNeverAbortsBatch(t *testing.T) {
	engine := NewRequestResponseEngine(nil)
	sc := rrScenario()

	factory := func(item WorkItem) Operation {
		return func(ctx context.Context) error {
			if item.Index == 0 {
				panic("first operation blows up")
			}
			return nil
		}
	}

	report, err := engine.Execute(context.Background(), sc, Workload{Operations: factory})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if report.TotalOperations != 10 {
		t.Errorf("TotalOperations = %d, want 10 despite the panicking operation", report.TotalOperations)
	}
	if report.FailedOperations != 1 {
		t.Errorf("FailedOperations = %d, want 1", report.FailedOperations)
	}
}

func TestRequestResponseEngine_RejectsMiswiredInput(t *testing.T) {
	engine := NewRequestResponseEngine(nil)

	if _, err := engine.Execute(context.Background(), rrScenario(), Workload{}); err == nil {
		t.Error("Execute() accepted workload without operation factory")
	}

	sc := rrScenario()
	sc.Kind = KindStreaming
	if _, err := engine.Execute(context.Background(), sc,
		Workload{Operations: fixedDelayFactory(0, nil)}); err == nil {
		t.Error("Execute() accepted a streaming scenario")
	}

	bad := rrScenario()
	bad.Concurrency = 0
	if _, err := engine.Execute(context.Background(), bad,
		Workload{Operations: fixedDelayFactory(0, nil)}); err == nil {
		t.Error("Execute() accepted an invalid scenario")
	}
}

func TestRequestResponseEngine_CancellationStopsScheduling(t *testing.T) {
	engine := NewRequestResponseEngine(nil)
	sc := rrScenario()
	sc.WorkloadSize = 1000
	sc.TargetRatePerSecond = 1 // forces a pacing pause after the first item

	ctx, cancel := context.WithCancel(context.Background())

	var started atomic.Int32
	factory := func(item WorkItem) Operation {
		return func(opCtx context.Context) error {
			started.Add(1)
			return nil
		}
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	report, err := engine.Execute(ctx, sc, Workload{Operations: factory})
	if err != nil {
		t.Fatalf("Execute() = %v; cancellation should stop scheduling, not fail the run", err)
	}
	if report.TotalOperations >= int64(sc.WorkloadSize) {
		t.Errorf("TotalOperations = %d, want fewer than %d after cancellation",
			report.TotalOperations, sc.WorkloadSize)
	}
}
