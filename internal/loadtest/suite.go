package loadtest

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Orchestrator runs a set of scenarios through their matching engines and
// collects the reports. Scenarios run sequentially: concurrency exists only
// within a scenario, never across scenarios.
type Orchestrator struct {
	engines map[Kind]Engine
	logger  *zap.Logger
}

// NewOrchestrator creates an orchestrator with the default engine dispatch
// table. A nil logger disables logging.
func NewOrchestrator(logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		engines: Engines(logger),
		logger:  logger,
	}
}

// RunAll executes every scenario in order and returns reports keyed by
// scenario name. A scenario whose engine fails outright (error or panic) is
// logged and omitted from the result map; the remaining scenarios still
// run. Partial data inside a scenario never reaches this path: engines
// absorb operation and worker failures themselves and still produce a
// report.
func (o *Orchestrator) RunAll(ctx context.Context, scenarios []ScenarioConfig, workload Workload) map[string]*Report {
	results := make(map[string]*Report, len(scenarios))

	for _, sc := range scenarios {
		report, err := o.runScenario(ctx, sc, workload)
		if err != nil {
			o.logger.Error("scenario failed to run",
				zap.String("scenario", sc.Name),
				zap.Error(err))
			continue
		}
		results[sc.Name] = report
		o.logger.Info("scenario complete",
			zap.String("scenario", sc.Name),
			zap.Int64("totalOperations", report.TotalOperations),
			zap.Int64("failedOperations", report.FailedOperations),
			zap.Float64("throughputOpsPerSecond", report.ThroughputOpsPerSecond),
			zap.Bool("meetsTargets", report.MeetsTargets()))
	}

	return results
}

// runScenario dispatches one scenario to its engine, containing panics so
// a programming error in the wiring is fatal only to that scenario.
func (o *Orchestrator) runScenario(ctx context.Context, sc ScenarioConfig, workload Workload) (report *Report, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			report = nil
			err = fmt.Errorf("engine panicked: %v", rec)
		}
	}()

	engine, ok := o.engines[sc.Kind]
	if !ok {
		return nil, fmt.Errorf("no engine registered for scenario kind %q", sc.Kind)
	}
	return engine.Execute(ctx, sc, workload)
}
