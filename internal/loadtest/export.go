package loadtest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// Artifact is the exportable structured document for one suite run. Field
// names and nesting are stable: downstream consumers parse them.
type Artifact struct {
	RunID       string                      `json:"runId"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	Scenarios   map[string]ScenarioArtifact `json:"scenarios"`
}

// ScenarioArtifact is one scenario's entry in the artifact.
type ScenarioArtifact struct {
	Config          ConfigArtifact  `json:"config"`
	Results         ResultsArtifact `json:"results"`
	Recommendations []string        `json:"recommendations"`
}

// ConfigArtifact echoes the load-bearing scenario settings.
type ConfigArtifact struct {
	Duration    int `json:"duration"`
	Concurrency int `json:"concurrency"`
	TargetRate  int `json:"targetRate"`
}

// ResultsArtifact carries the aggregated numbers for one scenario.
type ResultsArtifact struct {
	TotalOperations        int64   `json:"totalOperations"`
	SuccessfulOperations   int64   `json:"successfulOperations"`
	FailedOperations       int64   `json:"failedOperations"`
	ErrorRateFraction      float64 `json:"errorRateFraction"`
	AverageLatencyMillis   float64 `json:"averageLatencyMillis"`
	P95LatencyMillis       float64 `json:"p95LatencyMillis"`
	P99LatencyMillis       float64 `json:"p99LatencyMillis"`
	ThroughputOpsPerSecond float64 `json:"throughputOpsPerSecond"`
	TotalMessages          int64   `json:"totalMessages,omitempty"`
}

// BuildArtifact assembles the export document from a suite's reports.
func BuildArtifact(reports map[string]*Report) *Artifact {
	artifact := &Artifact{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Scenarios:   make(map[string]ScenarioArtifact, len(reports)),
	}

	for name, r := range reports {
		artifact.Scenarios[name] = ScenarioArtifact{
			Config: ConfigArtifact{
				Duration:    r.Scenario.DurationSeconds,
				Concurrency: r.Scenario.Concurrency,
				TargetRate:  r.Scenario.TargetRatePerSecond,
			},
			Results: ResultsArtifact{
				TotalOperations:        r.TotalOperations,
				SuccessfulOperations:   r.SuccessfulOperations,
				FailedOperations:       r.FailedOperations,
				ErrorRateFraction:      r.ErrorRateFraction,
				AverageLatencyMillis:   r.AverageLatencyMillis,
				P95LatencyMillis:       r.P95LatencyMillis,
				P99LatencyMillis:       r.P99LatencyMillis,
				ThroughputOpsPerSecond: r.ThroughputOpsPerSecond,
				TotalMessages:          r.TotalMessages,
			},
			Recommendations: r.Recommendations,
		}
	}

	return artifact
}

// WriteJSON writes the artifact as indented JSON.
func (a *Artifact) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	return nil
}

// WriteFile writes the artifact to path, creating or truncating it.
func (a *Artifact) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating artifact file: %w", err)
	}
	defer f.Close()

	if err := a.WriteJSON(f); err != nil {
		return err
	}
	return f.Close()
}
