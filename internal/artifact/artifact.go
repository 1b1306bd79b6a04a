// Package artifact writes the output bundle of an analyze run.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tonylturner/whynterir/internal/metrics"
)

// RunMetadata contains metadata about an analyze run.
type RunMetadata struct {
	// Run identification
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`

	// Inputs
	Captures         []string `json:"captures"`
	TolerancePercent float64  `json:"tolerance_percent"`

	// Results
	Stats    RunStats `json:"stats"`
	ExitCode int      `json:"exit_code"`
	Error    string   `json:"error,omitempty"`

	// Artifact paths (relative to output directory)
	Artifacts ArtifactPaths `json:"artifacts"`
}

// RunStats contains totals from an analyze run.
type RunStats struct {
	Captures       int `json:"captures"`
	Pulses         int `json:"pulses"`
	OutOfWindow    int `json:"out_of_window"`
	Decoded        int `json:"decoded"`
	DecodeFailures int `json:"decode_failures"`
	// Smallest tolerance that accepts every pulse, 0 when timing is exact
	SuggestedTolerancePercent float64 `json:"suggested_tolerance_percent"`
}

// ArtifactPaths contains relative paths to generated artifacts.
type ArtifactPaths struct {
	RunJSON     string `json:"run_json"`
	SamplesCSV  string `json:"samples_csv,omitempty"`
	SummaryTxt  string `json:"summary_txt,omitempty"`
	MetricsProm string `json:"metrics_prom,omitempty"`
	TimingJSON  string `json:"timing_json,omitempty"`
}

// OutputManager manages artifact output for a run.
type OutputManager struct {
	outputDir string
	runID     string
	metadata  *RunMetadata
	now       func() time.Time
}

// NewOutputManager creates a new output manager for the given directory.
func NewOutputManager(outputDir, version string) (*OutputManager, error) {
	return newOutputManager(outputDir, version, time.Now)
}

func newOutputManager(outputDir, version string, now func() time.Time) (*OutputManager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	start := now()
	runID := start.Format("20060102-150405")
	return &OutputManager{
		outputDir: outputDir,
		runID:     runID,
		now:       now,
		metadata: &RunMetadata{
			RunID:     runID,
			Version:   version,
			StartTime: start,
			Captures:  []string{},
			Artifacts: ArtifactPaths{
				RunJSON: "run.json",
			},
		},
	}, nil
}

// OutputDir returns the output directory path.
func (m *OutputManager) OutputDir() string {
	return m.outputDir
}

// RunID returns the run identifier.
func (m *OutputManager) RunID() string {
	return m.runID
}

// SetTolerance records the decoder tolerance as a fraction.
func (m *OutputManager) SetTolerance(tolerance float64) {
	m.metadata.TolerancePercent = tolerance * 100
}

// AddCapture records one analyzed input and whether it decoded.
func (m *OutputManager) AddCapture(source string, decoded bool) {
	m.metadata.Captures = append(m.metadata.Captures, source)
	if decoded {
		m.metadata.Stats.Decoded++
	} else {
		m.metadata.Stats.DecodeFailures++
	}
}

// SetSamplesFile marks the samples CSV as written.
func (m *OutputManager) SetSamplesFile() {
	m.metadata.Artifacts.SamplesCSV = filepath.Base(m.SamplesPath())
}

// SetMetricsFile marks the Prometheus textfile as written.
func (m *OutputManager) SetMetricsFile() {
	m.metadata.Artifacts.MetricsProm = filepath.Base(m.MetricsPath())
}

// SetTimingFile marks the timing report as written.
func (m *OutputManager) SetTimingFile() {
	m.metadata.Artifacts.TimingJSON = filepath.Base(m.TimingPath())
}

// TimingPath returns the full path for the JSON timing report.
func (m *OutputManager) TimingPath() string {
	return filepath.Join(m.outputDir, "timing.json")
}

// SamplesPath returns the full path for the per-pulse samples CSV.
func (m *OutputManager) SamplesPath() string {
	return filepath.Join(m.outputDir, fmt.Sprintf("samples_%s.csv", m.runID))
}

// MetricsPath returns the full path for the Prometheus textfile.
func (m *OutputManager) MetricsPath() string {
	return filepath.Join(m.outputDir, fmt.Sprintf("metrics_%s.prom", m.runID))
}

// SummaryPath returns the full path for the summary file.
func (m *OutputManager) SummaryPath() string {
	return filepath.Join(m.outputDir, fmt.Sprintf("summary_%s.txt", m.runID))
}

// RunJSONPath returns the full path for the run.json file.
func (m *OutputManager) RunJSONPath() string {
	return filepath.Join(m.outputDir, "run.json")
}

// Metadata returns the run metadata as it stands.
func (m *OutputManager) Metadata() RunMetadata {
	return *m.metadata
}

// Finalize completes the run and writes the summary and run.json.
func (m *OutputManager) Finalize(summary *metrics.Summary, samples []metrics.Sample, runErr error) error {
	m.metadata.EndTime = m.now()
	m.metadata.Duration = m.metadata.EndTime.Sub(m.metadata.StartTime).String()

	if runErr != nil {
		m.metadata.Error = runErr.Error()
		m.metadata.ExitCode = 1
	}

	if summary != nil {
		m.metadata.Stats.Captures = summary.Captures
		m.metadata.Stats.Pulses = summary.Pulses
		m.metadata.Stats.OutOfWindow = summary.OutOfWindow
	}
	m.metadata.Stats.SuggestedTolerancePercent = metrics.SuggestTolerance(samples) * 100

	if err := m.writeSummary(summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	m.metadata.Artifacts.SummaryTxt = filepath.Base(m.SummaryPath())

	if err := m.writeRunJSON(); err != nil {
		return fmt.Errorf("write run.json: %w", err)
	}

	return nil
}

// writeSummary writes a human-readable summary file.
func (m *OutputManager) writeSummary(summary *metrics.Summary) error {
	f, err := os.Create(m.SummaryPath())
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "whynterir Analyze Summary\n")
	fmt.Fprintf(f, "=========================\n\n")

	fmt.Fprintf(f, "Run ID:     %s\n", m.metadata.RunID)
	fmt.Fprintf(f, "Start Time: %s\n", m.metadata.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f, "End Time:   %s\n", m.metadata.EndTime.Format(time.RFC3339))
	fmt.Fprintf(f, "Duration:   %s\n\n", m.metadata.Duration)

	fmt.Fprintf(f, "Captures\n")
	fmt.Fprintf(f, "--------\n")
	for _, c := range m.metadata.Captures {
		fmt.Fprintf(f, "  %s\n", c)
	}
	fmt.Fprintf(f, "Decoded: %d, failed: %d\n\n", m.metadata.Stats.Decoded, m.metadata.Stats.DecodeFailures)

	if summary != nil {
		fmt.Fprint(f, metrics.FormatSummary(summary))
		if s := m.metadata.Stats.SuggestedTolerancePercent; s > 0 {
			fmt.Fprintf(f, "Suggested tolerance: %.0f%%\n", s)
		}
		fmt.Fprintln(f)
	}

	if m.metadata.Error != "" {
		fmt.Fprintf(f, "Error: %s\n\n", m.metadata.Error)
	}

	fmt.Fprintf(f, "Artifacts\n")
	fmt.Fprintf(f, "---------\n")
	if m.metadata.Artifacts.SamplesCSV != "" {
		fmt.Fprintf(f, "Samples: %s\n", m.metadata.Artifacts.SamplesCSV)
	}
	if m.metadata.Artifacts.MetricsProm != "" {
		fmt.Fprintf(f, "Metrics: %s\n", m.metadata.Artifacts.MetricsProm)
	}
	if m.metadata.Artifacts.TimingJSON != "" {
		fmt.Fprintf(f, "Timing:  %s\n", m.metadata.Artifacts.TimingJSON)
	}
	fmt.Fprintf(f, "Summary: %s\n", filepath.Base(m.SummaryPath()))
	fmt.Fprintf(f, "Run JSON: %s\n", m.metadata.Artifacts.RunJSON)

	return nil
}

// writeRunJSON writes the run metadata as JSON.
func (m *OutputManager) writeRunJSON() error {
	data, err := json.MarshalIndent(m.metadata, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.RunJSONPath(), data, 0644)
}
