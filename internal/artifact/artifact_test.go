package artifact

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tonylturner/whynterir/internal/metrics"
	"github.com/tonylturner/whynterir/internal/whynter"
)

func fixedClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

func TestNewOutputManager(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "output")

	m, err := NewOutputManager(outDir, "dev")
	if err != nil {
		t.Fatalf("NewOutputManager() error = %v", err)
	}

	if m.OutputDir() != outDir {
		t.Errorf("OutputDir() = %q, want %q", m.OutputDir(), outDir)
	}
	if m.RunID() == "" {
		t.Error("RunID() should not be empty")
	}

	info, err := os.Stat(outDir)
	if err != nil {
		t.Fatalf("output dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("output path should be a directory")
	}
}

func TestNewOutputManager_InvalidPath(t *testing.T) {
	_, err := NewOutputManager("/dev/null/impossible", "dev")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestOutputManager_Paths(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m, err := newOutputManager(dir, "dev", fixedClock(start, time.Second))
	if err != nil {
		t.Fatalf("newOutputManager() error = %v", err)
	}

	if m.RunID() != "20260314-092653" {
		t.Errorf("RunID() = %q", m.RunID())
	}
	tests := map[string]string{
		m.SamplesPath(): "samples_20260314-092653.csv",
		m.MetricsPath(): "metrics_20260314-092653.prom",
		m.SummaryPath(): "summary_20260314-092653.txt",
		m.RunJSONPath(): "run.json",
	}
	for got, want := range tests {
		if got != filepath.Join(dir, want) {
			t.Errorf("path = %q, want %q", got, filepath.Join(dir, want))
		}
	}
}

func TestOutputManager_Finalize(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m, err := newOutputManager(dir, "1.0.0", fixedClock(start, 1500*time.Millisecond))
	if err != nil {
		t.Fatalf("newOutputManager() error = %v", err)
	}

	train := whynter.Encode(whynter.Packet{0x48, 0x12, 0xA8, 75})
	for i := range train.Pulses {
		if train.Pulses[i].Kind == whynter.Mark {
			train.Pulses[i].Duration += 100 * time.Microsecond
		}
	}
	sink := metrics.NewSink(0.25)
	sink.Record(train)
	sink.Record(whynter.Encode(whynter.Packet{0x48, 0x12, 0xA8, 75}))

	m.SetTolerance(0.25)
	m.AddCapture("jittered.txt", true)
	m.AddCapture("nominal.txt", true)
	m.AddCapture("broken.txt", false)
	m.SetSamplesFile()
	m.SetMetricsFile()

	if err := m.Finalize(sink.GetSummary(), sink.GetSamples(), nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	data, err := os.ReadFile(m.RunJSONPath())
	if err != nil {
		t.Fatalf("read run.json: %v", err)
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("unmarshal run.json: %v", err)
	}
	if meta.Version != "1.0.0" || meta.Duration != "1.5s" || meta.ExitCode != 0 {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.TolerancePercent != 25 || len(meta.Captures) != 3 {
		t.Errorf("inputs = %v, %v", meta.TolerancePercent, meta.Captures)
	}
	want := RunStats{
		Captures:                  2,
		Pulses:                    2 * whynter.TrainLength,
		OutOfWindow:               0,
		Decoded:                   2,
		DecodeFailures:            1,
		SuggestedTolerancePercent: 19,
	}
	if meta.Stats != want {
		t.Errorf("stats = %+v, want %+v", meta.Stats, want)
	}
	if meta.Artifacts.SamplesCSV != "samples_20260314-092653.csv" ||
		meta.Artifacts.MetricsProm != "metrics_20260314-092653.prom" ||
		meta.Artifacts.SummaryTxt != "summary_20260314-092653.txt" {
		t.Errorf("artifacts = %+v", meta.Artifacts)
	}

	summary, err := os.ReadFile(m.SummaryPath())
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	for _, want := range []string{"jittered.txt", "Decoded: 2, failed: 1", "bit_mark", "Suggested tolerance: 19%", "Metrics: metrics_"} {
		if !strings.Contains(string(summary), want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestOutputManager_FinalizeWithError(t *testing.T) {
	m, err := NewOutputManager(t.TempDir(), "dev")
	if err != nil {
		t.Fatalf("NewOutputManager() error = %v", err)
	}
	if err := m.Finalize(nil, nil, errors.New("capture file does not exist")); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	meta := m.Metadata()
	if meta.ExitCode != 1 || meta.Error != "capture file does not exist" {
		t.Errorf("metadata = %+v", meta)
	}
	summary, _ := os.ReadFile(m.SummaryPath())
	if !strings.Contains(string(summary), "Error: capture file does not exist") {
		t.Errorf("summary = %s", summary)
	}
}
