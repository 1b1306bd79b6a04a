package metrics

// Sample output (CSV) and summary formatting

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"capture",
	"index",
	"role",
	"kind",
	"duration_us",
	"nominal_us",
	"deviation_us",
	"in_tolerance",
}

// Writer writes classified samples as CSV.
type Writer struct {
	file      *os.File
	csvWriter *csv.Writer
}

// NewWriter creates path and writes the CSV header.
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create CSV file: %w", err)
	}
	w := newCSVWriter(file)
	w.file = file
	if err := w.writeHeader(); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func newCSVWriter(out io.Writer) *Writer {
	return &Writer{csvWriter: csv.NewWriter(out)}
}

func (w *Writer) writeHeader() error {
	if err := w.csvWriter.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	w.csvWriter.Flush()
	return w.csvWriter.Error()
}

// WriteSamples appends one capture's samples.
func (w *Writer) WriteSamples(capture string, samples []Sample) error {
	for _, s := range samples {
		record := []string{
			capture,
			strconv.Itoa(s.Index),
			string(s.Role),
			s.Kind.String(),
			strconv.FormatInt(s.DurationUs, 10),
			strconv.FormatInt(s.NominalUs, 10),
			strconv.FormatInt(s.DeviationUs, 10),
			strconv.FormatBool(s.InTolerance),
		}
		if err := w.csvWriter.Write(record); err != nil {
			return fmt.Errorf("write CSV record: %w", err)
		}
	}
	w.csvWriter.Flush()
	return w.csvWriter.Error()
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	w.csvWriter.Flush()
	if w.file != nil {
		return w.file.Close()
	}
	return w.csvWriter.Error()
}

// FormatSummary renders a summary as a plain-text table.
func FormatSummary(s *Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Captures: %d  Pulses: %d  Out of window: %d  Tolerance: ±%.0f%%\n",
		s.Captures, s.Pulses, s.OutOfWindow, s.Tolerance*100)
	fmt.Fprintf(&b, "%-11s %6s %6s %9s %9s %9s %8s %8s %8s\n",
		"role", "count", "out", "min_us", "max_us", "avg_us", "p50|us|", "p90|us|", "p99|us|")
	for _, role := range Roles {
		st, ok := s.ByRole[role]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%-11s %6d %6d %9.0f %9.0f %9.1f %8.0f %8.0f %8.0f\n",
			role, st.Count, st.OutOfWindow, st.MinDeviation, st.MaxDeviation, st.AvgDeviation,
			st.P50Abs, st.P90Abs, st.P99Abs)
	}
	return b.String()
}
