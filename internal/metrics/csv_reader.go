package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tonylturner/whynterir/internal/whynter"
)

// CaptureSamples is one capture's rows from a samples CSV.
type CaptureSamples struct {
	Capture string
	Samples []Sample
}

// ReadSamplesCSV reads a CSV written by Writer, grouping rows by capture in
// file order.
func ReadSamplesCSV(path string) ([]CaptureSamples, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open samples CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Read and validate header
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[col] = i
	}

	requiredCols := []string{"capture", "index", "role", "kind", "duration_us"}
	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("CSV missing required column: %s", col)
		}
	}

	var groups []CaptureSamples
	byName := make(map[string]int)
	rowCount := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", rowCount+2, err)
		}
		field := func(col string) string {
			if idx, ok := colIndex[col]; ok && idx < len(record) {
				return record[idx]
			}
			return ""
		}

		s := Sample{Role: Role(field("role"))}
		if s.Index, err = strconv.Atoi(field("index")); err != nil {
			return nil, fmt.Errorf("CSV row %d: index: %w", rowCount+2, err)
		}
		if s.DurationUs, err = strconv.ParseInt(field("duration_us"), 10, 64); err != nil {
			return nil, fmt.Errorf("CSV row %d: duration_us: %w", rowCount+2, err)
		}
		switch field("kind") {
		case "mark":
			s.Kind = whynter.Mark
		case "space":
			s.Kind = whynter.Space
		default:
			return nil, fmt.Errorf("CSV row %d: unknown kind %q", rowCount+2, field("kind"))
		}
		if v := field("nominal_us"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				s.NominalUs = n
			}
		}
		if v := field("deviation_us"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				s.DeviationUs = n
			}
		}
		s.InTolerance = field("in_tolerance") == "true"

		name := field("capture")
		idx, ok := byName[name]
		if !ok {
			idx = len(groups)
			byName[name] = idx
			groups = append(groups, CaptureSamples{Capture: name})
		}
		groups[idx].Samples = append(groups[idx].Samples, s)
		rowCount++
	}

	if rowCount == 0 {
		return nil, fmt.Errorf("no data rows in CSV file")
	}

	return groups, nil
}
