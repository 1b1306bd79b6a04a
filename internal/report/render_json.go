package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Report is a JSON-rendered command result.
type Report interface {
	FrameReport | TimingReport
}

func marshal[R Report](r R) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", r, err)
	}
	return append(data, '\n'), nil
}

// WriteJSON renders a frame or timing report to w.
func WriteJSON[R Report](w io.Writer, r R) error {
	data, err := marshal(r)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %T: %w", r, err)
	}
	return nil
}

// WriteJSONFile renders a frame or timing report to path.
func WriteJSONFile[R Report](path string, r R) error {
	data, err := marshal(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
