// Package telemetry records per-tick simulation summaries to CSV for
// offline analysis, the way a long-running headless experiment would want
// to inspect population and energy trends without re-simulating.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// Recorder handles structured per-tick output as CSV. A nil *Recorder is
// safe to call every method on — Write/Close become no-ops — so a driver
// can construct one unconditionally and only pay for file I/O when an
// output directory was actually requested.
type Recorder struct {
	dir           string
	tickFile      *os.File
	headerWritten bool
}

// NewRecorder creates a recorder writing to dir/ticks.csv. Returns a nil
// *Recorder (not an error) when dir is empty, meaning output is disabled.
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "ticks.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating ticks.csv: %w", err)
	}

	return &Recorder{dir: dir, tickFile: f}, nil
}

// Write appends one tick's summary to ticks.csv, writing the header on the
// first call and skipping it on every subsequent call.
func (r *Recorder) Write(rec TickRecord) error {
	if r == nil {
		return nil
	}

	records := []TickRecord{rec}

	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.tickFile); err != nil {
			return fmt.Errorf("writing tick record: %w", err)
		}
		r.headerWritten = true
		return nil
	}

	if err := gocsv.MarshalWithoutHeaders(records, r.tickFile); err != nil {
		return fmt.Errorf("writing tick record: %w", err)
	}
	return nil
}

// Dir returns the output directory, or the empty string when recording is
// disabled.
func (r *Recorder) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// Close flushes and closes the underlying CSV file.
func (r *Recorder) Close() error {
	if r == nil || r.tickFile == nil {
		return nil
	}
	return r.tickFile.Close()
}
