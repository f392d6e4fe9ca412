package astro

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"
)

// PorkchopExporter streams intercept search cells to a CSV writer, one row
// per feasible (launch, duration) cell, for external contour plotting. Its
// Observe method can be handed directly to an InterceptRequest: rows are
// serialized internally.
type PorkchopExporter struct {
	mu  sync.Mutex
	w   *csv.Writer
	err error
}

// NewPorkchopExporter writes the CSV header and returns the exporter.
func NewPorkchopExporter(w io.Writer) (*PorkchopExporter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"launch_s", "duration_s", "dv_ms", "short_way"}); err != nil {
		return nil, err
	}
	return &PorkchopExporter{w: cw}, nil
}

// Observe records one feasible cell. Write errors are sticky and surfaced
// by Close.
func (e *PorkchopExporter) Observe(p InterceptPoint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return
	}
	e.err = e.w.Write([]string{
		strconv.FormatFloat(p.Launch, 'f', 3, 64),
		strconv.FormatFloat(p.Duration, 'f', 3, 64),
		strconv.FormatFloat(p.DeltaV, 'f', 3, 64),
		strconv.FormatBool(p.ShortWay),
	})
}

// Close flushes the writer and reports the first error seen.
func (e *PorkchopExporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.w.Flush()
	if e.err != nil {
		return e.err
	}
	return e.w.Error()
}
