package quant

import (
	"fmt"
	"sort"
)

// Frame is an ordered collection of named series sharing a single index.
// Column-wise routines accept a Frame instead of dispatching on input shape
// at runtime; frames carrying a hierarchical (multi-level) index are
// rejected before any computation.
type Frame struct {
	// IndexLevels is the number of index levels the frame was built with.
	// Only single-level frames are computable.
	IndexLevels int

	cols []string
	data map[string][]float64
}

// NewFrame creates an empty single-level frame.
func NewFrame() *Frame {
	return &Frame{IndexLevels: 1, data: make(map[string][]float64)}
}

// FrameFromMap builds a single-level frame from named series, with columns
// ordered by name so results are deterministic.
func FrameFromMap(columns map[string][]float64) *Frame {
	f := NewFrame()
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.Add(name, columns[name])
	}
	return f
}

// Add appends a column, replacing any existing column with the same name.
func (f *Frame) Add(name string, values []float64) {
	if _, ok := f.data[name]; !ok {
		f.cols = append(f.cols, name)
	}
	f.data[name] = values
}

// Columns returns column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.cols))
	copy(out, f.cols)
	return out
}

// Column returns the series stored under name, or nil.
func (f *Frame) Column(name string) []float64 {
	return f.data[name]
}

// Len returns the number of columns.
func (f *Frame) Len() int {
	return len(f.cols)
}

// checkComputable rejects empty and hierarchical-indexed frames before any
// column-wise computation proceeds.
func (f *Frame) checkComputable() error {
	if f == nil || len(f.cols) == 0 {
		return fmt.Errorf("%w: frame has no columns", ErrInvalidInput)
	}
	if f.IndexLevels != 1 {
		return fmt.Errorf("%w: frame has %d index levels, expected 1", ErrHierarchicalIndex, f.IndexLevels)
	}
	return nil
}
