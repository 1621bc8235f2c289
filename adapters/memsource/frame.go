package memsource

import (
	"context"
	"math"
	"sort"
	"strconv"

	"dataprof/domain/analysis"
	"dataprof/domain/core"
	"dataprof/internal/profile"
	"dataprof/ports"
)

// Frame is a columnar in-memory table. Columns are appended once and
// never mutated afterwards; Select produces a new frame.
type Frame struct {
	schema  ports.Schema
	rows    int
	numeric map[string][]float64
	strings map[string][]string
	valid   map[string][]bool
}

// NewFrame creates an empty frame
func NewFrame() *Frame {
	return &Frame{
		numeric: make(map[string][]float64),
		strings: make(map[string][]string),
		valid:   make(map[string][]bool),
	}
}

// AddNumeric appends a numeric column. Null cells are NaN. The first
// column added fixes the row count.
func (f *Frame) AddNumeric(name string, values []float64) error {
	if err := f.admit(name, len(values)); err != nil {
		return err
	}
	f.schema = append(f.schema, ports.ColumnSchema{Name: name, Type: analysis.ColumnNumeric})
	f.numeric[name] = values
	return nil
}

// AddString appends a categorical column with a validity mask. A nil
// mask means every cell is valid.
func (f *Frame) AddString(name string, values []string, valid []bool) error {
	if err := f.admit(name, len(values)); err != nil {
		return err
	}
	if valid == nil {
		valid = make([]bool, len(values))
		for i := range valid {
			valid[i] = true
		}
	}
	if len(valid) != len(values) {
		return core.NewColumnError(name, core.ErrSchemaRead)
	}
	f.schema = append(f.schema, ports.ColumnSchema{Name: name, Type: analysis.ColumnCategorical})
	f.strings[name] = values
	f.valid[name] = valid
	return nil
}

func (f *Frame) admit(name string, n int) error {
	if f.schema.Column(name) != nil {
		return core.NewColumnError(name, core.ErrSchemaRead)
	}
	if len(f.schema) == 0 {
		f.rows = n
		return nil
	}
	if n != f.rows {
		return core.NewColumnError(name, core.ErrSchemaRead)
	}
	return nil
}

func (f *Frame) Schema() ports.Schema { return f.schema }

func (f *Frame) RowCount() int { return f.rows }

func (f *Frame) NumericColumn(name string) ([]float64, error) {
	if values, ok := f.numeric[name]; ok {
		return values, nil
	}
	if f.schema.Column(name) != nil {
		return nil, core.NewColumnError(name, core.ErrColumnNotNumeric)
	}
	return nil, core.NewColumnError(name, core.ErrColumnNotFound)
}

func (f *Frame) StringColumn(name string) ([]string, []bool, error) {
	if values, ok := f.strings[name]; ok {
		return values, f.valid[name], nil
	}
	// numeric columns render through the categorical path too
	if values, ok := f.numeric[name]; ok {
		rendered := make([]string, len(values))
		valid := make([]bool, len(values))
		for i, v := range values {
			if math.IsNaN(v) {
				continue
			}
			rendered[i] = strconv.FormatFloat(v, 'g', -1, 64)
			valid[i] = true
		}
		return rendered, valid, nil
	}
	return nil, nil, core.NewColumnError(name, core.ErrColumnNotFound)
}

// Select returns a frame restricted to indices, in order. Out-of-range
// indices are dropped.
func (f *Frame) Select(indices []int) ports.Frame {
	var kept []int
	for _, idx := range indices {
		if idx >= 0 && idx < f.rows {
			kept = append(kept, idx)
		}
	}

	out := NewFrame()
	out.schema = append(ports.Schema(nil), f.schema...)
	out.rows = len(kept)
	for name, values := range f.numeric {
		picked := make([]float64, len(kept))
		for i, idx := range kept {
			picked[i] = values[idx]
		}
		out.numeric[name] = picked
	}
	for name, values := range f.strings {
		picked := make([]string, len(kept))
		pickedValid := make([]bool, len(kept))
		mask := f.valid[name]
		for i, idx := range kept {
			picked[i] = values[idx]
			pickedValid[i] = mask[idx]
		}
		out.strings[name] = picked
		out.valid[name] = pickedValid
	}
	return out
}

// Aggregate runs the describe aggregations directly over the columns
func (f *Frame) Aggregate(_ context.Context, specs []ports.AggSpec) (*ports.AggResult, error) {
	result := &ports.AggResult{
		Floats:  make(map[string]float64),
		Strings: make(map[string]string),
	}

	numericCache := make(map[string][]float64)
	for _, spec := range specs {
		if _, ok := f.numeric[spec.Column]; ok {
			if _, cached := numericCache[spec.Column]; !cached {
				numericCache[spec.Column] = sortedComplete(f.numeric[spec.Column])
			}
			f.aggNumeric(result, spec, numericCache[spec.Column])
			continue
		}
		if _, ok := f.strings[spec.Column]; ok {
			f.aggString(result, spec)
			continue
		}
		return nil, core.NewColumnError(spec.Column, core.ErrColumnNotFound)
	}
	return result, nil
}

func (f *Frame) aggNumeric(result *ports.AggResult, spec ports.AggSpec, sorted []float64) {
	key := spec.Key()
	n := len(sorted)

	switch spec.Kind {
	case ports.AggCount:
		result.Floats[key] = float64(n)
		return
	case ports.AggNullCount:
		result.Floats[key] = float64(f.rows - n)
		return
	}
	if n == 0 {
		return
	}

	switch spec.Kind {
	case ports.AggMean:
		sum := 0.0
		for _, v := range sorted {
			sum += v
		}
		result.Floats[key] = sum / float64(n)
	case ports.AggStd:
		if n < 2 {
			return
		}
		mean := 0.0
		for _, v := range sorted {
			mean += v
		}
		mean /= float64(n)
		ss := 0.0
		for _, v := range sorted {
			ss += (v - mean) * (v - mean)
		}
		result.Floats[key] = math.Sqrt(ss / float64(n-1))
	case ports.AggMin:
		result.Floats[key] = sorted[0]
	case ports.AggMax:
		result.Floats[key] = sorted[n-1]
	case ports.AggQ25:
		result.Floats[key] = profile.NearestRankPercentile(sorted, 25)
	case ports.AggMedian:
		result.Floats[key] = profile.NearestRankPercentile(sorted, 50)
	case ports.AggQ75:
		result.Floats[key] = profile.NearestRankPercentile(sorted, 75)
	}
}

func (f *Frame) aggString(result *ports.AggResult, spec ports.AggSpec) {
	values := f.strings[spec.Column]
	mask := f.valid[spec.Column]
	key := spec.Key()

	n := 0
	var min, max string
	for i, v := range values {
		if !mask[i] {
			continue
		}
		if n == 0 || v < min {
			min = v
		}
		if n == 0 || v > max {
			max = v
		}
		n++
	}

	switch spec.Kind {
	case ports.AggCount:
		result.Floats[key] = float64(n)
	case ports.AggNullCount:
		result.Floats[key] = float64(f.rows - n)
	case ports.AggMin:
		if n > 0 {
			result.Strings[key] = min
		}
	case ports.AggMax:
		if n > 0 {
			result.Strings[key] = max
		}
	}
}

func sortedComplete(values []float64) []float64 {
	complete := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			complete = append(complete, v)
		}
	}
	sort.Float64s(complete)
	return complete
}
