package ports

import (
	"context"

	"dataprof/domain/analysis"
)

// ColumnSchema describes a single column of a data source
type ColumnSchema struct {
	Name string              `json:"name"`
	Type analysis.ColumnType `json:"type"`
}

// Schema is the ordered column list of a data source
type Schema []ColumnSchema

// Column returns the schema entry for name, or nil
func (s Schema) Column(name string) *ColumnSchema {
	for i := range s {
		if s[i].Name == name {
			return &s[i]
		}
	}
	return nil
}

// NumericColumns returns the names of numeric columns in schema order
func (s Schema) NumericColumns() []string {
	var names []string
	for _, c := range s {
		if c.Type == analysis.ColumnNumeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// Frame is an immutable in-memory columnar slice of a source
type Frame interface {
	Schema() Schema
	RowCount() int

	// NumericColumn returns a numeric column aligned to row order.
	// Null cells are NaN.
	NumericColumn(name string) ([]float64, error)

	// StringColumn returns a column rendered as strings with a validity
	// mask; null cells have valid=false.
	StringColumn(name string) ([]string, []bool, error)

	// Select returns a frame restricted to the given row indices, in
	// the given order.
	Select(indices []int) Frame
}

// DataSource provides schema discovery, row counting, and bounded
// materialization. Implementations must never materialize more rows
// than asked for.
type DataSource interface {
	Schema(ctx context.Context) (Schema, error)
	RowCount(ctx context.Context) (int64, error)

	// Head materializes at most limit rows from the start of the
	// source. limit <= 0 materializes everything.
	Head(ctx context.Context, limit int) (Frame, error)
}

// AggKind enumerates the aggregations of the shared describe pass
type AggKind string

const (
	AggCount     AggKind = "count"
	AggNullCount AggKind = "null_count"
	AggMean      AggKind = "mean"
	AggStd       AggKind = "std"
	AggMin       AggKind = "min"
	AggQ25       AggKind = "q25"
	AggMedian    AggKind = "median"
	AggQ75       AggKind = "q75"
	AggMax       AggKind = "max"
)

// AggSpec names one aggregation over one column
type AggSpec struct {
	Column string
	Kind   AggKind
}

// Key is the result-map key for this spec
func (a AggSpec) Key() string {
	return a.Column + "::" + string(a.Kind)
}

// AggResult carries the values of a pushdown aggregation pass.
// Numeric aggregations land in Floats (missing or null results are
// absent, not zero); categorical min/max land in Strings.
type AggResult struct {
	Floats  map[string]float64
	Strings map[string]string
}

// AggPushdown is implemented by sources that can run the describe
// aggregations without materializing rows
type AggPushdown interface {
	Aggregate(ctx context.Context, specs []AggSpec) (*AggResult, error)
}

// BuildDescribeSpec builds the single aggregation pass shared by the
// pushdown and full describe paths. Numeric columns get the full
// ladder; other columns get structural counts plus ordering min/max.
func BuildDescribeSpec(schema Schema) []AggSpec {
	numericKinds := []AggKind{
		AggCount, AggNullCount, AggMean, AggStd,
		AggMin, AggQ25, AggMedian, AggQ75, AggMax,
	}
	otherKinds := []AggKind{AggCount, AggNullCount, AggMin, AggMax}

	var specs []AggSpec
	for _, col := range schema {
		kinds := otherKinds
		if col.Type == analysis.ColumnNumeric {
			kinds = numericKinds
		}
		for _, k := range kinds {
			specs = append(specs, AggSpec{Column: col.Name, Kind: k})
		}
	}
	return specs
}
