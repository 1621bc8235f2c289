package app

import (
	"context"
	"math"

	"dataprof/domain/analysis"
	"dataprof/domain/core"
	"dataprof/internal"
	"dataprof/internal/correlation"
	"dataprof/internal/distfit"
	apperrors "dataprof/internal/errors"
	"dataprof/internal/profile"
	"dataprof/internal/sample"
	"dataprof/ports"
)

// ComputeOptions selects which result layers an analysis pass fills in.
// Hosts that render incrementally start with everything off and enrich
// the snapshot through the incremental entry points.
type ComputeOptions struct {
	IncludeDistributionInfo     bool
	IncludeDistributionAnalyses bool
	IncludeCorrelationMatrix    bool
	IncludeAdvancedStats        bool
}

// FullComputeOptions enables every layer
func FullComputeOptions() ComputeOptions {
	return ComputeOptions{
		IncludeDistributionInfo:     true,
		IncludeDistributionAnalyses: true,
		IncludeCorrelationMatrix:    true,
		IncludeAdvancedStats:        true,
	}
}

// AnalysisService runs describe, distribution, outlier, and correlation
// passes over a data source and aggregates them into one snapshot.
type AnalysisService struct {
	profiler   *profile.Profiler
	battery    *distfit.Battery
	corr       *correlation.Engine
	logger     *internal.Logger
	sampleSize *int
	seed       uint64
}

// NewAnalysisService creates a service. A nil sampleSize disables
// sampling entirely.
func NewAnalysisService(sampleSize *int, seed uint64) *AnalysisService {
	return &AnalysisService{
		profiler:   profile.NewProfiler(),
		battery:    distfit.NewBattery(),
		corr:       correlation.NewEngine(),
		logger:     internal.DefaultLogger.WithPrefix("analysis"),
		sampleSize: sampleSize,
		seed:       seed,
	}
}

// Analyze runs the full pipeline against a source and returns an
// immutable results snapshot.
func (s *AnalysisService) Analyze(ctx context.Context, src ports.DataSource, opts ComputeOptions) (*analysis.AnalysisResults, error) {
	frame, sampling, err := s.MaterializeFrame(ctx, src)
	if err != nil {
		return nil, err
	}

	results := ResultsFromDescribe(sampling, nil)
	for _, col := range frame.Schema() {
		st, err := s.DescribeColumn(ctx, frame, col)
		if err != nil {
			return nil, err
		}
		results.Columns = append(results.Columns, st)
	}

	if opts.IncludeAdvancedStats || opts.IncludeDistributionInfo || opts.IncludeDistributionAnalyses {
		if err := s.ComputeDistributionStatistics(ctx, results, frame, opts); err != nil {
			return nil, err
		}
	}
	if opts.IncludeCorrelationMatrix {
		if err := s.ComputeCorrelationStatistics(ctx, results, frame); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// DescribePushdown runs the shared describe aggregation directly on the
// source without materializing rows. Skewness, kurtosis, and outlier
// counts are left at their placeholder defaults for
// ComputeDistributionStatistics to fill in later.
func (s *AnalysisService) DescribePushdown(ctx context.Context, src ports.DataSource) (*analysis.AnalysisResults, error) {
	schema, total, err := s.inspect(ctx, src)
	if err != nil {
		return nil, err
	}

	agg, ok := src.(ports.AggPushdown)
	if !ok {
		return nil, apperrors.SourceError("source does not support aggregation pushdown", nil)
	}
	result, err := agg.Aggregate(ctx, ports.BuildDescribeSpec(schema))
	if err != nil {
		return nil, apperrors.AnalysisFailed("describe aggregation failed", err)
	}

	results := ResultsFromDescribe(analysis.SamplingInfo{
		TotalRows:    total,
		AnalyzedRows: total,
		Seed:         s.seed,
	}, nil)
	for _, col := range schema {
		results.Columns = append(results.Columns, columnFromAgg(col, result))
	}
	return results, nil
}

// DescribeColumn computes the describe statistics for a single schema
// column over a materialized frame. Hosts call it once per column so
// they can repaint between calls.
func (s *AnalysisService) DescribeColumn(ctx context.Context, frame ports.Frame, col ports.ColumnSchema) (analysis.ColumnStatistics, error) {
	if col.Type == analysis.ColumnNumeric {
		agg, ok := frame.(ports.AggPushdown)
		if !ok {
			return analysis.ColumnStatistics{}, apperrors.SourceError("frame does not support aggregation", nil)
		}
		result, err := agg.Aggregate(ctx, ports.BuildDescribeSpec(ports.Schema{col}))
		if err != nil {
			return analysis.ColumnStatistics{}, apperrors.AnalysisFailed("describe aggregation failed", err)
		}
		return columnFromAgg(col, result), nil
	}

	values, valid, err := frame.StringColumn(col.Name)
	if err != nil {
		return analysis.ColumnStatistics{}, err
	}
	count := int64(0)
	for _, ok := range valid {
		if ok {
			count++
		}
	}
	return analysis.ColumnStatistics{
		Name:        col.Name,
		Type:        col.Type,
		Count:       count,
		NullCount:   int64(len(values)) - count,
		Categorical: profile.DescribeCategorical(values, valid),
	}, nil
}

// ResultsFromDescribe assembles a snapshot from per-column describe
// results, ready for the incremental completion passes
func ResultsFromDescribe(sampling analysis.SamplingInfo, columns []analysis.ColumnStatistics) *analysis.AnalysisResults {
	return &analysis.AnalysisResults{
		ID:       core.AnalysisID(core.NewID()),
		Sampling: sampling,
		Columns:  columns,
	}
}

// ComputeDistributionStatistics completes a describe-only snapshot in
// place: columns still carrying the placeholder pattern (skew 0, kurt 3,
// zero outlier counts, nonzero count) get skewness, kurtosis, outlier
// counts, and the percentile ladder; missing distribution verdicts and
// detail analyses are added per opts.
func (s *AnalysisService) ComputeDistributionStatistics(ctx context.Context, results *analysis.AnalysisResults, frame ports.Frame, opts ComputeOptions) error {
	for i := range results.Columns {
		st := &results.Columns[i]
		if st.Numeric == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		column, err := frame.NumericColumn(st.Name)
		if err != nil {
			return err
		}
		w := profile.NewWorking(column)

		if opts.IncludeAdvancedStats && hasPlaceholders(st) {
			fillAdvanced(st.Numeric, w)
		}
		if opts.IncludeDistributionInfo && st.Distribution == nil {
			info := s.battery.Run(w.Values)
			info.IsSampled = results.Sampling.Sampled
			st.Distribution = &info
		}
		if opts.IncludeDistributionAnalyses {
			if results.Analyses == nil {
				results.Analyses = make(map[string]*analysis.DistributionAnalysis)
			}
			if _, done := results.Analyses[st.Name]; !done {
				detail, err := s.AnalyzeColumnDistribution(frame, st.Name, results.Sampling.Sampled)
				if err != nil {
					return err
				}
				results.Analyses[st.Name] = detail
			}
		}
	}
	return nil
}

// ComputeCorrelationStatistics fills a missing correlation matrix in
// place. Fewer than two numeric columns leaves the matrix absent.
func (s *AnalysisService) ComputeCorrelationStatistics(_ context.Context, results *analysis.AnalysisResults, frame ports.Frame) error {
	if results.Correlation != nil {
		return nil
	}
	names := frame.Schema().NumericColumns()
	if len(names) < 2 {
		return nil
	}
	columns := make([][]float64, len(names))
	for i, name := range names {
		values, err := frame.NumericColumn(name)
		if err != nil {
			return err
		}
		columns[i] = values
	}
	results.Correlation = s.corr.Matrix(names, columns)
	return nil
}

// AnalyzeColumnDistribution builds the on-demand detail view for one
// numeric column: shape diagnostics, the fitted family with all
// candidate scores, outlier rows, the percentile ladder, and a sorted
// sample for Q-Q rendering. sampled records whether the frame was
// materialized through a sampling plan.
func (s *AnalysisService) AnalyzeColumnDistribution(frame ports.Frame, name string, sampled bool) (*analysis.DistributionAnalysis, error) {
	column, err := frame.NumericColumn(name)
	if err != nil {
		return nil, err
	}

	ns, w := s.profiler.Describe(column)
	verdict := s.battery.Run(w.Values)
	verdict.IsSampled = sampled
	sorted := w.Sorted()
	statistic, pvalue := s.profiler.ShapiroWilkApprox(sorted, ns.Skewness, ns.Kurtosis)

	cv := 0.0
	if ns.Mean != 0 && !math.IsNaN(ns.Mean) {
		cv = ns.Std / math.Abs(ns.Mean)
	}
	variance := ns.Std * ns.Std

	detail := &analysis.DistributionAnalysis{
		Column: name,
		Characteristics: analysis.DistributionCharacteristics{
			ShapiroStatistic: statistic,
			ShapiroPValue:    pvalue,
			Mean:             ns.Mean,
			Median:           ns.Median,
			Std:              ns.Std,
			Variance:         variance,
			Skewness:         ns.Skewness,
			Kurtosis:         ns.Kurtosis,
			CoefficientVar:   cv,
			Mode:             profile.EstimateMode(w.Values, ns.Min, ns.Max),
		},
		Distribution: verdict,
		Outliers:     profile.DetectOutliers(w, ns.Q25, ns.Q75, ns.Mean, ns.Std),
		Percentiles:  profile.Breakdown(ns.Percentiles),
		SortedSample: profile.QQSample(sorted),
		SampleSize:   w.Len(),
		IsSampled:    sampled,
	}
	return detail, nil
}

// CorrelationPair computes the expanded detail for a single pair of
// numeric columns
func (s *AnalysisService) CorrelationPair(frame ports.Frame, nameX, nameY string) (analysis.CorrelationPair, error) {
	x, err := frame.NumericColumn(nameX)
	if err != nil {
		return analysis.CorrelationPair{}, err
	}
	y, err := frame.NumericColumn(nameY)
	if err != nil {
		return analysis.CorrelationPair{}, err
	}
	return s.corr.Detail(nameX, nameY, x, y), nil
}

func (s *AnalysisService) inspect(ctx context.Context, src ports.DataSource) (ports.Schema, int64, error) {
	schema, err := src.Schema(ctx)
	if err != nil {
		return nil, 0, apperrors.SchemaError(err.Error())
	}
	total, err := src.RowCount(ctx)
	if err != nil {
		return nil, 0, apperrors.SourceError("row count failed", err)
	}
	if total == 0 {
		return nil, 0, apperrors.AnalysisFailed("nothing to analyze", core.ErrEmptyDataset)
	}
	return schema, total, nil
}

// MaterializeFrame applies the sampling plan and returns the frame every
// row-level pass runs over, plus the sampling record for the snapshot.
// Hosts driving the chunked API call this once and thread the frame
// through the per-column and completion entry points.
func (s *AnalysisService) MaterializeFrame(ctx context.Context, src ports.DataSource) (ports.Frame, analysis.SamplingInfo, error) {
	_, total, err := s.inspect(ctx, src)
	if err != nil {
		return nil, analysis.SamplingInfo{}, err
	}

	plan := sample.NewPlan(total, s.sampleSize, s.seed)
	limit := 0
	if plan.Sampled {
		limit = plan.CollectLimit
	}
	head, err := src.Head(ctx, limit)
	if err != nil {
		return nil, analysis.SamplingInfo{}, apperrors.SourceError("row materialization failed", err)
	}

	frame := head
	if plan.Sampled {
		frame = head.Select(plan.Indices(head.RowCount()))
	}
	s.logger.Debug("materialized %d of %d rows (sampled=%v)", frame.RowCount(), total, plan.Sampled)

	return frame, analysis.SamplingInfo{
		TotalRows:    total,
		AnalyzedRows: int64(frame.RowCount()),
		Sampled:      plan.Sampled,
		Seed:         s.seed,
	}, nil
}

// hasPlaceholders reports whether a numeric column still carries the
// pushdown defaults. A genuinely symmetric mesokurtic column without
// outliers matches too; recomputing it is idempotent.
func hasPlaceholders(st *analysis.ColumnStatistics) bool {
	n := st.Numeric
	return st.Count > 0 && n.Skewness == 0 && n.Kurtosis == 3 &&
		n.OutliersIQR == 0 && n.OutliersZScore == 0
}

func fillAdvanced(n *analysis.NumericStatistics, w *profile.Working) {
	n.Skewness = profile.Skewness(w.Values, n.Mean, n.Std)
	n.Kurtosis = profile.Kurtosis(w.Values, n.Mean, n.Std)
	n.OutliersIQR, n.OutliersZScore = profile.CountOutliers(w.Values, n.Q25, n.Q75, n.Mean, n.Std)
	if n.Percentiles == nil {
		n.Percentiles = profile.PercentileLadder(w.Sorted())
	}
}

func columnFromAgg(col ports.ColumnSchema, result *ports.AggResult) analysis.ColumnStatistics {
	get := func(kind ports.AggKind) float64 {
		if v, ok := result.Floats[ports.AggSpec{Column: col.Name, Kind: kind}.Key()]; ok {
			return v
		}
		return math.NaN()
	}

	count := int64(0)
	if v := get(ports.AggCount); !math.IsNaN(v) {
		count = int64(v)
	}
	nulls := int64(0)
	if v := get(ports.AggNullCount); !math.IsNaN(v) {
		nulls = int64(v)
	}

	st := analysis.ColumnStatistics{
		Name:      col.Name,
		Type:      col.Type,
		Count:     count,
		NullCount: nulls,
	}
	if col.Type == analysis.ColumnNumeric {
		st.Numeric = &analysis.NumericStatistics{
			Mean:     get(ports.AggMean),
			Std:      get(ports.AggStd),
			Min:      get(ports.AggMin),
			Max:      get(ports.AggMax),
			Median:   get(ports.AggMedian),
			Q25:      get(ports.AggQ25),
			Q75:      get(ports.AggQ75),
			Kurtosis: 3,
		}
	} else {
		st.Categorical = &analysis.CategoricalStatistics{
			Min: result.Strings[ports.AggSpec{Column: col.Name, Kind: ports.AggMin}.Key()],
			Max: result.Strings[ports.AggSpec{Column: col.Name, Kind: ports.AggMax}.Key()],
		}
	}
	return st
}
