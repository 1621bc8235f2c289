package app

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"dataprof/adapters/memsource"
	"dataprof/domain/analysis"
	"dataprof/domain/core"
	"dataprof/internal/testkit"
)

func buildSource(t *testing.T) *memsource.Source {
	t.Helper()
	n := 500
	f := memsource.NewFrame()
	require.NoError(t, f.AddNumeric("normal", testkit.NormalColumn(n, 42, 100, 15)))
	require.NoError(t, f.AddNumeric("linear", testkit.LinearColumn(n, 0, 2)))
	require.NoError(t, f.AddNumeric("sparse", testkit.WithNulls(testkit.ExponentialColumn(n, 7, 0.5), 10, 3)))

	regions := make([]string, n)
	for i := range regions {
		regions[i] = []string{"east", "west", "north"}[i%3]
	}
	require.NoError(t, f.AddString("region", regions, nil))
	return memsource.NewSource(f)
}

func TestAnalyzeFull(t *testing.T) {
	svc := NewAnalysisService(nil, 42)
	results, err := svc.Analyze(context.Background(), buildSource(t), FullComputeOptions())
	require.NoError(t, err)

	require.Len(t, results.Columns, 4)
	require.False(t, core.ID(results.ID).IsEmpty())
	require.False(t, results.Sampling.Sampled)
	require.Equal(t, int64(500), results.Sampling.TotalRows)
	require.Equal(t, int64(500), results.Sampling.AnalyzedRows)

	for _, col := range results.Columns {
		require.LessOrEqual(t, col.NullCount, col.Count+col.NullCount)
		require.Equal(t, int64(500), col.Count+col.NullCount, col.Name)
	}

	normal := results.Column("normal")
	require.NotNil(t, normal.Numeric)
	require.InDelta(t, 100, normal.Numeric.Mean, 1)
	require.InDelta(t, 15, normal.Numeric.Std, 1)
	require.NotNil(t, normal.Distribution)
	require.Equal(t, analysis.DistNormal, normal.Distribution.Distribution)
	require.Equal(t, 500, normal.Distribution.SampleSize)
	require.False(t, normal.Distribution.IsSampled)

	sparse := results.Column("sparse")
	require.Equal(t, int64(50), sparse.NullCount)
	require.Equal(t, int64(450), sparse.Count)

	region := results.Column("region")
	require.NotNil(t, region.Categorical)
	require.Equal(t, int64(3), region.Categorical.UniqueCount)
	require.Equal(t, "east", region.Categorical.Min)
	require.Equal(t, "west", region.Categorical.Max)

	require.NotNil(t, results.Correlation)
	require.Len(t, results.Correlation.Columns, 3)
	require.Contains(t, results.Analyses, "normal")
	require.Contains(t, results.Analyses, "linear")
}

func TestAnalyzeSampled(t *testing.T) {
	size := 100
	svc := NewAnalysisService(&size, 42)
	opts := ComputeOptions{IncludeDistributionInfo: true, IncludeDistributionAnalyses: true}
	results, err := svc.Analyze(context.Background(), buildSource(t), opts)
	require.NoError(t, err)

	require.True(t, results.Sampling.Sampled)
	require.Equal(t, int64(500), results.Sampling.TotalRows)
	require.Equal(t, int64(100), results.Sampling.AnalyzedRows)
	require.Equal(t, uint64(42), results.Sampling.Seed)

	normal := results.Column("normal")
	require.NotNil(t, normal.Distribution)
	require.True(t, normal.Distribution.IsSampled)
	require.Equal(t, 100, normal.Distribution.SampleSize)
	require.True(t, results.Analyses["normal"].IsSampled)
	require.True(t, results.Analyses["normal"].Distribution.IsSampled)

	again, err := svc.Analyze(context.Background(), buildSource(t), ComputeOptions{})
	require.NoError(t, err)
	require.Equal(t, results.Column("linear").Numeric.Mean, again.Column("linear").Numeric.Mean)
	require.NotEqual(t, results.ID, again.ID)
}

func TestAnalyzeBelowThresholdKeepsAllRows(t *testing.T) {
	size := 1000
	svc := NewAnalysisService(&size, 42)
	results, err := svc.Analyze(context.Background(), buildSource(t), ComputeOptions{})
	require.NoError(t, err)
	require.False(t, results.Sampling.Sampled)
	require.Equal(t, int64(500), results.Sampling.AnalyzedRows)
}

func TestAnalyzeEmptySource(t *testing.T) {
	f := memsource.NewFrame()
	require.NoError(t, f.AddNumeric("empty", nil))

	svc := NewAnalysisService(nil, 42)
	_, err := svc.Analyze(context.Background(), memsource.NewSource(f), ComputeOptions{})
	require.Error(t, err)
	require.True(t, errors.Is(err, core.ErrEmptyDataset))
}

func TestDescribePushdownAndCompletion(t *testing.T) {
	src := buildSource(t)
	svc := NewAnalysisService(nil, 42)
	ctx := context.Background()

	results, err := svc.DescribePushdown(ctx, src)
	require.NoError(t, err)
	require.Len(t, results.Columns, 4)
	require.Nil(t, results.Correlation)
	require.Nil(t, results.Analyses)

	sparse := results.Column("sparse")
	require.NotNil(t, sparse.Numeric)
	require.Equal(t, 0.0, sparse.Numeric.Skewness)
	require.Equal(t, 3.0, sparse.Numeric.Kurtosis)
	require.Zero(t, sparse.Numeric.OutliersIQR)
	require.Nil(t, sparse.Numeric.Percentiles)
	require.Nil(t, sparse.Distribution)
	require.Greater(t, sparse.Numeric.Mean, 0.0)

	frame, err := src.Head(ctx, 0)
	require.NoError(t, err)
	opts := ComputeOptions{IncludeAdvancedStats: true, IncludeDistributionInfo: true}
	require.NoError(t, svc.ComputeDistributionStatistics(ctx, results, frame, opts))

	// exponential data is right skewed, so the placeholder must be gone
	require.Greater(t, sparse.Numeric.Skewness, 0.5)
	require.NotNil(t, sparse.Numeric.Percentiles)
	require.NotNil(t, sparse.Distribution)
	require.Equal(t, analysis.DistExponential, sparse.Distribution.Distribution)

	require.NoError(t, svc.ComputeCorrelationStatistics(ctx, results, frame))
	require.NotNil(t, results.Correlation)
	require.Len(t, results.Correlation.Columns, 3)
	for i := range results.Correlation.Columns {
		require.Equal(t, 1.0, results.Correlation.Values[i][i])
	}
}

func TestDescribeColumnMatchesAnalyze(t *testing.T) {
	src := buildSource(t)
	svc := NewAnalysisService(nil, 42)
	ctx := context.Background()

	frame, err := src.Head(ctx, 0)
	require.NoError(t, err)
	schema := frame.Schema()

	full, err := svc.Analyze(ctx, src, ComputeOptions{})
	require.NoError(t, err)

	for _, col := range schema {
		st, err := svc.DescribeColumn(ctx, frame, col)
		require.NoError(t, err)
		want := full.Column(col.Name)
		require.Equal(t, want.Count, st.Count, col.Name)
		require.Equal(t, want.NullCount, st.NullCount, col.Name)
		if want.Numeric != nil {
			require.Equal(t, want.Numeric.Mean, st.Numeric.Mean, col.Name)
			require.Equal(t, want.Numeric.Median, st.Numeric.Median, col.Name)
		}
	}
}

func TestAnalyzeColumnDistribution(t *testing.T) {
	src := buildSource(t)
	svc := NewAnalysisService(nil, 42)
	frame, err := src.Head(context.Background(), 0)
	require.NoError(t, err)

	detail, err := svc.AnalyzeColumnDistribution(frame, "normal", false)
	require.NoError(t, err)

	require.Equal(t, "normal", detail.Column)
	require.Equal(t, 500, detail.SampleSize)
	require.False(t, detail.IsSampled)
	require.Equal(t, analysis.DistNormal, detail.Distribution.Distribution)
	require.Equal(t, 500, detail.Distribution.SampleSize)
	require.False(t, detail.Distribution.IsSampled)
	require.Greater(t, detail.Characteristics.ShapiroPValue, 0.3)
	require.InDelta(t, 100, detail.Characteristics.Mean, 1)
	require.InDelta(t, 100, detail.Characteristics.Mode, 10)
	require.InDelta(t, 0.15, detail.Characteristics.CoefficientVar, 0.05)
	require.Len(t, detail.SortedSample, 500)
	require.True(t, sortedAscending(detail.SortedSample))
	require.LessOrEqual(t, detail.Percentiles.P1, detail.Percentiles.P99)

	_, err = svc.AnalyzeColumnDistribution(frame, "region", false)
	require.Error(t, err)
}

func TestCorrelationPairDetail(t *testing.T) {
	src := buildSource(t)
	svc := NewAnalysisService(nil, 42)
	frame, err := src.Head(context.Background(), 0)
	require.NoError(t, err)

	pair, err := svc.CorrelationPair(frame, "linear", "linear")
	require.NoError(t, err)
	require.InDelta(t, 1.0, pair.Correlation, 1e-9)
	require.InDelta(t, 0.0, pair.PValue, 1e-9)
	require.Equal(t, 500, pair.SampleSize)

	_, err = svc.CorrelationPair(frame, "linear", "missing")
	require.Error(t, err)
}

func sortedAscending(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] || math.IsNaN(values[i]) {
			return false
		}
	}
	return true
}
