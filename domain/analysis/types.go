package analysis

import "dataprof/domain/core"

// DistributionType identifies a distribution family the engine can fit
type DistributionType string

const (
	DistNormal      DistributionType = "normal"
	DistLogNormal   DistributionType = "log_normal"
	DistUniform     DistributionType = "uniform"
	DistPowerLaw    DistributionType = "power_law"
	DistExponential DistributionType = "exponential"
	DistBeta        DistributionType = "beta"
	DistGamma       DistributionType = "gamma"
	DistChiSquared  DistributionType = "chi_squared"
	DistStudentsT   DistributionType = "students_t"
	DistPoisson     DistributionType = "poisson"
	DistBernoulli   DistributionType = "bernoulli"
	DistBinomial    DistributionType = "binomial"
	DistGeometric   DistributionType = "geometric"
	DistWeibull     DistributionType = "weibull"
	DistUnknown     DistributionType = "unknown"
)

// String returns a display name for the distribution family
func (d DistributionType) String() string {
	switch d {
	case DistNormal:
		return "Normal"
	case DistLogNormal:
		return "Log-Normal"
	case DistUniform:
		return "Uniform"
	case DistPowerLaw:
		return "Power Law"
	case DistExponential:
		return "Exponential"
	case DistBeta:
		return "Beta"
	case DistGamma:
		return "Gamma"
	case DistChiSquared:
		return "Chi-Squared"
	case DistStudentsT:
		return "Student's t"
	case DistPoisson:
		return "Poisson"
	case DistBernoulli:
		return "Bernoulli"
	case DistBinomial:
		return "Binomial"
	case DistGeometric:
		return "Geometric"
	case DistWeibull:
		return "Weibull"
	default:
		return "Unknown"
	}
}

// IsDiscrete reports whether the family is supported on integer counts
func (d DistributionType) IsDiscrete() bool {
	switch d {
	case DistPoisson, DistBernoulli, DistBinomial, DistGeometric:
		return true
	}
	return false
}

// ColumnType is the coarse dtype classification used by the profiler
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnTemporal    ColumnType = "temporal"
	ColumnBoolean     ColumnType = "boolean"
)

// DistributionInfo is the summary verdict attached to a numeric column
type DistributionInfo struct {
	Distribution DistributionType   `json:"distribution"`
	Confidence   float64            `json:"confidence"`
	FitQuality   float64            `json:"fit_quality"`
	Parameters   map[string]float64 `json:"parameters,omitempty"`
	// AllScores records the confidence of every family that produced a
	// candidate, keyed by family, including the losers.
	AllScores map[DistributionType]float64 `json:"all_scores,omitempty"`
	// SampleSize is the number of values the verdict was fitted on;
	// IsSampled marks a verdict computed over a sampled frame.
	SampleSize int  `json:"sample_size"`
	IsSampled  bool `json:"is_sampled"`
}

// NumericStatistics holds descriptive statistics for a numeric column
type NumericStatistics struct {
	Mean           float64         `json:"mean"`
	Std            float64         `json:"std"`
	Min            float64         `json:"min"`
	Max            float64         `json:"max"`
	Median         float64         `json:"median"`
	Q25            float64         `json:"q25"`
	Q75            float64         `json:"q75"`
	Percentiles    map[int]float64 `json:"percentiles,omitempty"`
	Skewness       float64         `json:"skewness"`
	Kurtosis       float64         `json:"kurtosis"`
	OutliersIQR    int             `json:"outliers_iqr"`
	OutliersZScore int             `json:"outliers_zscore"`
}

// TopValue is one entry of a categorical frequency table
type TopValue struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// CategoricalStatistics holds descriptive statistics for a non-numeric column
type CategoricalStatistics struct {
	UniqueCount int64      `json:"unique_count"`
	Mode        string     `json:"mode,omitempty"`
	TopValues   []TopValue `json:"top_values,omitempty"`
	Min         string     `json:"min,omitempty"`
	Max         string     `json:"max,omitempty"`
}

// ColumnStatistics is the per-column result of a describe pass
type ColumnStatistics struct {
	Name         string                 `json:"name"`
	Type         ColumnType             `json:"type"`
	Count        int64                  `json:"count"`
	NullCount    int64                  `json:"null_count"`
	Numeric      *NumericStatistics     `json:"numeric,omitempty"`
	Categorical  *CategoricalStatistics `json:"categorical,omitempty"`
	Distribution *DistributionInfo      `json:"distribution,omitempty"`
}

// OutlierMethod tags which detector(s) flagged a row
type OutlierMethod string

const (
	OutlierIQR    OutlierMethod = "iqr"
	OutlierZScore OutlierMethod = "zscore"
	OutlierBoth   OutlierMethod = "both"
)

// FenceSide locates an IQR outlier relative to the fences
type FenceSide string

const (
	BelowLowerFence FenceSide = "below_lower"
	AboveUpperFence FenceSide = "above_upper"
)

// OutlierRow is one flagged observation
type OutlierRow struct {
	Index     int           `json:"index"`
	Value     float64       `json:"value"`
	ZScore    *float64      `json:"z_score,omitempty"`
	FenceSide *FenceSide    `json:"fence_side,omitempty"`
	Method    OutlierMethod `json:"method"`
}

// OutlierAnalysis holds the retained outlier rows plus counts.
// Rows are capped at 100, ordered by descending distance from the mean;
// the counts describe the retained set.
type OutlierAnalysis struct {
	Rows        []OutlierRow `json:"rows"`
	TotalCount  int          `json:"total_count"`
	Percentage  float64      `json:"percentage"`
	IQRCount    int          `json:"iqr_count"`
	ZScoreCount int          `json:"zscore_count"`
	LowerFence  float64      `json:"lower_fence"`
	UpperFence  float64      `json:"upper_fence"`
}

// PercentileBreakdown is the fixed percentile ladder for detail views
type PercentileBreakdown struct {
	P1  float64 `json:"p1"`
	P5  float64 `json:"p5"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// DistributionCharacteristics carries shape diagnostics for a column
type DistributionCharacteristics struct {
	ShapiroStatistic float64 `json:"shapiro_statistic"`
	ShapiroPValue    float64 `json:"shapiro_p_value"`
	Mean             float64 `json:"mean"`
	Median           float64 `json:"median"`
	Std              float64 `json:"std"`
	Variance         float64 `json:"variance"`
	Skewness         float64 `json:"skewness"`
	Kurtosis         float64 `json:"kurtosis"`
	CoefficientVar   float64 `json:"coefficient_of_variation"`
	Mode             float64 `json:"mode"`
}

// DistributionAnalysis is the on-demand per-column detail view
type DistributionAnalysis struct {
	Column          string                      `json:"column"`
	Characteristics DistributionCharacteristics `json:"characteristics"`
	Distribution    DistributionInfo            `json:"distribution"`
	Outliers        OutlierAnalysis             `json:"outliers"`
	Percentiles     PercentileBreakdown         `json:"percentiles"`
	// SortedSample is an ascending value sample for Q-Q plots, capped
	// at 5000 points.
	SortedSample []float64 `json:"sorted_sample,omitempty"`
	SampleSize   int       `json:"sample_size"`
	IsSampled    bool      `json:"is_sampled"`
}

// CorrelationMatrix holds pairwise Pearson results for numeric columns
type CorrelationMatrix struct {
	Columns     []string    `json:"columns"`
	Values      [][]float64 `json:"values"`
	PValues     [][]float64 `json:"p_values"`
	SampleSizes [][]int     `json:"sample_sizes"`
}

// ColumnSummary is the small per-column block inside a correlation pair
type ColumnSummary struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// CorrelationPair is the detail view for a single column pair
type CorrelationPair struct {
	X           ColumnSummary `json:"x"`
	Y           ColumnSummary `json:"y"`
	Correlation float64       `json:"correlation"`
	PValue      float64       `json:"p_value"`
	Covariance  float64       `json:"covariance"`
	RSquared    float64       `json:"r_squared"`
	SampleSize  int           `json:"sample_size"`
}

// SamplingInfo records how rows were selected for an analysis
type SamplingInfo struct {
	TotalRows    int64  `json:"total_rows"`
	AnalyzedRows int64  `json:"analyzed_rows"`
	Sampled      bool   `json:"sampled"`
	Seed         uint64 `json:"seed"`
}

// AnalysisResults is the immutable snapshot produced by one analysis run
type AnalysisResults struct {
	ID          core.AnalysisID                  `json:"id"`
	Sampling    SamplingInfo                     `json:"sampling"`
	Columns     []ColumnStatistics               `json:"columns"`
	Correlation *CorrelationMatrix               `json:"correlation,omitempty"`
	Analyses    map[string]*DistributionAnalysis `json:"analyses,omitempty"`
}

// Column returns the statistics for the named column, or nil
func (r *AnalysisResults) Column(name string) *ColumnStatistics {
	for i := range r.Columns {
		if r.Columns[i].Name == name {
			return &r.Columns[i]
		}
	}
	return nil
}

// NumericColumns returns the names of columns that carry numeric stats
func (r *AnalysisResults) NumericColumns() []string {
	var names []string
	for i := range r.Columns {
		if r.Columns[i].Numeric != nil {
			names = append(names, r.Columns[i].Name)
		}
	}
	return names
}
