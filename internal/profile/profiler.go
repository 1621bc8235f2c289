package profile

import (
	"math"
	"sort"

	mfstats "github.com/montanaflynn/stats"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// WorkingArrayLimit caps the values used for percentile, shape, and
// outlier work. The cap is a deterministic prefix of the analyzed rows,
// not a random subset, so repeated runs agree.
const WorkingArrayLimit = 10_000

// QQSampleLimit caps the sorted sample kept for detail views
const QQSampleLimit = 5_000

// Working is the non-null slice of a numeric column with its original
// row positions preserved
type Working struct {
	Values  []float64
	Indices []int
}

// NewWorking drops null (NaN) cells and truncates to the working limit
func NewWorking(column []float64) *Working {
	w := &Working{}
	for i, v := range column {
		if math.IsNaN(v) {
			continue
		}
		w.Values = append(w.Values, v)
		w.Indices = append(w.Indices, i)
		if len(w.Values) >= WorkingArrayLimit {
			break
		}
	}
	return w
}

// Len returns the number of retained values
func (w *Working) Len() int { return len(w.Values) }

// Sorted returns an ascending copy of the retained values
func (w *Working) Sorted() []float64 {
	out := make([]float64, len(w.Values))
	copy(out, w.Values)
	sort.Float64s(out)
	return out
}

// percentileKeys is the fixed ladder reported for every numeric column
var percentileKeys = []int{1, 5, 25, 50, 75, 95, 99}

// Profiler computes descriptive statistics for one column at a time
type Profiler struct {
	dist *distmath.Distributions
}

// NewProfiler creates a profiler backed by the shared distribution math
func NewProfiler() *Profiler {
	return &Profiler{dist: distmath.NewDistributions()}
}

// Describe computes the full numeric summary over the working values.
// The column slice may be longer than the working array; counts always
// reflect the full column.
func (p *Profiler) Describe(column []float64) (*analysis.NumericStatistics, *Working) {
	w := NewWorking(column)
	ns := &analysis.NumericStatistics{Kurtosis: 3}
	if w.Len() == 0 {
		ns.Mean = math.NaN()
		ns.Std = math.NaN()
		ns.Min = math.NaN()
		ns.Max = math.NaN()
		ns.Median = math.NaN()
		ns.Q25 = math.NaN()
		ns.Q75 = math.NaN()
		return ns, w
	}

	mean, _ := mfstats.Mean(w.Values)
	std := 0.0
	if w.Len() > 1 {
		std, _ = mfstats.StandardDeviationSample(w.Values)
	}
	min, _ := mfstats.Min(w.Values)
	max, _ := mfstats.Max(w.Values)

	sorted := w.Sorted()
	ns.Mean = mean
	ns.Std = std
	ns.Min = min
	ns.Max = max
	ns.Q25 = NearestRankPercentile(sorted, 25)
	ns.Median = NearestRankPercentile(sorted, 50)
	ns.Q75 = NearestRankPercentile(sorted, 75)
	ns.Percentiles = PercentileLadder(sorted)
	ns.Skewness = Skewness(w.Values, mean, std)
	ns.Kurtosis = Kurtosis(w.Values, mean, std)
	ns.OutliersIQR, ns.OutliersZScore = CountOutliers(w.Values, ns.Q25, ns.Q75, mean, std)
	return ns, w
}

// NearestRankPercentile returns the pth percentile of sorted ascending
// values: the element at round(p/100 * (n-1)), clamped. Always an
// observed value, never an interpolation.
func NearestRankPercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	idx := int(math.Round(p / 100 * float64(n-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

// PercentileLadder computes the fixed percentile set over sorted values
func PercentileLadder(sorted []float64) map[int]float64 {
	out := make(map[int]float64, len(percentileKeys))
	for _, k := range percentileKeys {
		out[k] = NearestRankPercentile(sorted, float64(k))
	}
	return out
}

// Breakdown converts a ladder map into the detail-view struct
func Breakdown(ladder map[int]float64) analysis.PercentileBreakdown {
	return analysis.PercentileBreakdown{
		P1:  ladder[1],
		P5:  ladder[5],
		P25: ladder[25],
		P50: ladder[50],
		P75: ladder[75],
		P95: ladder[95],
		P99: ladder[99],
	}
}

// Skewness computes the adjusted Fisher-Pearson coefficient. Returns 0
// when fewer than 3 values or the column is constant.
func Skewness(values []float64, mean, std float64) float64 {
	n := float64(len(values))
	if n < 3 || std == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		z := (v - mean) / std
		sum += z * z * z
	}
	return n / ((n - 1) * (n - 2)) * sum
}

// Kurtosis computes sample-corrected kurtosis on the Pearson scale,
// where a normal distribution scores 3. Returns 3 when fewer than 4
// values or the column is constant.
func Kurtosis(values []float64, mean, std float64) float64 {
	n := float64(len(values))
	if n < 4 || std == 0 {
		return 3
	}
	sum := 0.0
	for _, v := range values {
		z := (v - mean) / std
		sum += z * z * z * z
	}
	excess := n*(n+1)/((n-1)*(n-2)*(n-3))*sum - 3*(n-1)*(n-1)/((n-2)*(n-3))
	return excess + 3
}

// CountOutliers counts IQR-fence and z-score outliers over the full
// working values. Returns zeros when the quartiles are undefined or
// the column is constant.
func CountOutliers(values []float64, q25, q75, mean, std float64) (iqr, zscore int) {
	if math.IsNaN(q25) || math.IsNaN(q75) || std <= 0 {
		return 0, 0
	}
	spread := q75 - q25
	lower := q25 - 1.5*spread
	upper := q75 + 1.5*spread
	for _, v := range values {
		if v < lower || v > upper {
			iqr++
		}
		if math.Abs(v-mean)/std > 3 {
			zscore++
		}
	}
	return iqr, zscore
}

// EstimateMode bins the values (up to 50 bins) and returns the mean of
// the densest bin. Constant columns return the value itself.
func EstimateMode(values []float64, min, max float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	if max <= min {
		return min
	}
	binCount := 50
	if len(values) < binCount {
		binCount = len(values)
	}
	width := (max - min) / float64(binCount)
	counts := make([]int, binCount)
	sums := make([]float64, binCount)
	for _, v := range values {
		b := int((v - min) / width)
		if b >= binCount {
			b = binCount - 1
		}
		counts[b]++
		sums[b] += v
	}
	best := 0
	for b := 1; b < binCount; b++ {
		if counts[b] > counts[best] {
			best = b
		}
	}
	if counts[best] == 0 {
		return min
	}
	return sums[best] / float64(counts[best])
}

// ShapiroWilkApprox computes an order-statistic correlation
// approximation of the Shapiro-Wilk normality test. The statistic is
// the squared correlation between sorted values and normal plotting
// positions; the p-value blends it with moment-based penalties. Both
// are screening numbers, not exact inference.
func (p *Profiler) ShapiroWilkApprox(sorted []float64, skewness, kurtosis float64) (statistic, pvalue float64) {
	n := len(sorted)
	if n < 3 {
		return 0, 0
	}

	var sumQZ, sumQQ, sumZZ float64
	var meanQ, meanZ float64
	quantiles := make([]float64, n)
	for i := 0; i < n; i++ {
		// Blom plotting positions
		pp := (float64(i+1) - 0.375) / (float64(n) + 0.25)
		quantiles[i] = p.dist.StdNormalQuantile(pp)
		meanQ += quantiles[i]
		meanZ += sorted[i]
	}
	meanQ /= float64(n)
	meanZ /= float64(n)
	for i := 0; i < n; i++ {
		q := quantiles[i] - meanQ
		z := sorted[i] - meanZ
		sumQZ += q * z
		sumQQ += q * q
		sumZZ += z * z
	}
	if sumQQ == 0 || sumZZ == 0 {
		return 0, 0
	}
	statistic = distmath.Clamp01(sumQZ * sumQZ / (sumQQ * sumZZ))

	skewPenalty := math.Min(math.Abs(skewness)/2, 1)
	kurtPenalty := math.Min(math.Abs(kurtosis-3)/2, 1)
	momentScore := 1 - (skewPenalty+kurtPenalty)/2
	pvalue = distmath.Clamp01(statistic*0.7 + momentScore*0.3)
	return statistic, pvalue
}

// QQSample returns an ascending sample for quantile plots, capped at
// the detail-view limit by even stride
func QQSample(sorted []float64) []float64 {
	if len(sorted) <= QQSampleLimit {
		out := make([]float64, len(sorted))
		copy(out, sorted)
		return out
	}
	out := make([]float64, 0, QQSampleLimit)
	stride := float64(len(sorted)) / float64(QQSampleLimit)
	for i := 0; i < QQSampleLimit; i++ {
		idx := int(float64(i) * stride)
		if idx > len(sorted)-1 {
			idx = len(sorted) - 1
		}
		out = append(out, sorted[idx])
	}
	return out
}
