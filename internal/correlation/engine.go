package correlation

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// minPairs is the smallest overlap that defines a correlation
const minPairs = 3

// Engine computes pairwise Pearson correlation over numeric columns
// with pairwise null deletion. Significance uses the normal
// approximation to the t distribution of r, which ranks pairs fine but
// is not exact small-sample inference.
type Engine struct {
	dist *distmath.Distributions
}

// NewEngine creates a correlation engine
func NewEngine() *Engine {
	return &Engine{dist: distmath.NewDistributions()}
}

// Matrix computes the full correlation matrix for the named columns.
// columns[i] must align row-for-row with every other column; null
// cells are NaN. Fewer than two columns yields nil. Pairs with fewer
// than three complete observations report NaN with sample size zero;
// zero-variance pairs report NaN with their true overlap.
func (e *Engine) Matrix(names []string, columns [][]float64) *analysis.CorrelationMatrix {
	k := len(names)
	if k < 2 || k != len(columns) {
		return nil
	}

	m := &analysis.CorrelationMatrix{
		Columns:     names,
		Values:      make([][]float64, k),
		PValues:     make([][]float64, k),
		SampleSizes: make([][]int, k),
	}
	for i := 0; i < k; i++ {
		m.Values[i] = make([]float64, k)
		m.PValues[i] = make([]float64, k)
		m.SampleSizes[i] = make([]int, k)
		m.Values[i][i] = 1
		m.PValues[i][i] = 0
		m.SampleSizes[i][i] = completeCount(columns[i])
	}

	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r, p, n := e.Pair(columns[i], columns[j])
			m.Values[i][j], m.Values[j][i] = r, r
			m.PValues[i][j], m.PValues[j][i] = p, p
			m.SampleSizes[i][j], m.SampleSizes[j][i] = n, n
		}
	}
	return m
}

// Pair computes Pearson r, its approximate p-value, and the complete
// pair count for two aligned columns
func (e *Engine) Pair(x, y []float64) (r, p float64, n int) {
	xs, ys := completePairs(x, y)
	n = len(xs)
	if n < minPairs {
		return math.NaN(), math.NaN(), 0
	}

	r = stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		// zero variance on either side; the overlap is still real
		return math.NaN(), math.NaN(), n
	}
	if r > 1 {
		r = 1
	}
	if r < -1 {
		r = -1
	}
	return r, e.PValue(r, n), n
}

// PValue computes the two-sided significance of r at sample size n via
// t = r*sqrt((n-2)/(1-r^2)) and a normal tail approximation. Perfect
// correlation degenerates to zero rather than blowing up the t
// statistic.
func (e *Engine) PValue(r float64, n int) float64 {
	if n < minPairs {
		return 1
	}
	abs := math.Abs(r)
	if abs >= 1 {
		return 0
	}
	t := abs * math.Sqrt(float64(n-2)/(1-r*r))
	return distmath.Clamp01(2 * (1 - e.dist.StdNormalCDF(t)))
}

// Detail computes the expanded view for a single pair: correlation,
// significance, covariance (ddof=1), r squared, and per-column summary
// stats over the complete pairs.
func (e *Engine) Detail(nameX, nameY string, x, y []float64) analysis.CorrelationPair {
	xs, ys := completePairs(x, y)
	n := len(xs)

	pair := analysis.CorrelationPair{
		X:          analysis.ColumnSummary{Name: nameX},
		Y:          analysis.ColumnSummary{Name: nameY},
		SampleSize: n,
	}
	if n < minPairs {
		pair.Correlation = math.NaN()
		pair.PValue = math.NaN()
		pair.Covariance = math.NaN()
		pair.RSquared = math.NaN()
		pair.SampleSize = 0
		return pair
	}

	r, p, _ := e.Pair(x, y)
	pair.Correlation = r
	pair.PValue = p
	pair.Covariance = stat.Covariance(xs, ys, nil)
	pair.RSquared = r * r
	pair.X.Mean, pair.X.Std = meanStd(xs)
	pair.Y.Mean, pair.Y.Std = meanStd(ys)
	return pair
}

func completePairs(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	var xs, ys []float64
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func completeCount(x []float64) int {
	n := 0
	for _, v := range x {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

func meanStd(values []float64) (float64, float64) {
	mean := stat.Mean(values, nil)
	if len(values) < 2 {
		return mean, 0
	}
	return mean, math.Sqrt(stat.Variance(values, nil))
}
