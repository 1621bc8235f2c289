package distfit

import (
	"math"
	"sort"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// ChiSquaredTest takes the mean as the degrees of freedom and requires
// the variance to sit within ten percent of twice the mean, the
// defining moment relationship of the family. The score blends the KS
// p-value with the variance agreement.
type ChiSquaredTest struct {
	dist *distmath.Distributions
}

func (t *ChiSquaredTest) Family() analysis.DistributionType { return analysis.DistChiSquared }

func (t *ChiSquaredTest) MinScore(*Sample) float64 { return 0 }

func (t *ChiSquaredTest) Fit(s *Sample) (Candidate, bool) {
	if s.N < 10 {
		return Candidate{}, false
	}

	var nonNeg []float64
	for _, v := range s.Values {
		if v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v) {
			nonNeg = append(nonNeg, v)
		}
	}
	if float64(len(nonNeg))/float64(s.N) < 0.95 || len(nonNeg) < 10 {
		return Candidate{}, false
	}

	n := float64(len(nonNeg))
	mean := 0.0
	for _, v := range nonNeg {
		mean += v
	}
	mean /= n
	if mean <= 0 {
		return Candidate{}, false
	}
	variance := 0.0
	for _, v := range nonNeg {
		d := v - mean
		variance += d * d
	}
	variance /= n - 1

	expectedVar := 2 * mean
	if math.Abs(variance-expectedVar)/expectedVar > 0.1 {
		return Candidate{}, false
	}
	varianceRatio := math.Min(variance/expectedVar, expectedVar/variance)

	df := mean
	if df > 1000 {
		return Candidate{}, false
	}

	sorted := make([]float64, len(nonNeg))
	copy(sorted, nonNeg)
	sort.Float64s(sorted)
	d := t.dist.KSStatistic(sorted, func(x float64) float64 {
		return t.dist.ChiSquaredCDF(x, df)
	})
	ksP := t.dist.KSPValue(d, len(sorted))

	var score float64
	switch {
	case ksP > 0.1:
		score = math.Min(ksP*0.8+varianceRatio*0.2, 0.95)
	case ksP > 0.05:
		score = math.Min(ksP*0.6+varianceRatio*0.4, 0.7)
	case ksP > 0.01:
		score = math.Min(ksP*0.3+varianceRatio*0.7, 0.5)
	default:
		score = math.Min(varianceRatio*0.5, 0.3)
	}
	score = math.Max(score, 0.05)

	return Candidate{
		Family:     analysis.DistChiSquared,
		Score:      score,
		FitQuality: math.NaN(),
		Params:     map[string]float64{"df": df},
		LogLik:     math.NaN(),
	}, true
}
