package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// GeometricTest models failure counts before a first success. The gate
// is deliberately narrow: small non-negative integers with a modest
// mean and a variance near mean*(mean+1). When the expected bin counts
// get too thin for chi-square, the variance agreement stands in for
// the test statistic.
type GeometricTest struct {
	dist *distmath.Distributions
}

// geometricProcessLimit bounds the values inspected; the family only
// makes sense for short count columns anyway
const geometricProcessLimit = 5000

func (t *GeometricTest) Family() analysis.DistributionType { return analysis.DistGeometric }

func (t *GeometricTest) MinScore(*Sample) float64 { return 0.01 }

func (t *GeometricTest) Fit(s *Sample) (Candidate, bool) {
	if s.N < 10 || s.N > 10000 {
		return Candidate{}, false
	}
	if s.NonNegIntRatio() <= 0.9 {
		return Candidate{}, false
	}

	limit := s.N
	if limit > geometricProcessLimit {
		limit = geometricProcessLimit
	}
	var ints []float64
	for _, v := range s.Values[:limit] {
		if v >= 0 && v == math.Floor(v) && !math.IsInf(v, 0) {
			ints = append(ints, v)
		}
	}
	if len(ints) < 10 {
		return Candidate{}, false
	}

	n := float64(len(ints))
	mean := 0.0
	maxSeen := 0.0
	for _, v := range ints {
		mean += v
		if v > maxSeen {
			maxSeen = v
		}
	}
	mean /= n
	if mean <= 0 || mean > 30 || maxSeen > 100 {
		return Candidate{}, false
	}

	variance := 0.0
	for _, v := range ints {
		d := v - mean
		variance += d * d
	}
	variance /= n - 1
	if variance <= 0 {
		return Candidate{}, false
	}
	expectedVar := mean * (mean + 1)
	varianceRatio := math.Min(variance/expectedVar, expectedVar/variance)
	if varianceRatio < 0.5 {
		return Candidate{}, false
	}

	p := 1 / (mean + 1)
	if p <= 0 || p >= 1 {
		return Candidate{}, false
	}

	maxBin := int(maxSeen) + 1
	if maxBin > 50 {
		maxBin = 50
	}
	observed := make([]int, maxBin)
	for _, v := range ints {
		if b := int(v); b < maxBin {
			observed[b]++
		}
	}
	expected := make([]float64, maxBin)
	totalPMF := 0.0
	for k := range expected {
		pmf := t.dist.GeometricPMF(k, p)
		expected[k] = pmf
		totalPMF += pmf
	}
	if totalPMF > 0 {
		// renormalize so the truncated support carries full mass
		for k := range expected {
			expected[k] = expected[k] / totalPMF * n
		}
	} else {
		for k := range expected {
			expected[k] = n / float64(maxBin)
		}
	}

	minExpected := math.Inf(1)
	for _, e := range expected {
		if e < minExpected {
			minExpected = e
		}
	}
	chiScore := varianceRatio
	if minExpected > 0.1 {
		chiScore = chiSquareGOF(t.dist, observed, expected)
	}

	var score float64
	switch {
	case chiScore > 0.1:
		score = math.Min(chiScore*0.8+varianceRatio*0.2, 0.95)
	case chiScore > 0.05:
		score = math.Min(chiScore*0.6+varianceRatio*0.4, 0.7)
	case chiScore > 0.01:
		score = math.Min(chiScore*0.3+varianceRatio*0.7, 0.5)
	default:
		score = math.Min(varianceRatio*0.5, 0.3)
	}
	score = math.Max(score, 0.05)

	return Candidate{
		Family:     analysis.DistGeometric,
		Score:      score,
		FitQuality: math.NaN(),
		Params:     map[string]float64{"p": p},
		LogLik:     math.NaN(),
	}, true
}
