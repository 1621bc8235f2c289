package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// PoissonTest requires integer counts with variance close to the mean
// (the equidispersion property) and scores with a binned chi-square
// test against the fitted mass function.
type PoissonTest struct {
	dist *distmath.Distributions
}

func (t *PoissonTest) Family() analysis.DistributionType { return analysis.DistPoisson }

func (t *PoissonTest) MinScore(*Sample) float64 { return 0 }

func (t *PoissonTest) Fit(s *Sample) (Candidate, bool) {
	ints := s.NonNegInts
	if len(ints) < 10 {
		return Candidate{}, false
	}

	n := float64(len(ints))
	lambda := 0.0
	maxVal := 0.0
	for _, v := range ints {
		lambda += v
		if v > maxVal {
			maxVal = v
		}
	}
	lambda /= n
	if lambda <= 0 {
		return Candidate{}, false
	}

	variance := 0.0
	for _, v := range ints {
		d := v - lambda
		variance += d * d
	}
	variance /= n - 1
	if variance <= 0 {
		return Candidate{}, false
	}
	dispersion := math.Min(variance/lambda, lambda/variance)
	if dispersion < 0.7 {
		return Candidate{}, false
	}

	numBins := int(math.Min(maxVal, 15)) + 1
	if numBins < 5 {
		numBins = 5
	}
	if numBins > 20 {
		numBins = 20
	}

	observed := make([]int, numBins)
	for _, v := range ints {
		b := int(v)
		if b > numBins-1 {
			b = numBins - 1
		}
		observed[b]++
	}
	expected := make([]float64, numBins)
	for k := range expected {
		expected[k] = t.dist.PoissonPMF(k, lambda) * n
	}

	return Candidate{
		Family:     analysis.DistPoisson,
		Score:      chiSquareGOF(t.dist, observed, expected),
		FitQuality: math.NaN(),
		Params:     map[string]float64{"lambda": lambda},
		LogLik:     math.NaN(),
	}, true
}

// chiSquareGOF computes the binned goodness-of-fit p-value shared by
// the discrete families
func chiSquareGOF(dist *distmath.Distributions, observed []int, expected []float64) float64 {
	if len(observed) != len(expected) || len(observed) == 0 {
		return 0
	}
	chi2 := 0.0
	for i, obs := range observed {
		if expected[i] > 0 {
			d := float64(obs) - expected[i]
			chi2 += d * d / expected[i]
		}
	}
	df := len(observed) - 2
	if df < 1 {
		df = 1
	}
	return dist.ChiSquareGOFPValue(chi2, df)
}
