package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// BinomialTest estimates the trial count from the observed maximum and
// the success probability from the mean, keeps the candidate only when
// the variance agrees with np(1-p), and scores with a binned
// chi-square test.
type BinomialTest struct {
	dist *distmath.Distributions
}

func (t *BinomialTest) Family() analysis.DistributionType { return analysis.DistBinomial }

// MinScore relaxes to zero on large samples, where the chi-square
// approximation collapses even for genuine binomial data
func (t *BinomialTest) MinScore(s *Sample) float64 {
	if s.N > 5000 {
		return 0
	}
	return 0.01
}

func (t *BinomialTest) Fit(s *Sample) (Candidate, bool) {
	if s.Max <= 1 {
		return Candidate{}, false
	}
	ints := s.NonNegInts
	if len(ints) < 10 || len(ints) < s.N/2 {
		return Candidate{}, false
	}

	cnt := float64(len(ints))
	mean := 0.0
	maxVal := 0.0
	for _, v := range ints {
		mean += v
		if v > maxVal {
			maxVal = v
		}
	}
	mean /= cnt
	if mean <= 0 || maxVal <= 0 {
		return Candidate{}, false
	}

	trials := int(maxVal)
	p := mean / float64(trials)
	if p <= 0 || p >= 1 {
		return Candidate{}, false
	}

	variance := 0.0
	for _, v := range ints {
		d := v - mean
		variance += d * d
	}
	variance /= cnt - 1
	expectedVar := float64(trials) * p * (1 - p)
	if expectedVar <= 0 {
		return Candidate{}, false
	}
	if math.Min(variance/expectedVar, expectedVar/variance) < 0.7 {
		return Candidate{}, false
	}

	numBins := trials + 1
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
		expected[k] = t.dist.BinomialPMF(k, trials, p) * cnt
	}

	return Candidate{
		Family:     analysis.DistBinomial,
		Score:      chiSquareGOF(t.dist, observed, expected),
		FitQuality: math.NaN(),
		Params:     map[string]float64{"n": float64(trials), "p": p},
		LogLik:     math.NaN(),
	}, true
}
