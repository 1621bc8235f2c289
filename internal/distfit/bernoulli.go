package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// BernoulliTest applies when the column is essentially an indicator:
// at least ninety percent of values are exactly 0 or 1. The success
// probability is the observed rate; the score is a two-cell chi-square
// test, which only strays from 1 when the data is not truly binary.
type BernoulliTest struct {
	dist *distmath.Distributions
}

func (t *BernoulliTest) Family() analysis.DistributionType { return analysis.DistBernoulli }

func (t *BernoulliTest) MinScore(*Sample) float64 { return 0.01 }

func (t *BernoulliTest) Fit(s *Sample) (Candidate, bool) {
	if s.BinaryRatio() <= 0.9 {
		return Candidate{}, false
	}

	var count0, count1 int
	for _, v := range s.Values {
		switch v {
		case 0:
			count0++
		case 1:
			count1++
		}
	}
	n := count0 + count1
	if n < 10 || n < s.N/2 {
		return Candidate{}, false
	}

	p := float64(count1) / float64(n)
	if p <= 0 || p >= 1 {
		return Candidate{}, false
	}

	observed := []int{count0, count1}
	expected := []float64{float64(n) * (1 - p), float64(n) * p}

	return Candidate{
		Family:     analysis.DistBernoulli,
		Score:      chiSquareGOF(t.dist, observed, expected),
		FitQuality: math.NaN(),
		Params:     map[string]float64{"p": p},
		LogLik:     math.NaN(),
	}, true
}
