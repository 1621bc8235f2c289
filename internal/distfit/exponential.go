package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// ExponentialTest estimates the rate as the reciprocal of the positive
// mean and scores with a KS test over the positive values.
type ExponentialTest struct {
	dist *distmath.Distributions
}

func (t *ExponentialTest) Family() analysis.DistributionType { return analysis.DistExponential }

func (t *ExponentialTest) MinScore(*Sample) float64 { return 0 }

func (t *ExponentialTest) Fit(s *Sample) (Candidate, bool) {
	if len(s.Positives) <= 10 || s.PosMean <= 0 {
		return Candidate{}, false
	}
	rate := 1 / s.PosMean

	d := t.dist.KSStatistic(s.Positives, func(x float64) float64 {
		return t.dist.ExponentialCDF(x, rate)
	})
	return Candidate{
		Family:     analysis.DistExponential,
		Score:      t.dist.KSPValue(d, len(s.Positives)),
		FitQuality: math.NaN(),
		Params:     map[string]float64{"lambda": rate},
		LogLik:     exponentialLogLik(s, rate),
	}, true
}
