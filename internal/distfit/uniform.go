package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// UniformTest bins the values into ten equal-width cells over the
// observed range and scores flatness with a chi-square statistic. Both
// the p-value and the fit quality are smooth transforms of that
// statistic rather than exact tail probabilities.
type UniformTest struct {
	dist *distmath.Distributions
}

func (t *UniformTest) Family() analysis.DistributionType { return analysis.DistUniform }

// MinScore admits the uniform family unconditionally, like the normal
// reference candidate
func (t *UniformTest) MinScore(*Sample) float64 { return -1 }

func (t *UniformTest) Fit(s *Sample) (Candidate, bool) {
	c := Candidate{
		Family: analysis.DistUniform,
		Params: map[string]float64{"min": s.Min, "max": s.Max},
		LogLik: math.NaN(),
	}
	if !s.UniformChi2OK {
		return c, true
	}
	c.Score = distmath.Clamp01(math.Exp(-s.UniformChi2 / 20))
	fit := 1 / (1 + s.UniformChi2/17)
	if fit < 0.01 {
		fit = 0.01
	}
	c.FitQuality = distmath.Clamp01(fit)
	return c, true
}
