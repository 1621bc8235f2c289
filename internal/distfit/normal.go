package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// NormalTest fits N(mean, std) by direct moment estimates and scores
// the fit with a Kolmogorov-Smirnov test.
type NormalTest struct {
	dist *distmath.Distributions
}

func (t *NormalTest) Family() analysis.DistributionType { return analysis.DistNormal }

// MinScore admits the normal family unconditionally; it is the
// reference candidate every dataset is allowed to keep.
func (t *NormalTest) MinScore(*Sample) float64 { return -1 }

func (t *NormalTest) Fit(s *Sample) (Candidate, bool) {
	c := Candidate{
		Family:     analysis.DistNormal,
		FitQuality: math.NaN(),
		LogLik:     math.NaN(),
		Params:     map[string]float64{"mean": s.Mean, "std": s.Std},
	}
	if s.N == 0 || s.Std == 0 {
		return c, true
	}
	d := t.dist.KSStatistic(s.Sorted, func(x float64) float64 {
		return t.dist.NormalCDF(x, s.Mean, s.Std)
	})
	c.Score = t.dist.KSPValue(d, s.N)
	return c, true
}
