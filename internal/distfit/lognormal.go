package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// LogNormalTest estimates mu and sigma by method of moments over the
// positive values and scores with a KS test on those values. Needs a
// meaningful positive subset to say anything.
type LogNormalTest struct {
	dist *distmath.Distributions
}

func (t *LogNormalTest) Family() analysis.DistributionType { return analysis.DistLogNormal }

func (t *LogNormalTest) MinScore(*Sample) float64 { return 0.01 }

func (t *LogNormalTest) Fit(s *Sample) (Candidate, bool) {
	if len(s.Positives) <= 10 {
		return Candidate{}, false
	}
	mu, sigma, ok := logNormalMoM(s)
	if !ok {
		return Candidate{}, false
	}

	d := t.dist.KSStatistic(s.Positives, func(x float64) float64 {
		return t.dist.LogNormalCDF(x, mu, sigma)
	})
	return Candidate{
		Family:     analysis.DistLogNormal,
		Score:      t.dist.KSPValue(d, len(s.Positives)),
		FitQuality: math.NaN(),
		Params:     map[string]float64{"mu": mu, "sigma": sigma},
		LogLik:     logNormalLogLik(s, mu, sigma),
	}, true
}
