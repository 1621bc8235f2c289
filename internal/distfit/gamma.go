package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// GammaTest estimates shape and scale by method of moments over the
// positive values and scores with a KS test. The battery discounts the
// score when integer-valued data or a better-likelihood competitor
// contradicts the fit.
type GammaTest struct {
	dist *distmath.Distributions
}

func (t *GammaTest) Family() analysis.DistributionType { return analysis.DistGamma }

func (t *GammaTest) MinScore(*Sample) float64 { return 0 }

func (t *GammaTest) Fit(s *Sample) (Candidate, bool) {
	if len(s.Positives) < 10 {
		return Candidate{}, false
	}
	shape, scale, ok := gammaMoM(s)
	if !ok {
		return Candidate{}, false
	}

	d := t.dist.KSStatistic(s.Positives, func(x float64) float64 {
		return t.dist.GammaCDF(x, shape, scale)
	})
	return Candidate{
		Family:     analysis.DistGamma,
		Score:      t.dist.KSPValue(d, len(s.Positives)),
		FitQuality: math.NaN(),
		Params:     map[string]float64{"shape": shape, "scale": scale},
		LogLik:     gammaLogLik(s, shape, scale),
	}, true
}
