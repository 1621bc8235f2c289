package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// PowerLawTest runs the Hill maximum-likelihood estimator with the
// cutoff at the smallest positive value and scores the tail with a KS
// test. Exponents outside the empirically plausible band are rejected
// outright.
type PowerLawTest struct {
	dist *distmath.Distributions
}

func (t *PowerLawTest) Family() analysis.DistributionType { return analysis.DistPowerLaw }

func (t *PowerLawTest) MinScore(*Sample) float64 { return 0 }

func (t *PowerLawTest) Fit(s *Sample) (Candidate, bool) {
	xmin, alpha, ok := powerLawMLE(s)
	if !ok {
		return Candidate{}, false
	}
	if len(s.Positives) < 10 {
		return Candidate{}, false
	}

	d := t.dist.KSStatistic(s.Positives, func(x float64) float64 {
		return t.dist.PowerLawCDF(x, alpha, xmin)
	})
	return Candidate{
		Family:     analysis.DistPowerLaw,
		Score:      t.dist.KSPValue(d, len(s.Positives)),
		FitQuality: math.NaN(),
		Params:     map[string]float64{"alpha": alpha, "xmin": xmin},
		LogLik:     powerLawLogLik(s, xmin, alpha),
	}, true
}
