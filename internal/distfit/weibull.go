package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// WeibullTest searches a small shape grid chosen by the coefficient of
// variation, pins the scale to the mean through Gamma(1 + 1/shape),
// and keeps the shape with the lowest KS distance. The battery holds
// the exponential, gamma, and power-law comparisons.
type WeibullTest struct {
	dist *distmath.Distributions
}

func (t *WeibullTest) Family() analysis.DistributionType { return analysis.DistWeibull }

func (t *WeibullTest) MinScore(*Sample) float64 { return 0.01 }

func (t *WeibullTest) Fit(s *Sample) (Candidate, bool) {
	if s.HasNegatives || len(s.Positives) <= 10 {
		return Candidate{}, false
	}
	if s.PosMean <= 0 || s.PosVariance <= 0 {
		return Candidate{}, false
	}

	bestShape := 0.0
	bestScale := 0.0
	bestD := math.Inf(1)
	for _, shape := range weibullShapeBuckets(s.PosCV()) {
		scale := s.PosMean / distmath.GammaFunc(1+1/shape)
		if scale <= 0 || scale >= 1000 {
			continue
		}
		d := t.dist.KSStatistic(s.Positives, func(x float64) float64 {
			return t.dist.WeibullCDF(x, shape, scale)
		})
		if d < bestD {
			bestD = d
			bestShape = shape
			bestScale = scale
		}
	}
	if bestShape <= 0 || bestScale <= 0 {
		return Candidate{}, false
	}

	return Candidate{
		Family:     analysis.DistWeibull,
		Score:      t.dist.KSPValue(bestD, len(s.Positives)),
		FitQuality: math.NaN(),
		Params:     map[string]float64{"shape": bestShape, "scale": bestScale},
		LogLik:     weibullLogLik(s, bestShape, bestScale),
	}, true
}
