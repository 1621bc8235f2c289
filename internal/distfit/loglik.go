package distfit

import (
	"math"

	"dataprof/internal/distmath"
)

// Log-likelihoods are evaluated over the positive values only; every
// family compared this way is supported on the positive reals, so the
// comparisons stay apples to apples.

func weibullLogLik(s *Sample, shape, scale float64) float64 {
	n := float64(len(s.Positives))
	if n == 0 || shape <= 0 || scale <= 0 {
		return math.Inf(-1)
	}
	sumPower := 0.0
	for _, x := range s.Positives {
		sumPower += math.Pow(x/scale, shape)
	}
	return n*math.Log(shape/scale) + (shape-1)*s.SumLnPos - sumPower
}

func gammaLogLik(s *Sample, shape, scale float64) float64 {
	n := float64(len(s.Positives))
	if n == 0 || shape <= 0 || scale <= 0 {
		return math.Inf(-1)
	}
	return -n*distmath.LnGamma(shape) - n*shape*math.Log(scale) +
		(shape-1)*s.SumLnPos - s.SumPos/scale
}

func logNormalLogLik(s *Sample, mu, sigma float64) float64 {
	n := float64(len(s.Positives))
	if n == 0 || sigma <= 0 {
		return math.Inf(-1)
	}
	sumSq := 0.0
	for _, x := range s.Positives {
		d := math.Log(x) - mu
		sumSq += d * d
	}
	return -n/2*math.Log(2*math.Pi) - n*math.Log(sigma) - s.SumLnPos -
		sumSq/(2*sigma*sigma)
}

func exponentialLogLik(s *Sample, rate float64) float64 {
	n := float64(len(s.Positives))
	if n == 0 || rate <= 0 {
		return math.Inf(-1)
	}
	return n*math.Log(rate) - rate*s.SumPos
}

func powerLawLogLik(s *Sample, xmin, alpha float64) float64 {
	if xmin <= 0 || alpha <= 1 {
		return math.Inf(-1)
	}
	n := 0.0
	sumLogRatio := 0.0
	for _, x := range s.Positives {
		if x >= xmin {
			n++
			sumLogRatio += math.Log(x / xmin)
		}
	}
	if n == 0 {
		return math.Inf(-1)
	}
	return n*math.Log(alpha-1) - n*math.Log(xmin) - alpha*sumLogRatio
}

// logNormalMoM estimates log-normal parameters from the positive
// values via method of moments. ok=false when the moments degenerate.
func logNormalMoM(s *Sample) (mu, sigma float64, ok bool) {
	if s.PosMean <= 0 || s.PosVariance <= 0 {
		return 0, 0, false
	}
	sigmaSq := math.Log(1 + s.PosVariance/(s.PosMean*s.PosMean))
	mu = math.Log(s.PosMean) - sigmaSq/2
	sigma = math.Sqrt(sigmaSq)
	if sigma <= 0 {
		return 0, 0, false
	}
	return mu, sigma, true
}

// gammaMoM estimates gamma shape and scale from the positive values
func gammaMoM(s *Sample) (shape, scale float64, ok bool) {
	if s.PosMean <= 0 || s.PosVariance <= 0 {
		return 0, 0, false
	}
	shape = s.PosMean * s.PosMean / s.PosVariance
	scale = s.PosVariance / s.PosMean
	return shape, scale, shape > 0 && scale > 0
}

// powerLawMLE runs the Hill estimator with xmin at the smallest
// positive value. Exponents outside [1.5, 4] are rejected as
// implausible for empirical data.
func powerLawMLE(s *Sample) (xmin, alpha float64, ok bool) {
	if len(s.Positives) < 10 {
		return 0, 0, false
	}
	xmin = s.Positives[0]
	sumLogRatio := 0.0
	for _, x := range s.Positives {
		sumLogRatio += math.Log(x / xmin)
	}
	if sumLogRatio <= 0 {
		return 0, 0, false
	}
	alpha = 1 + float64(len(s.Positives))/sumLogRatio
	if alpha < 1.5 || alpha > 4.0 {
		return 0, 0, false
	}
	return xmin, alpha, true
}

// weibullShapeBuckets maps the coefficient of variation to the shape
// grid searched by the Weibull test
func weibullShapeBuckets(cv float64) []float64 {
	switch {
	case cv < 0.3:
		return []float64{3.0, 2.5, 2.0, 1.8}
	case cv < 0.6:
		return []float64{2.0, 1.8, 1.5, 1.3}
	case cv < 0.8:
		return []float64{1.5, 1.3, 1.2, 1.1}
	case cv < 1.0:
		return []float64{1.2, 1.1, 1.0, 0.9}
	default:
		return []float64{1.0, 0.9, 0.8, 0.7}
	}
}
