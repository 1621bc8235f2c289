package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// Candidate is the raw output of one family test before the battery
// applies cross-family discounts and clamping
type Candidate struct {
	Family analysis.DistributionType
	// Score is the goodness-of-fit p-value (approximate)
	Score float64
	// FitQuality defaults to the final score when NaN; families with a
	// separate quality formula set it explicitly
	FitQuality float64
	Params     map[string]float64
	// LogLik is the likelihood of the fitted parameters over the
	// positive values; NaN when the family does not compete on
	// likelihood
	LogLik float64
}

// FamilyTest is the uniform contract every distribution family
// implements: estimate parameters, run a goodness-of-fit test, and
// report an approximate p-value plus log-likelihood. Fit returns false
// when the data fails the family's preconditions; that exclusion is
// silent, never an error.
type FamilyTest interface {
	Family() analysis.DistributionType
	Fit(s *Sample) (Candidate, bool)
	// MinScore is the admission threshold compared (strictly) against
	// the discounted score
	MinScore(s *Sample) float64
}

// maxConfidence caps every reported confidence; the p-values are
// approximations and should never read as certainty
const maxConfidence = 0.95

// tieWindow is the confidence band treated as a tie during selection
const tieWindow = 0.01

// Battery runs every registered family over one precomputed sample and
// selects the best-supported verdict
type Battery struct {
	dist  *distmath.Distributions
	tests []FamilyTest
	rules []discountRule
}

// NewBattery registers the full family set. Registration order breaks
// residual ties, so the common families come first.
func NewBattery() *Battery {
	dist := distmath.NewDistributions()
	b := &Battery{dist: dist}
	b.tests = []FamilyTest{
		&NormalTest{dist: dist},
		&LogNormalTest{dist: dist},
		&UniformTest{dist: dist},
		&PowerLawTest{dist: dist},
		&ExponentialTest{dist: dist},
		&BetaTest{dist: dist},
		&GammaTest{dist: dist},
		&ChiSquaredTest{dist: dist},
		&StudentsTTest{dist: dist},
		&PoissonTest{dist: dist},
		&BernoulliTest{dist: dist},
		&BinomialTest{dist: dist},
		&GeometricTest{dist: dist},
		&WeibullTest{dist: dist},
	}
	b.rules = discountRules(dist)
	return b
}

// Run classifies the values. Fewer than three numeric values always
// yields Unknown with zero confidence; when every family declines, the
// verdict is Unknown at coin-flip confidence.
func (b *Battery) Run(values []float64) analysis.DistributionInfo {
	if len(values) < 3 {
		return analysis.DistributionInfo{Distribution: analysis.DistUnknown, SampleSize: len(values)}
	}
	s := NewSample(values)

	var admitted []Candidate
	allScores := make(map[analysis.DistributionType]float64)
	for _, t := range b.tests {
		c, ok := t.Fit(s)
		if !ok {
			continue
		}
		for _, rule := range b.rules {
			if rule.target == c.Family {
				rule.apply(s, &c)
			}
		}
		if !(c.Score > t.MinScore(s)) {
			continue
		}
		if math.IsNaN(c.FitQuality) {
			c.FitQuality = c.Score
		}
		c.Score = math.Min(c.Score, maxConfidence)
		admitted = append(admitted, c)
		allScores[c.Family] = c.Score
	}

	if len(admitted) == 0 {
		return analysis.DistributionInfo{
			Distribution: analysis.DistUnknown,
			Confidence:   0.5,
			FitQuality:   0.5,
			SampleSize:   len(values),
		}
	}

	best := admitted[0]
	for _, c := range admitted[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	// candidates inside the tie window compete on fit quality instead
	for _, c := range admitted {
		if best.Score-c.Score < tieWindow && c.FitQuality > best.FitQuality {
			best = c
		}
	}

	return analysis.DistributionInfo{
		Distribution: best.Family,
		Confidence:   best.Score,
		FitQuality:   best.FitQuality,
		Parameters:   best.Params,
		AllScores:    allScores,
		SampleSize:   len(values),
	}
}

// discountRule adjusts one family's score when the data contradicts it
// or a competing family explains the data markedly better. Margins are
// in nats of log-likelihood.
type discountRule struct {
	target analysis.DistributionType
	name   string
	apply  func(s *Sample, c *Candidate)
}

// tier pairs a likelihood margin with a multiplicative penalty
type tier struct {
	minScore float64
	margin   float64
	factor   float64
}

func discountRules(dist *distmath.Distributions) []discountRule {
	return []discountRule{
		{
			target: analysis.DistPowerLaw,
			name:   "uniformity contradiction",
			apply: func(s *Sample, c *Candidate) {
				if !s.UniformChi2OK {
					return
				}
				if distmath.Clamp01(math.Exp(-s.UniformChi2/20)) > 0.1 {
					c.Score *= 0.3
				}
			},
		},
		{
			target: analysis.DistPowerLaw,
			name:   "weibull explains the tail better",
			apply: func(s *Sample, c *Candidate) {
				if c.Score <= 0.05 || len(s.Positives) == 0 {
					return
				}
				wb := weibullLogLik(s, 1.5, s.PosMean)
				if wb > c.LogLik+5 {
					c.Score *= 0.5
				}
			},
		},
		{
			target: analysis.DistGamma,
			name:   "gamma competitors",
			apply: func(s *Sample, c *Candidate) {
				applyGammaDiscounts(s, c)
			},
		},
		{
			target: analysis.DistGamma,
			name:   "lognormal explains better",
			apply: func(s *Sample, c *Candidate) {
				if c.Score <= 0.05 {
					return
				}
				mu, sigma, ok := logNormalMoM(s)
				if !ok {
					return
				}
				ksP := logNormalKSPValue(dist, s, mu, sigma)
				if ksP <= 0.05 {
					return
				}
				if logNormalLogLik(s, mu, sigma) > c.LogLik+5 {
					c.Score *= 0.5
				}
			},
		},
		{
			target: analysis.DistWeibull,
			name:   "gamma explains better",
			apply: func(s *Sample, c *Candidate) {
				shape, scale, ok := gammaMoM(s)
				if !ok || shape >= 1000 || scale >= 1000 {
					return
				}
				gl := gammaLogLik(s, shape, scale)
				for _, t := range []tier{
					{0.1, 5, 0.4},
					{0.05, 5, 0.5},
					{0.05, 2, 0.7},
					{0.02, 5, 0.85},
				} {
					if c.Score > t.minScore && gl > c.LogLik+t.margin {
						c.Score *= t.factor
						return
					}
				}
			},
		},
		{
			target: analysis.DistWeibull,
			name:   "near-exponential shape",
			apply: func(s *Sample, c *Candidate) {
				applyWeibullExponentialDiscount(s, c)
			},
		},
		{
			target: analysis.DistWeibull,
			name:   "power law explains better",
			apply: func(s *Sample, c *Candidate) {
				xmin, alpha, ok := powerLawMLE(s)
				if !ok || c.Score <= 0.05 {
					return
				}
				if powerLawLogLik(s, xmin, alpha) > c.LogLik+5 {
					c.Score *= 0.5
				}
			},
		},
	}
}

func applyGammaDiscounts(s *Sample, c *Candidate) {
	cv := s.PosCV()
	var wbShape float64
	switch {
	case cv < 0.5:
		wbShape = 2.0
	case cv < 1.0:
		wbShape = 1.5
	default:
		wbShape = 1.0
	}
	gammaApprox := map[float64]float64{1.0: 1.0, 1.5: 0.9, 2.0: 0.886}[wbShape]
	wbScale := s.PosMean / gammaApprox
	if wbScale <= 0 || wbScale >= 1000 {
		return
	}
	wb := weibullLogLik(s, wbShape, wbScale)

	switch {
	case s.AllInteger && c.Score > 0:
		// integer-valued data contradicts a continuous family
		c.Score *= 0.1
	case c.Score > 0.1 && wb > c.LogLik+5:
		c.Score *= 0.5
	case c.Score > 0.05 && wb > c.LogLik+5:
		c.Score *= 0.7
	case c.Score > 0.05 && wb > c.LogLik+2:
		c.Score *= 0.85
	}
}

func applyWeibullExponentialDiscount(s *Sample, c *Candidate) {
	shape := c.Params["shape"]
	tolerance := 0.3
	if len(s.Positives) > 5000 {
		tolerance = 0.5
	}
	if math.Abs(shape-1) >= tolerance || c.Score <= 0.3 || s.PosMean <= 0 {
		return
	}
	rate := 1 / s.PosMean
	el := exponentialLogLik(s, rate)
	switch {
	case el > c.LogLik+0.5:
		c.Score *= 0.4
	case el > c.LogLik:
		c.Score *= 0.6
	case math.Abs(shape-1) < 0.2:
		c.Score *= 0.7
	}
}

func logNormalKSPValue(dist *distmath.Distributions, s *Sample, mu, sigma float64) float64 {
	if len(s.Positives) < 10 {
		return 0
	}
	d := dist.KSStatistic(s.Positives, func(x float64) float64 {
		return dist.LogNormalCDF(x, mu, sigma)
	})
	return dist.KSPValue(d, len(s.Positives))
}
