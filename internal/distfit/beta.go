package distfit

import (
	"math"
	"sort"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// BetaTest applies only when the bulk of the data sits in the unit
// interval. Parameters come from method of moments on the in-range
// values; the score ladders the KS p-value against a variance-based
// plausibility term so borderline fits degrade gracefully instead of
// vanishing.
type BetaTest struct {
	dist *distmath.Distributions
}

func (t *BetaTest) Family() analysis.DistributionType { return analysis.DistBeta }

func (t *BetaTest) MinScore(*Sample) float64 { return 0 }

func (t *BetaTest) Fit(s *Sample) (Candidate, bool) {
	if s.N < 10 || s.HasNegatives {
		return Candidate{}, false
	}
	inRange := s.InRange01
	if float64(len(inRange))/float64(s.N) < 0.85 || len(inRange) < 10 {
		return Candidate{}, false
	}

	n := float64(len(inRange))
	mean := 0.0
	for _, v := range inRange {
		mean += v
	}
	mean /= n
	variance := 0.0
	for _, v := range inRange {
		d := v - mean
		variance += d * d
	}
	variance /= n - 1

	if variance <= 0 || mean <= 0 || mean >= 1 {
		return Candidate{}, false
	}
	shared := mean*(1-mean)/variance - 1
	if shared <= 0 {
		return Candidate{}, false
	}
	alpha := math.Min(mean*shared, 1000)
	beta := math.Min((1-mean)*shared, 1000)
	if alpha <= 0 || beta <= 0 {
		return Candidate{}, false
	}

	sorted := make([]float64, len(inRange))
	copy(sorted, inRange)
	sort.Float64s(sorted)
	d := t.dist.KSStatistic(sorted, func(x float64) float64 {
		return t.dist.BetaCDF(x, alpha, beta)
	})
	ksP := t.dist.KSPValue(d, len(sorted))

	varianceScore := math.Max(1-math.Min(variance/(mean*(1-mean)), 1), 0)
	var score float64
	switch {
	case ksP > 0.1:
		score = math.Min(ksP, 0.95)
	case ksP > 0.05:
		score = math.Min(ksP*7, 0.7)
	case ksP > 0.01:
		score = math.Min(ksP*0.7+varianceScore*0.3, 0.5)
	default:
		score = math.Min(ksP*0.3+varianceScore*0.7, 0.4)
	}
	score = math.Max(score, 0.1)

	return Candidate{
		Family:     analysis.DistBeta,
		Score:      score,
		FitQuality: math.NaN(),
		Params:     map[string]float64{"alpha": alpha, "beta": beta},
		LogLik:     math.NaN(),
	}, true
}
