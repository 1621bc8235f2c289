package distfit

import (
	"math"

	"dataprof/domain/analysis"
	"dataprof/internal/distmath"
)

// StudentsTTest backs degrees of freedom out of the sample variance
// (Var = df/(df-2) for a standard t) and scores with a KS test against
// the approximate t CDF.
type StudentsTTest struct {
	dist *distmath.Distributions
}

func (t *StudentsTTest) Family() analysis.DistributionType { return analysis.DistStudentsT }

func (t *StudentsTTest) MinScore(*Sample) float64 { return 0 }

func (t *StudentsTTest) Fit(s *Sample) (Candidate, bool) {
	if s.N < 10 || s.Variance <= 0 {
		return Candidate{}, false
	}

	df := 3.0
	if s.Variance > 1 {
		df = 2 * s.Variance / (s.Variance - 1)
	}
	if df < 1 {
		df = 1
	}
	if df > 100 {
		df = 100
	}

	d := t.dist.KSStatistic(s.Sorted, func(x float64) float64 {
		return t.dist.StudentsTCDF(x, df)
	})
	return Candidate{
		Family:     analysis.DistStudentsT,
		Score:      t.dist.KSPValue(d, s.N),
		FitQuality: math.NaN(),
		Params:     map[string]float64{"df": df},
		LogLik:     math.NaN(),
	}, true
}
