package distfit

import (
	"math"
	"sort"
)

// Sample carries one column's values plus the derived quantities every
// family test needs, computed once so the battery does not repeat the
// passes per family.
type Sample struct {
	Values []float64
	Sorted []float64
	N      int

	Mean     float64
	Variance float64 // ddof=1
	Std      float64
	Min      float64
	Max      float64

	// Positives holds the strictly positive values, ascending
	Positives   []float64
	PosMean     float64
	PosVariance float64
	SumPos      float64
	SumLnPos    float64

	// NonNegInts holds values that are non-negative, finite integers
	NonNegInts []float64

	// InRange01 holds values inside [0, 1]
	InRange01 []float64

	BinaryCount  int
	HasNegatives bool
	AllInteger   bool

	// UniformChi2 is the 10-bin uniformity statistic; ok=false when
	// undefined (fewer than 10 values or zero range)
	UniformChi2   float64
	UniformChi2OK bool
}

// NewSample precomputes shared quantities for the battery
func NewSample(values []float64) *Sample {
	s := &Sample{
		Values:     values,
		N:          len(values),
		AllInteger: true,
	}
	if s.N == 0 {
		return s
	}

	s.Min = math.Inf(1)
	s.Max = math.Inf(-1)
	sum := 0.0
	for _, v := range values {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		if v < 0 {
			s.HasNegatives = true
		}
		if v != math.Floor(v) {
			s.AllInteger = false
		}
		if v == 0 || v == 1 {
			s.BinaryCount++
		}
		if v >= 0 && v <= 1 {
			s.InRange01 = append(s.InRange01, v)
		}
		if v >= 0 && v == math.Floor(v) && !math.IsInf(v, 0) {
			s.NonNegInts = append(s.NonNegInts, v)
		}
		if v > 0 {
			s.Positives = append(s.Positives, v)
			s.SumPos += v
			s.SumLnPos += math.Log(v)
		}
	}
	s.Mean = sum / float64(s.N)

	ss := 0.0
	for _, v := range values {
		d := v - s.Mean
		ss += d * d
	}
	if s.N > 1 {
		s.Variance = ss / float64(s.N-1)
	}
	s.Std = math.Sqrt(s.Variance)

	s.Sorted = make([]float64, s.N)
	copy(s.Sorted, values)
	sort.Float64s(s.Sorted)

	sort.Float64s(s.Positives)
	if n := len(s.Positives); n > 0 {
		s.PosMean = s.SumPos / float64(n)
		pss := 0.0
		for _, v := range s.Positives {
			d := v - s.PosMean
			pss += d * d
		}
		if n > 1 {
			s.PosVariance = pss / float64(n-1)
		}
	}

	s.UniformChi2, s.UniformChi2OK = uniformityChi2(values, s.Min, s.Max)
	return s
}

// PosCV is the coefficient of variation over the positive values
func (s *Sample) PosCV() float64 {
	if s.PosMean <= 0 {
		return 0
	}
	return math.Sqrt(s.PosVariance) / s.PosMean
}

// NonNegIntRatio is the fraction of values that are non-negative integers
func (s *Sample) NonNegIntRatio() float64 {
	if s.N == 0 {
		return 0
	}
	return float64(len(s.NonNegInts)) / float64(s.N)
}

// BinaryRatio is the fraction of values that are exactly 0 or 1
func (s *Sample) BinaryRatio() float64 {
	if s.N == 0 {
		return 0
	}
	return float64(s.BinaryCount) / float64(s.N)
}

// uniformityChi2 bins values into 10 equal-width cells over the
// observed range and returns the chi-square statistic against the flat
// expectation
func uniformityChi2(values []float64, min, max float64) (float64, bool) {
	n := len(values)
	if n < 10 || max-min == 0 || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return 0, false
	}
	const bins = 10
	rng := max - min
	counts := make([]int, bins)
	for _, v := range values {
		b := int((v - min) / rng * bins)
		if b > bins-1 {
			b = bins - 1
		}
		if b < 0 {
			b = 0
		}
		counts[b]++
	}
	expected := float64(n) / bins
	chi2 := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	return chi2, true
}
