package testkit

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Generators produce deterministic synthetic columns for tests. The
// stratified variants place one value at each quantile plotting
// position and shuffle with the seed, so the empirical distribution
// tracks the target exactly regardless of sample size; the drawn
// variants use ordinary pseudo-random sampling.

// Shuffle permutes values in place using the seed
func Shuffle(seed int64, values []float64) {
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
}

func stratified(n int, seed int64, quantile func(p float64) float64) []float64 {
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		p := (float64(i) + 0.5) / float64(n)
		values[i] = quantile(p)
	}
	Shuffle(seed, values)
	return values
}

// NormalColumn generates n values whose empirical distribution matches
// N(mean, std)
func NormalColumn(n int, seed int64, mean, std float64) []float64 {
	d := distuv.Normal{Mu: mean, Sigma: std}
	return stratified(n, seed, d.Quantile)
}

// UniformColumn generates n values evenly covering [min, max]
func UniformColumn(n int, seed int64, min, max float64) []float64 {
	return stratified(n, seed, func(p float64) float64 {
		return min + p*(max-min)
	})
}

// ExponentialColumn generates n values matching Exp(rate)
func ExponentialColumn(n int, seed int64, rate float64) []float64 {
	d := distuv.Exponential{Rate: rate}
	return stratified(n, seed, d.Quantile)
}

// LogNormalColumn generates n values matching LogNormal(mu, sigma)
func LogNormalColumn(n int, seed int64, mu, sigma float64) []float64 {
	d := distuv.LogNormal{Mu: mu, Sigma: sigma}
	return stratified(n, seed, d.Quantile)
}

// PoissonColumn generates n counts matching Poisson(lambda)
func PoissonColumn(n int, seed int64, lambda float64) []float64 {
	d := distuv.Poisson{Lambda: lambda}
	return stratified(n, seed, func(p float64) float64 {
		return poissonQuantile(d, p)
	})
}

func poissonQuantile(d distuv.Poisson, p float64) float64 {
	cum := 0.0
	for k := 0.0; k < 10000; k++ {
		cum += d.Prob(k)
		if cum >= p {
			return k
		}
	}
	return math.NaN()
}

// GeometricColumn generates n failure counts matching Geometric(p)
func GeometricColumn(n int, seed int64, prob float64) []float64 {
	return stratified(n, seed, func(p float64) float64 {
		// smallest k with CDF(k) >= p
		k := math.Ceil(math.Log(1-p)/math.Log(1-prob) - 1)
		if k < 0 {
			k = 0
		}
		return k
	})
}

// BernoulliColumn generates n indicator values with success rate p
func BernoulliColumn(n int, seed int64, p float64) []float64 {
	values := make([]float64, n)
	successes := int(math.Round(float64(n) * p))
	for i := 0; i < successes; i++ {
		values[i] = 1
	}
	Shuffle(seed, values)
	return values
}

// DrawNormal samples n pseudo-random normal values with the seed
func DrawNormal(n int, seed int64, mean, std float64) []float64 {
	r := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = r.NormFloat64()*std + mean
	}
	return values
}

// LinearColumn generates a + b*x for x = 1..n
func LinearColumn(n int, a, b float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = a + b*float64(i+1)
	}
	return values
}

// WithNulls replaces every strideth value with NaN, starting at offset
func WithNulls(values []float64, stride, offset int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	for i := offset; i < len(out); i += stride {
		out[i] = math.NaN()
	}
	return out
}
