package distmath

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"dataprof/domain/analysis"
)

// Distributions provides unified access to the distribution functions
// the fitting engine needs. All CDF/PMF evaluation goes through here so
// parameterization conventions live in one place.
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// NormalCDF computes the CDF of N(mean, std) at x
func (sd *Distributions) NormalCDF(x, mean, std float64) float64 {
	if std <= 0 {
		if x < mean {
			return 0
		}
		return 1
	}
	return distuv.Normal{Mu: mean, Sigma: std}.CDF(x)
}

// StdNormalCDF computes the standard normal CDF
func (sd *Distributions) StdNormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// StdNormalQuantile computes the standard normal inverse CDF
func (sd *Distributions) StdNormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// LogNormalCDF computes the CDF of LogNormal(mu, sigma) at x
func (sd *Distributions) LogNormalCDF(x, mu, sigma float64) float64 {
	if x <= 0 || sigma <= 0 {
		return 0
	}
	return distuv.LogNormal{Mu: mu, Sigma: sigma}.CDF(x)
}

// ExponentialCDF computes the CDF of Exp(rate) at x
func (sd *Distributions) ExponentialCDF(x, rate float64) float64 {
	if x <= 0 || rate <= 0 {
		return 0
	}
	return distuv.Exponential{Rate: rate}.CDF(x)
}

// BetaCDF computes the CDF of Beta(alpha, beta) at x
func (sd *Distributions) BetaCDF(x, alpha, beta float64) float64 {
	if alpha <= 0 || beta <= 0 {
		return 0
	}
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return distuv.Beta{Alpha: alpha, Beta: beta}.CDF(x)
}

// GammaCDF computes the CDF of Gamma(shape, scale) at x.
// distuv parameterizes by rate, so scale is inverted here.
func (sd *Distributions) GammaCDF(x, shape, scale float64) float64 {
	if x <= 0 || shape <= 0 || scale <= 0 {
		return 0
	}
	return distuv.Gamma{Alpha: shape, Beta: 1 / scale}.CDF(x)
}

// ChiSquaredCDF computes the CDF of chi-squared with df degrees of freedom
func (sd *Distributions) ChiSquaredCDF(x, df float64) float64 {
	if x <= 0 || df <= 0 {
		return 0
	}
	return distuv.ChiSquared{K: df}.CDF(x)
}

// StudentsTCDF approximates the CDF of a standard t distribution with
// df degrees of freedom via normal shrinkage. Good enough for ranking
// fits; not for exact inference.
func (sd *Distributions) StudentsTCDF(x, df float64) float64 {
	if df <= 0 {
		return 0.5
	}
	z := x * (1 - 1/(4*df))
	return distuv.UnitNormal.CDF(z)
}

// PowerLawCDF computes the CDF of a power law with exponent alpha and
// lower cutoff xmin: 1 - (x/xmin)^(1-alpha). distuv's Pareto carries
// the same tail with its shape parameter shifted by one.
func (sd *Distributions) PowerLawCDF(x, alpha, xmin float64) float64 {
	if x <= xmin || xmin <= 0 || alpha <= 1 {
		return 0
	}
	return distuv.Pareto{Xm: xmin, Alpha: alpha - 1}.CDF(x)
}

// WeibullCDF computes the CDF of Weibull(shape, scale) at x
func (sd *Distributions) WeibullCDF(x, shape, scale float64) float64 {
	if x <= 0 || shape <= 0 || scale <= 0 {
		return 0
	}
	return distuv.Weibull{K: shape, Lambda: scale}.CDF(x)
}

// PoissonPMF computes P(X=k) for Poisson(lambda)
func (sd *Distributions) PoissonPMF(k int, lambda float64) float64 {
	if k < 0 || lambda <= 0 {
		return 0
	}
	return distuv.Poisson{Lambda: lambda}.Prob(float64(k))
}

// BinomialPMF computes P(X=k) for Binomial(n, p)
func (sd *Distributions) BinomialPMF(k, n int, p float64) float64 {
	if k < 0 || k > n || p <= 0 || p >= 1 {
		return 0
	}
	return distuv.Binomial{N: float64(n), P: p}.Prob(float64(k))
}

// BernoulliPMF computes P(X=k) for Bernoulli(p)
func (sd *Distributions) BernoulliPMF(k int, p float64) float64 {
	if p < 0 || p > 1 {
		return 0
	}
	switch k {
	case 0:
		return 1 - p
	case 1:
		return p
	}
	return 0
}

// GeometricPMF computes P(X=k) for Geometric(p) counting failures
// before the first success. distuv has no geometric distribution, so
// the closed form is evaluated directly.
func (sd *Distributions) GeometricPMF(k int, p float64) float64 {
	if k < 0 || p <= 0 || p > 1 {
		return 0
	}
	return p * math.Pow(1-p, float64(k))
}

// GeometricCDF computes P(X<=k) for Geometric(p)
func (sd *Distributions) GeometricCDF(k int, p float64) float64 {
	if k < 0 || p <= 0 || p > 1 {
		return 0
	}
	return 1 - math.Pow(1-p, float64(k+1))
}

// KSStatistic computes the one-sample Kolmogorov-Smirnov statistic of
// sorted ascending values against cdf
func (sd *Distributions) KSStatistic(sorted []float64, cdf func(float64) float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	maxD := 0.0
	for i, x := range sorted {
		empirical := float64(i+1) / float64(n)
		d := math.Abs(empirical - cdf(x))
		if d > maxD {
			maxD = d
		}
	}
	return maxD
}

// KSPValue approximates the p-value of a KS statistic d at sample size
// n using the leading term of the asymptotic Kolmogorov series
func (sd *Distributions) KSPValue(d float64, n int) float64 {
	if n < 1 || d <= 0 {
		return 1
	}
	if d >= 1 {
		return 0
	}
	lambda := math.Sqrt(float64(n)) * d
	return Clamp01(2 * math.Exp(-2*lambda*lambda))
}

// ChiSquareGOFPValue approximates the p-value of a binned chi-square
// goodness-of-fit statistic. Uses the Wilson-Hilferty style normal
// deviate above 30 degrees of freedom.
func (sd *Distributions) ChiSquareGOFPValue(chi2 float64, df int) float64 {
	if df < 1 {
		df = 1
	}
	if chi2 <= 0 {
		return 1
	}
	fdf := float64(df)
	if df > 30 {
		z := math.Sqrt(2*chi2) - math.Sqrt(2*fdf-1)
		if z < 0 {
			z = 0
		}
		return Clamp01(math.Exp(-z * z / 2))
	}
	return Clamp01(math.Exp(-chi2 / (2 * fdf)))
}

// GammaFunc evaluates the gamma function at x (positive x)
func GammaFunc(x float64) float64 {
	lg, sign := math.Lgamma(x)
	return float64(sign) * math.Exp(lg)
}

// LnGamma evaluates ln(Gamma(x)) for positive x
func LnGamma(x float64) float64 {
	lg, _ := math.Lgamma(x)
	return lg
}

// Clamp01 clamps v into [0, 1]
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// IntervalProbability returns the probability mass a fitted family
// assigns to (lo, hi]. Used for histogram overlays.
func (sd *Distributions) IntervalProbability(family analysis.DistributionType, params map[string]float64, lo, hi float64) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	switch family {
	case analysis.DistNormal:
		return sd.NormalCDF(hi, params["mean"], params["std"]) - sd.NormalCDF(lo, params["mean"], params["std"])
	case analysis.DistLogNormal:
		return sd.LogNormalCDF(hi, params["mu"], params["sigma"]) - sd.LogNormalCDF(lo, params["mu"], params["sigma"])
	case analysis.DistUniform:
		min, max := params["min"], params["max"]
		if max <= min {
			return 0
		}
		a := math.Max(lo, min)
		b := math.Min(hi, max)
		if b <= a {
			return 0
		}
		return (b - a) / (max - min)
	case analysis.DistPowerLaw:
		return sd.PowerLawCDF(hi, params["alpha"], params["xmin"]) - sd.PowerLawCDF(lo, params["alpha"], params["xmin"])
	case analysis.DistExponential:
		return sd.ExponentialCDF(hi, params["lambda"]) - sd.ExponentialCDF(lo, params["lambda"])
	case analysis.DistBeta:
		return sd.BetaCDF(hi, params["alpha"], params["beta"]) - sd.BetaCDF(lo, params["alpha"], params["beta"])
	case analysis.DistGamma:
		return sd.GammaCDF(hi, params["shape"], params["scale"]) - sd.GammaCDF(lo, params["shape"], params["scale"])
	case analysis.DistChiSquared:
		return sd.ChiSquaredCDF(hi, params["df"]) - sd.ChiSquaredCDF(lo, params["df"])
	case analysis.DistStudentsT:
		return sd.StudentsTCDF(hi, params["df"]) - sd.StudentsTCDF(lo, params["df"])
	case analysis.DistWeibull:
		return sd.WeibullCDF(hi, params["shape"], params["scale"]) - sd.WeibullCDF(lo, params["shape"], params["scale"])
	case analysis.DistPoisson:
		return sd.discreteInterval(lo, hi, func(k int) float64 { return sd.PoissonPMF(k, params["lambda"]) })
	case analysis.DistBernoulli:
		return sd.discreteInterval(lo, hi, func(k int) float64 { return sd.BernoulliPMF(k, params["p"]) })
	case analysis.DistBinomial:
		n := int(params["n"])
		return sd.discreteInterval(lo, hi, func(k int) float64 { return sd.BinomialPMF(k, n, params["p"]) })
	case analysis.DistGeometric:
		return sd.discreteInterval(lo, hi, func(k int) float64 { return sd.GeometricPMF(k, params["p"]) })
	}
	return 0
}

// BinProbabilities maps consecutive histogram boundaries to their
// theoretical probability mass under a fitted family. len-1 values for
// len boundaries; fewer than two boundaries yields nil.
func (sd *Distributions) BinProbabilities(family analysis.DistributionType, params map[string]float64, boundaries []float64) []float64 {
	if len(boundaries) < 2 {
		return nil
	}
	probs := make([]float64, len(boundaries)-1)
	for i := range probs {
		probs[i] = sd.IntervalProbability(family, params, boundaries[i], boundaries[i+1])
	}
	return probs
}

func (sd *Distributions) discreteInterval(lo, hi float64, pmf func(int) float64) float64 {
	from := int(math.Ceil(lo))
	to := int(math.Floor(hi))
	if float64(from) == lo {
		from++ // interval is open on the left
	}
	if from < 0 {
		from = 0
	}
	total := 0.0
	for k := from; k <= to; k++ {
		total += pmf(k)
	}
	return total
}
