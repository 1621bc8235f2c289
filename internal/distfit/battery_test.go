package distfit

import (
	"math"
	"testing"

	"dataprof/domain/analysis"
	"dataprof/internal/testkit"
)

func TestRunTooFewValues(t *testing.T) {
	b := NewBattery()

	for _, values := range [][]float64{nil, {1}, {1, 2}} {
		info := b.Run(values)
		if info.Distribution != analysis.DistUnknown {
			t.Errorf("%v: got %v, want unknown", values, info.Distribution)
		}
		if info.Confidence != 0 {
			t.Errorf("%v: confidence = %v, want 0", values, info.Confidence)
		}
		if info.SampleSize != len(values) {
			t.Errorf("%v: sample size = %v, want %v", values, info.SampleSize, len(values))
		}
	}
}

func TestRunNormalColumn(t *testing.T) {
	b := NewBattery()
	values := testkit.NormalColumn(10000, 42, 50, 10)
	info := b.Run(values)

	if info.Distribution != analysis.DistNormal {
		t.Fatalf("distribution = %v (scores %v), want normal", info.Distribution, info.AllScores)
	}
	if info.Confidence <= 0.5 {
		t.Errorf("confidence = %v, want > 0.5", info.Confidence)
	}
	if math.Abs(info.Parameters["mean"]-50) > 0.5 {
		t.Errorf("mean estimate = %v", info.Parameters["mean"])
	}
	if math.Abs(info.Parameters["std"]-10) > 0.5 {
		t.Errorf("std estimate = %v", info.Parameters["std"])
	}
	if info.SampleSize != len(values) {
		t.Errorf("sample size = %v, want %v", info.SampleSize, len(values))
	}
}

func TestRunUniformBeatsNormal(t *testing.T) {
	b := NewBattery()
	values := testkit.UniformColumn(10000, 7, 0, 1)
	info := b.Run(values)

	uniformScore := info.AllScores[analysis.DistUniform]
	normalScore := info.AllScores[analysis.DistNormal]
	if uniformScore <= normalScore {
		t.Errorf("uniform %v should beat normal %v", uniformScore, normalScore)
	}
	if info.Distribution != analysis.DistUniform {
		t.Errorf("distribution = %v, want uniform", info.Distribution)
	}
}

func TestRunExponentialColumn(t *testing.T) {
	b := NewBattery()
	values := testkit.ExponentialColumn(5000, 11, 0.5)
	info := b.Run(values)

	if info.Distribution != analysis.DistExponential {
		t.Fatalf("distribution = %v (scores %v), want exponential", info.Distribution, info.AllScores)
	}
	if math.Abs(info.Parameters["lambda"]-0.5) > 0.05 {
		t.Errorf("lambda = %v, want near 0.5", info.Parameters["lambda"])
	}
}

func TestRunBernoulliColumn(t *testing.T) {
	b := NewBattery()
	values := testkit.BernoulliColumn(2000, 3, 0.5)
	info := b.Run(values)

	if info.Distribution != analysis.DistBernoulli {
		t.Fatalf("distribution = %v (scores %v), want bernoulli", info.Distribution, info.AllScores)
	}
	if math.Abs(info.Parameters["p"]-0.5) > 0.01 {
		t.Errorf("p = %v, want 0.5", info.Parameters["p"])
	}
}

func TestRunPoissonColumn(t *testing.T) {
	b := NewBattery()
	values := testkit.PoissonColumn(2000, 5, 4.0)
	info := b.Run(values)

	if info.Distribution != analysis.DistPoisson {
		t.Fatalf("distribution = %v (scores %v), want poisson", info.Distribution, info.AllScores)
	}
	if math.Abs(info.Parameters["lambda"]-4.0) > 0.2 {
		t.Errorf("lambda = %v, want near 4", info.Parameters["lambda"])
	}
}

func TestRunGeometricColumn(t *testing.T) {
	b := NewBattery()
	values := testkit.GeometricColumn(800, 9, 0.3)
	info := b.Run(values)

	if info.Distribution != analysis.DistGeometric {
		t.Fatalf("distribution = %v (scores %v), want geometric", info.Distribution, info.AllScores)
	}
}

func TestAllScoresWithinBounds(t *testing.T) {
	b := NewBattery()
	columns := [][]float64{
		testkit.NormalColumn(1000, 1, 0, 1),
		testkit.UniformColumn(1000, 2, -5, 5),
		testkit.ExponentialColumn(1000, 3, 2),
		testkit.PoissonColumn(1000, 4, 2),
		testkit.LogNormalColumn(1000, 5, 0, 0.5),
	}
	for _, values := range columns {
		info := b.Run(values)
		if info.Confidence < 0 || info.Confidence > 1 {
			t.Errorf("confidence out of range: %v", info.Confidence)
		}
		if info.FitQuality < 0 || info.FitQuality > 1 {
			t.Errorf("fit quality out of range: %v", info.FitQuality)
		}
		for family, score := range info.AllScores {
			if score < 0 || score > 1 {
				t.Errorf("%v score out of range: %v", family, score)
			}
			if score > maxConfidence {
				t.Errorf("%v score above cap: %v", family, score)
			}
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	b := NewBattery()
	values := testkit.NormalColumn(2000, 99, 10, 3)
	first := b.Run(values)
	second := b.Run(values)
	if first.Distribution != second.Distribution || first.Confidence != second.Confidence {
		t.Error("same input must classify identically")
	}
}

func TestLosersRecorded(t *testing.T) {
	b := NewBattery()
	values := testkit.NormalColumn(5000, 21, 100, 15)
	info := b.Run(values)

	if _, ok := info.AllScores[analysis.DistNormal]; !ok {
		t.Error("winner missing from the score map")
	}
	// the uniform reference candidate is always admitted
	if _, ok := info.AllScores[analysis.DistUniform]; !ok {
		t.Error("uniform score should be recorded even when it loses")
	}
	if len(info.AllScores) < 2 {
		t.Errorf("expected multiple recorded candidates, got %d", len(info.AllScores))
	}
}

func TestConstantColumn(t *testing.T) {
	b := NewBattery()
	info := b.Run(make([]float64, 12))
	if info.Confidence != 0 {
		t.Errorf("constant column confidence = %v, want 0", info.Confidence)
	}
}

func TestGammaDiscountsIntegerData(t *testing.T) {
	b := NewBattery()
	values := testkit.PoissonColumn(3000, 13, 6.0)
	info := b.Run(values)

	gammaScore, ok := info.AllScores[analysis.DistGamma]
	if ok && gammaScore >= info.AllScores[analysis.DistPoisson] {
		t.Errorf("gamma %v should not beat poisson %v on integer counts",
			gammaScore, info.AllScores[analysis.DistPoisson])
	}
}

func TestSamplePrecompute(t *testing.T) {
	s := NewSample([]float64{-1, 0, 1, 2, 3.5, 4})

	if s.N != 6 {
		t.Fatalf("N = %d", s.N)
	}
	if !s.HasNegatives {
		t.Error("negative flag missing")
	}
	if s.AllInteger {
		t.Error("3.5 is not an integer")
	}
	if len(s.Positives) != 4 {
		t.Errorf("positives = %d, want 4", len(s.Positives))
	}
	if len(s.NonNegInts) != 4 {
		t.Errorf("non-negative ints = %d, want 4", len(s.NonNegInts))
	}
	if s.BinaryCount != 2 {
		t.Errorf("binary count = %d, want 2", s.BinaryCount)
	}
	if s.Min != -1 || s.Max != 4 {
		t.Errorf("min/max = %v/%v", s.Min, s.Max)
	}
	if s.UniformChi2OK {
		t.Error("fewer than 10 values should not define the uniformity statistic")
	}
}

func TestSampleSortedAscending(t *testing.T) {
	s := NewSample([]float64{3, 1, 2})
	for i := 1; i < len(s.Sorted); i++ {
		if s.Sorted[i] < s.Sorted[i-1] {
			t.Fatal("sorted values out of order")
		}
	}
	// original order untouched
	if s.Values[0] != 3 {
		t.Error("input slice order must be preserved")
	}
}
