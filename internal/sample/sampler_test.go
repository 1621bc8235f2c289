package sample

import (
	"reflect"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestNewPlanNoSampleSize(t *testing.T) {
	p := NewPlan(1_000_000, nil, 42)
	if p.Sampled {
		t.Error("nil sample size must never sample")
	}
	if p.CollectLimit != 0 {
		t.Errorf("collect limit should be unset, got %d", p.CollectLimit)
	}
}

func TestNewPlanBelowThreshold(t *testing.T) {
	p := NewPlan(999, intPtr(1000), 42)
	if p.Sampled {
		t.Error("row count below threshold must not sample")
	}
}

func TestNewPlanAtThreshold(t *testing.T) {
	p := NewPlan(1000, intPtr(1000), 42)
	if !p.Sampled {
		t.Error("row count equal to threshold must sample")
	}
}

func TestCollectLimitMultipliers(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		rows      int64
		want      int
	}{
		{"small threshold x5", 1000, 100000, 5000},
		{"mid threshold x3", 5000, 100000, 15000},
		{"large threshold x2", 20000, 100000, 40000},
		{"hard cap", 40000, 1000000, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlan(tt.rows, intPtr(tt.threshold), 0)
			if p.CollectLimit != tt.want {
				t.Errorf("collect limit = %d, want %d", p.CollectLimit, tt.want)
			}
		})
	}
}

func TestIndicesDeterministic(t *testing.T) {
	p1 := NewPlan(100000, intPtr(1000), 7)
	p2 := NewPlan(100000, intPtr(1000), 7)
	if !reflect.DeepEqual(p1.Indices(5000), p2.Indices(5000)) {
		t.Error("same seed must select the same rows")
	}
}

func TestIndicesSeedChangesOffset(t *testing.T) {
	a := NewPlan(100000, intPtr(1000), 0).Indices(5000)
	b := NewPlan(100000, intPtr(1000), 3).Indices(5000)
	if reflect.DeepEqual(a, b) {
		t.Error("different seeds should shift the systematic offset")
	}
	// stride is 5; both still pick exactly threshold rows
	if len(a) != 1000 || len(b) != 1000 {
		t.Fatalf("lengths = %d, %d, want 1000", len(a), len(b))
	}
	if b[0]-a[0] != 3 {
		t.Errorf("offset delta = %d, want 3", b[0]-a[0])
	}
}

func TestIndicesStride(t *testing.T) {
	p := NewPlan(100000, intPtr(1000), 2)
	idx := p.Indices(5000)
	for i := 1; i < len(idx); i++ {
		if idx[i]-idx[i-1] != 5 {
			t.Fatalf("stride broken at %d: %d -> %d", i, idx[i-1], idx[i])
		}
	}
	if idx[0] != 2 {
		t.Errorf("offset = %d, want seed %% stride = 2", idx[0])
	}
}

func TestIndicesClampedToCollected(t *testing.T) {
	p := NewPlan(100000, intPtr(1000), 999)
	idx := p.Indices(1001) // stride 1, offset 0 after modulo
	for _, i := range idx {
		if i > 1000 {
			t.Fatalf("index %d exceeds collected-1", i)
		}
	}
}

func TestIndicesFewCollected(t *testing.T) {
	p := NewPlan(100000, intPtr(1000), 42)
	idx := p.Indices(800)
	if len(idx) != 800 {
		t.Fatalf("collected below threshold should keep all rows, got %d", len(idx))
	}
	for i, v := range idx {
		if v != i {
			t.Fatal("identity selection expected")
		}
	}
}
