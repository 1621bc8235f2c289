package memsource

import (
	"context"
	"errors"
	"math"
	"testing"

	"dataprof/domain/core"
	"dataprof/ports"
)

func buildFrame(t *testing.T) *Frame {
	t.Helper()
	f := NewFrame()
	if err := f.AddNumeric("amount", []float64{10, 20, math.NaN(), 40, 50}); err != nil {
		t.Fatal(err)
	}
	if err := f.AddString("region", []string{"west", "east", "east", "", "north"},
		[]bool{true, true, true, false, true}); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestFrameColumns(t *testing.T) {
	f := buildFrame(t)
	if f.RowCount() != 5 {
		t.Fatalf("expected 5 rows, got %d", f.RowCount())
	}

	amounts, err := f.NumericColumn("amount")
	if err != nil {
		t.Fatal(err)
	}
	if len(amounts) != 5 || !math.IsNaN(amounts[2]) {
		t.Errorf("null cell should read as NaN: %v", amounts)
	}

	regions, valid, err := f.StringColumn("region")
	if err != nil {
		t.Fatal(err)
	}
	if valid[3] || !valid[0] {
		t.Errorf("validity mask wrong: %v", valid)
	}
	if regions[0] != "west" {
		t.Errorf("unexpected value %q", regions[0])
	}
}

func TestFrameColumnErrors(t *testing.T) {
	f := buildFrame(t)
	if _, err := f.NumericColumn("region"); !errors.Is(err, core.ErrColumnNotNumeric) {
		t.Errorf("expected not-numeric error, got %v", err)
	}
	if _, err := f.NumericColumn("missing"); !core.IsNotFoundError(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestFrameNumericAsString(t *testing.T) {
	f := buildFrame(t)
	rendered, valid, err := f.StringColumn("amount")
	if err != nil {
		t.Fatal(err)
	}
	if rendered[0] != "10" {
		t.Errorf("expected rendered 10, got %q", rendered[0])
	}
	if valid[2] {
		t.Error("NaN cell should render invalid")
	}
}

func TestFrameRejectsShapeMismatch(t *testing.T) {
	f := NewFrame()
	if err := f.AddNumeric("a", []float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := f.AddNumeric("b", []float64{1, 2}); err == nil {
		t.Error("mismatched row count should be rejected")
	}
	if err := f.AddNumeric("a", []float64{4, 5, 6}); err == nil {
		t.Error("duplicate column name should be rejected")
	}
}

func TestFrameSelect(t *testing.T) {
	f := buildFrame(t)
	sub := f.Select([]int{4, 0, 99})
	if sub.RowCount() != 2 {
		t.Fatalf("expected 2 rows after select, got %d", sub.RowCount())
	}

	amounts, err := sub.NumericColumn("amount")
	if err != nil {
		t.Fatal(err)
	}
	if amounts[0] != 50 || amounts[1] != 10 {
		t.Errorf("select order not preserved: %v", amounts)
	}

	regions, valid, err := sub.StringColumn("region")
	if err != nil {
		t.Fatal(err)
	}
	if regions[0] != "north" || !valid[1] {
		t.Errorf("string column not carried through select: %v %v", regions, valid)
	}
}

func TestFrameAggregate(t *testing.T) {
	f := buildFrame(t)
	specs := ports.BuildDescribeSpec(f.Schema())
	result, err := f.Aggregate(context.Background(), specs)
	if err != nil {
		t.Fatal(err)
	}

	checks := map[string]float64{
		"amount::count":      4,
		"amount::null_count": 1,
		"amount::mean":       30,
		"amount::min":        10,
		"amount::max":        50,
		"amount::median":     40,
		"region::count":      4,
		"region::null_count": 1,
	}
	for key, want := range checks {
		got, ok := result.Floats[key]
		if !ok {
			t.Errorf("missing %s", key)
			continue
		}
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%s = %f, want %f", key, got, want)
		}
	}

	// sorted complete values are 10,20,40,50 so q25 sits at index 1
	if got := result.Floats["amount::q25"]; got != 20 {
		t.Errorf("q25 = %f, want 20", got)
	}
	if got := result.Floats["amount::std"]; math.Abs(got-18.2574185835) > 1e-6 {
		t.Errorf("std = %f", got)
	}
	if result.Strings["region::min"] != "east" || result.Strings["region::max"] != "west" {
		t.Errorf("string ordering wrong: %v", result.Strings)
	}
}

func TestFrameAggregateUnknownColumn(t *testing.T) {
	f := buildFrame(t)
	_, err := f.Aggregate(context.Background(), []ports.AggSpec{{Column: "nope", Kind: ports.AggCount}})
	if !core.IsNotFoundError(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestSourceHead(t *testing.T) {
	src := NewSource(buildFrame(t))
	ctx := context.Background()

	total, err := src.RowCount(ctx)
	if err != nil || total != 5 {
		t.Fatalf("row count = %d, %v", total, err)
	}

	head, err := src.Head(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if head.RowCount() != 3 {
		t.Errorf("head rows = %d, want 3", head.RowCount())
	}

	all, err := src.Head(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if all.RowCount() != 5 {
		t.Errorf("unlimited head rows = %d, want 5", all.RowCount())
	}
}
