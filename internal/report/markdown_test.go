package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dataprof/domain/analysis"
)

func sampleResults() *analysis.AnalysisResults {
	return &analysis.AnalysisResults{
		Sampling: analysis.SamplingInfo{TotalRows: 1000, AnalyzedRows: 100, Sampled: true, Seed: 42},
		Columns: []analysis.ColumnStatistics{
			{
				Name: "amount", Type: analysis.ColumnNumeric, Count: 95, NullCount: 5,
				Numeric: &analysis.NumericStatistics{Mean: 10.5, Std: 2.25, Min: 1, Max: 20, Kurtosis: 3},
				Distribution: &analysis.DistributionInfo{
					Distribution: analysis.DistNormal, Confidence: 0.92, FitQuality: 0.9,
				},
			},
			{
				Name: "region", Type: analysis.ColumnCategorical, Count: 100,
				Categorical: &analysis.CategoricalStatistics{Min: "east", Max: "west"},
			},
		},
		Correlation: &analysis.CorrelationMatrix{
			Columns: []string{"amount", "other"},
			Values:  [][]float64{{1, math.NaN()}, {math.NaN(), 1}},
		},
		Analyses: map[string]*analysis.DistributionAnalysis{
			"amount": {
				Column:   "amount",
				Outliers: analysis.OutlierAnalysis{TotalCount: 3, Percentage: 3.16, LowerFence: 2, UpperFence: 18},
			},
		},
	}
}

func TestRender(t *testing.T) {
	rep := NewRenderer().Render("Orders", sampleResults())

	if rep.ID.String() == "" {
		t.Error("report should carry an ID")
	}
	if rep.Fingerprint.String() == "" {
		t.Error("report should carry a fingerprint")
	}

	md := string(rep.Markdown)
	for _, want := range []string{
		"# Orders",
		"Total rows: 1000",
		"Sampled: yes (seed 42)",
		"| amount | numeric | 95 | 5 |",
		"| amount | Normal | 0.92 | 0.9 |",
		"## Correlation",
		"n/a",
		"| east | west |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	html := string(rep.HTML)
	if !strings.Contains(html, "<table>") {
		t.Error("html should contain rendered tables")
	}
	if !strings.Contains(html, "Orders") {
		t.Error("html should carry the title")
	}
}

func TestRenderFingerprintTracksContent(t *testing.T) {
	r := NewRenderer()
	a := r.Render("x", sampleResults())

	changed := sampleResults()
	changed.Columns[0].Numeric.Mean = 99
	b := r.Render("x", changed)

	if a.Fingerprint == b.Fingerprint {
		t.Error("different snapshots must fingerprint differently")
	}

	same := r.Render("x", sampleResults())
	if a.Fingerprint != same.Fingerprint {
		t.Error("identical snapshots must fingerprint identically")
	}
}

func TestSave(t *testing.T) {
	rep := NewRenderer().Render("Orders", sampleResults())

	dir := filepath.Join(t.TempDir(), "reports")
	mdPath, htmlPath, err := rep.Save(dir)
	if err != nil {
		t.Fatal(err)
	}

	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(md), "# Orders") {
		t.Error("saved markdown content wrong")
	}
	if _, err := os.Stat(htmlPath); err != nil {
		t.Errorf("html artifact missing: %v", err)
	}
}
