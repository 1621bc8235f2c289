package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"dataprof/domain/analysis"
	"dataprof/domain/core"
	"dataprof/internal"
	apperrors "dataprof/internal/errors"
)

// Report is an exported analysis snapshot. The fingerprint hashes the
// rendered Markdown, so two exports of the same snapshot can be told
// apart from two different analyses. (JSON is not an option for the
// hash input: snapshots carry NaN where no default is meaningful.)
type Report struct {
	ID          core.ReportID
	Title       string
	GeneratedAt core.Timestamp
	Fingerprint core.SnapshotFingerprint
	Markdown    []byte
	HTML        []byte
}

// Renderer turns analysis snapshots into Markdown and HTML artifacts
type Renderer struct {
	logger *internal.Logger
}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{logger: internal.DefaultLogger.WithPrefix("report")}
}

// Render builds the report artifact for a snapshot
func (r *Renderer) Render(title string, results *analysis.AnalysisResults) *Report {
	md := r.renderMarkdown(title, results)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})

	return &Report{
		ID:          core.ReportID(core.NewID()),
		Title:       title,
		GeneratedAt: core.Now(),
		Fingerprint: core.NewSnapshotFingerprint(md),
		Markdown:    md,
		HTML:        markdown.ToHTML(md, p, renderer),
	}
}

// Save writes the Markdown and HTML artifacts under dir, named by the
// report ID
func (rep *Report) Save(dir string) (mdPath, htmlPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", apperrors.FileError(dir, err)
	}
	base := filepath.Join(dir, rep.ID.String())
	mdPath = base + ".md"
	htmlPath = base + ".html"

	if err := os.WriteFile(mdPath, rep.Markdown, 0o644); err != nil {
		return "", "", apperrors.FileError(mdPath, err)
	}
	if err := os.WriteFile(htmlPath, rep.HTML, 0o644); err != nil {
		return "", "", apperrors.FileError(htmlPath, err)
	}
	return mdPath, htmlPath, nil
}

func (r *Renderer) renderMarkdown(title string, results *analysis.AnalysisResults) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	s := results.Sampling
	fmt.Fprintf(&b, "## Dataset\n\n")
	fmt.Fprintf(&b, "- Total rows: %d\n", s.TotalRows)
	fmt.Fprintf(&b, "- Analyzed rows: %d\n", s.AnalyzedRows)
	if s.Sampled {
		fmt.Fprintf(&b, "- Sampled: yes (seed %d)\n", s.Seed)
	} else {
		fmt.Fprintf(&b, "- Sampled: no\n")
	}
	b.WriteString("\n")

	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Type | Count | Nulls | Mean | Std | Min | Max |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, col := range results.Columns {
		mean, std, min, max := "", "", "", ""
		if col.Numeric != nil {
			mean = num(col.Numeric.Mean)
			std = num(col.Numeric.Std)
			min = num(col.Numeric.Min)
			max = num(col.Numeric.Max)
		} else if col.Categorical != nil {
			min = col.Categorical.Min
			max = col.Categorical.Max
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s | %s | %s | %s |\n",
			col.Name, col.Type, col.Count, col.NullCount, mean, std, min, max)
	}
	b.WriteString("\n")

	var fitted []analysis.ColumnStatistics
	for _, col := range results.Columns {
		if col.Distribution != nil {
			fitted = append(fitted, col)
		}
	}
	if len(fitted) > 0 {
		b.WriteString("## Distributions\n\n")
		b.WriteString("| Column | Family | Confidence | Fit quality |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, col := range fitted {
			d := col.Distribution
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				col.Name, d.Distribution, num(d.Confidence), num(d.FitQuality))
		}
		b.WriteString("\n")
	}

	if len(results.Analyses) > 0 {
		b.WriteString("## Outliers\n\n")
		b.WriteString("| Column | Flagged | Share | Lower fence | Upper fence |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, col := range results.Columns {
			detail, ok := results.Analyses[col.Name]
			if !ok {
				continue
			}
			o := detail.Outliers
			fmt.Fprintf(&b, "| %s | %d | %s%% | %s | %s |\n",
				col.Name, o.TotalCount, num(o.Percentage), num(o.LowerFence), num(o.UpperFence))
		}
		b.WriteString("\n")
	}

	if m := results.Correlation; m != nil {
		b.WriteString("## Correlation\n\n")
		b.WriteString("| |")
		for _, name := range m.Columns {
			fmt.Fprintf(&b, " %s |", name)
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---|", len(m.Columns)))
		b.WriteString("\n")
		for i, name := range m.Columns {
			fmt.Fprintf(&b, "| %s |", name)
			for j := range m.Columns {
				fmt.Fprintf(&b, " %s |", num(m.Values[i][j]))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return []byte(b.String())
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", v)
}
