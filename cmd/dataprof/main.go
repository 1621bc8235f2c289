package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dataprof/adapters/filesource"
	"dataprof/adapters/sqlsource"
	"dataprof/app"
	"dataprof/domain/analysis"
	"dataprof/internal"
	"dataprof/internal/config"
	apperrors "dataprof/internal/errors"
	"dataprof/internal/report"
	"dataprof/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dataprof",
		Short: "Statistical profiler for CSV, XLSX, and Postgres tables",
	}

	rootCmd.AddCommand(
		newDescribeCmd(),
		newAnalyzeCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		if code := apperrors.GetCode(err); code != "UNKNOWN" {
			fmt.Fprintf(os.Stderr, "[%s] %v\n", code, err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// sourceFlags selects where rows come from: a file path argument or a
// database table via --table plus DATAPROF_DB_URL
type sourceFlags struct {
	table string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.table, "table", "", "Postgres table to profile (uses DATAPROF_DB_URL or the DB_* settings)")
}

func (f *sourceFlags) open(cfg *config.Config, args []string) (ports.DataSource, string, error) {
	if f.table != "" {
		url := cfg.Database.ConnectionURL()
		if url == "" {
			return nil, "", apperrors.ConfigInvalid("--table requires DATAPROF_DB_URL or DB_NAME to be set")
		}
		db, err := sqlsource.Open(url)
		if err != nil {
			return nil, "", err
		}
		return sqlsource.NewSource(db, f.table), f.table, nil
	}

	path := cfg.Paths.InputFile
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, "", apperrors.InvalidInput("provide a file path or --table")
	}
	src, err := filesource.NewSource(path)
	if err != nil {
		return nil, "", err
	}
	return src, path, nil
}

func newDescribeCmd() *cobra.Command {
	var srcFlags sourceFlags

	cmd := &cobra.Command{
		Use:   "describe [input]",
		Short: "Run the pushdown describe pass without materializing rows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			src, name, err := srcFlags.open(cfg, args)
			if err != nil {
				return err
			}

			svc := app.NewAnalysisService(cfg.Analysis.SampleSize, cfg.Analysis.Seed)
			results, err := svc.DescribePushdown(cmd.Context(), src)
			if err != nil {
				return err
			}
			printSummary(name, results)
			return nil
		},
	}
	srcFlags.register(cmd)
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var srcFlags sourceFlags
	var noCorrelation bool

	cmd := &cobra.Command{
		Use:   "analyze [input]",
		Short: "Profile every column and classify numeric distributions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			src, name, err := srcFlags.open(cfg, args)
			if err != nil {
				return err
			}

			opts := app.FullComputeOptions()
			opts.IncludeDistributionAnalyses = false
			opts.IncludeCorrelationMatrix = !noCorrelation

			results, err := runChunked(cmd.Context(), cfg, src, opts)
			if err != nil {
				return err
			}
			printSummary(name, results)
			printDistributions(results)
			if results.Correlation != nil {
				printCorrelation(results.Correlation)
			}
			return nil
		},
	}
	srcFlags.register(cmd)
	cmd.Flags().BoolVar(&noCorrelation, "no-correlation", false, "Skip the correlation matrix")
	return cmd
}

func newReportCmd() *cobra.Command {
	var srcFlags sourceFlags
	var title string

	cmd := &cobra.Command{
		Use:   "report [input]",
		Short: "Run a full analysis and export Markdown and HTML artifacts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			src, name, err := srcFlags.open(cfg, args)
			if err != nil {
				return err
			}
			if title == "" {
				title = name
			}

			results, err := runChunked(cmd.Context(), cfg, src, app.FullComputeOptions())
			if err != nil {
				return err
			}

			rep := report.NewRenderer().Render(title, results)
			mdPath, htmlPath, err := rep.Save(cfg.Paths.ReportDir)
			if err != nil {
				return err
			}
			fmt.Printf("report %s\n  %s\n  %s\n", rep.ID, mdPath, htmlPath)
			return nil
		},
	}
	srcFlags.register(cmd)
	cmd.Flags().StringVar(&title, "title", "", "Report title (defaults to the input name)")
	return cmd
}

// runChunked drives the chunked analysis API: one materialization, then
// per-column describe fanned out over a bounded worker group, then the
// completion passes.
func runChunked(ctx context.Context, cfg *config.Config, src ports.DataSource, opts app.ComputeOptions) (*analysis.AnalysisResults, error) {
	svc := app.NewAnalysisService(cfg.Analysis.SampleSize, cfg.Analysis.Seed)
	logger := internal.DefaultLogger.WithPrefix("cli")

	frame, sampling, err := svc.MaterializeFrame(ctx, src)
	if err != nil {
		return nil, err
	}

	schema := frame.Schema()
	columns := make([]analysis.ColumnStatistics, len(schema))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Analysis.Workers)
	for i, col := range schema {
		i, col := i, col
		g.Go(func() error {
			st, err := svc.DescribeColumn(gctx, frame, col)
			if err != nil {
				return err
			}
			columns[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("described %d columns", len(schema))

	results := app.ResultsFromDescribe(sampling, columns)
	if err := svc.ComputeDistributionStatistics(ctx, results, frame, opts); err != nil {
		return nil, err
	}
	if opts.IncludeCorrelationMatrix {
		if err := svc.ComputeCorrelationStatistics(ctx, results, frame); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func printSummary(name string, results *analysis.AnalysisResults) {
	s := results.Sampling
	fmt.Printf("%s: %d rows", name, s.TotalRows)
	if s.Sampled {
		fmt.Printf(" (analyzed %d, seed %d)", s.AnalyzedRows, s.Seed)
	}
	fmt.Println()

	for _, col := range results.Columns {
		fmt.Printf("  %-20s %-12s count=%d nulls=%d", col.Name, col.Type, col.Count, col.NullCount)
		if n := col.Numeric; n != nil {
			fmt.Printf(" mean=%.4g std=%.4g min=%.4g max=%.4g", n.Mean, n.Std, n.Min, n.Max)
		} else if c := col.Categorical; c != nil && c.Mode != "" {
			fmt.Printf(" unique=%d mode=%s", c.UniqueCount, c.Mode)
		}
		fmt.Println()
	}
}

func printDistributions(results *analysis.AnalysisResults) {
	var lines []string
	for _, col := range results.Columns {
		if col.Distribution == nil {
			continue
		}
		d := col.Distribution
		lines = append(lines, fmt.Sprintf("  %-20s %-12s confidence=%.3f fit=%.3f",
			col.Name, d.Distribution, d.Confidence, d.FitQuality))
	}
	if len(lines) == 0 {
		return
	}
	sort.Strings(lines)
	fmt.Println("distributions:")
	fmt.Println(strings.Join(lines, "\n"))
}

func printCorrelation(m *analysis.CorrelationMatrix) {
	fmt.Println("correlation:")
	for i := range m.Columns {
		for j := i + 1; j < len(m.Columns); j++ {
			fmt.Printf("  %s ~ %s: r=%.4f p=%.4g n=%d\n",
				m.Columns[i], m.Columns[j], m.Values[i][j], m.PValues[i][j], m.SampleSizes[i][j])
		}
	}
}
