package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tabstat/adapters/api"
	"tabstat/adapters/excel"
	"tabstat/app"
	"tabstat/internal"
	"tabstat/internal/config"
	idataset "tabstat/internal/dataset"
	"tabstat/internal/report"
	"tabstat/ports"
)

// options are the persistent flags shared by every command
type options struct {
	format     string
	configFile string
	dataPath   string
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "tabstat-cli",
		Short:         "Descriptive statistics, clustering and quadrant analysis for tabular files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "table", "Output format: table|json|yaml")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default $TABSTAT_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&opts.dataPath, "path", "", "gjson path of the rows in a JSON file")

	rootCmd.AddCommand(
		newProfileCmd(opts),
		newStatsCmd(opts),
		newHistogramCmd(opts),
		newBoxPlotCmd(opts),
		newClusterCmd(opts),
		newQuadrantCmd(opts),
		newReportCmd(opts),
	)
	return rootCmd
}

func newProfileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profile [file]",
		Short: "Classify the columns of a file as numeric or categorical",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			return writeProfile(cmd.OutOrStdout(), opts.format, sess.result)
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	var groupBy string

	cmd := &cobra.Command{
		Use:   "stats [file] [variables...]",
		Short: "Descriptive statistics per variable, optionally per group",
		Long: `Compute descriptive statistics for the selected numeric variables.
Without variables every numeric column is summarized.

Example: tabstat-cli stats sales.xlsx revenue units --group-by region`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			records, err := sess.service.StatsFor(cmd.Context(), sess.result.Dataset, sess.statsRequest(args[1:], groupBy))
			if err != nil {
				return err
			}
			return writeStats(cmd.OutOrStdout(), opts.format, records)
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", "", "Categorical column to group by")
	return cmd
}

func newHistogramCmd(opts *options) *cobra.Command {
	var groupBy string

	cmd := &cobra.Command{
		Use:   "histogram [file] [variables...]",
		Short: "Equal-width histograms of numeric variables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			histograms, err := sess.service.HistogramsFor(cmd.Context(), sess.result.Dataset, sess.statsRequest(args[1:], groupBy))
			if err != nil {
				return err
			}
			return writeHistograms(cmd.OutOrStdout(), opts.format, histograms)
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", "", "Categorical column to group by")
	return cmd
}

func newBoxPlotCmd(opts *options) *cobra.Command {
	var groupBy string

	cmd := &cobra.Command{
		Use:   "boxplot [file] [variables...]",
		Short: "Box plot geometry of numeric variables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			plots, err := sess.service.BoxPlotsFor(cmd.Context(), sess.result.Dataset, sess.statsRequest(args[1:], groupBy))
			if err != nil {
				return err
			}
			return writeBoxPlots(cmd.OutOrStdout(), opts.format, plots)
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", "", "Categorical column to group by")
	return cmd
}

func newClusterCmd(opts *options) *cobra.Command {
	var req app.ClusterRequest

	cmd := &cobra.Command{
		Use:   "cluster [file]",
		Short: "k-means clustering over two numeric columns",
		Long: `Cluster the rows of a file on two numeric columns.
Without --x and --y the first two numeric columns are used.

Example: tabstat-cli cluster sales.csv --x revenue --y units --k 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			result, err := sess.service.ClusterFor(cmd.Context(), sess.result.Dataset, req)
			if err != nil {
				return err
			}
			return writeCluster(cmd.OutOrStdout(), opts.format, result.Rounded())
		},
	}

	cmd.Flags().StringVar(&req.X, "x", "", "X column")
	cmd.Flags().StringVar(&req.Y, "y", "", "Y column")
	cmd.Flags().IntVar(&req.K, "k", 3, "Number of clusters")
	cmd.Flags().IntVar(&req.MaxIterations, "max-iterations", 0, "Iteration cap (default from config)")
	return cmd
}

func newQuadrantCmd(opts *options) *cobra.Command {
	var req app.QuadrantRequest

	cmd := &cobra.Command{
		Use:   "quadrant [file]",
		Short: "Split rows into quadrants at the means of two numeric columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			result, err := sess.service.QuadrantsFor(cmd.Context(), sess.result.Dataset, req)
			if err != nil {
				return err
			}
			return writeQuadrants(cmd.OutOrStdout(), opts.format, result.Rounded())
		},
	}

	cmd.Flags().StringVar(&req.X, "x", "", "X column")
	cmd.Flags().StringVar(&req.Y, "y", "", "Y column")
	return cmd
}

func newReportCmd(opts *options) *cobra.Command {
	var (
		groupBy   string
		x, y      string
		k         int
		quadrants bool
		html      bool
	)

	cmd := &cobra.Command{
		Use:   "report [file] [variables...]",
		Short: "Markdown (or HTML) summary report",
		Long: `Write a report with the column schema and descriptive statistics.
--k adds a cluster section and --quadrants a quadrant section.

Example: tabstat-cli report sales.xlsx --group-by region --k 3 --quadrants --html > report.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := load(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			req := app.ReportRequest{Stats: sess.statsRequest(args[1:], groupBy)}
			if k > 0 {
				req.Cluster = &app.ClusterRequest{X: x, Y: y, K: k}
			}
			if quadrants {
				req.Quadrants = &app.QuadrantRequest{X: x, Y: y}
			}

			md, err := sess.service.ReportFor(cmd.Context(), sess.result.Dataset, req)
			if err != nil {
				return err
			}
			if html {
				_, err = cmd.OutOrStdout().Write(report.RenderHTML(md, "Statistical summary"))
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), md)
			return err
		},
	}

	cmd.Flags().StringVar(&groupBy, "group-by", "", "Categorical column to group by")
	cmd.Flags().StringVar(&x, "x", "", "X column for cluster and quadrant sections")
	cmd.Flags().StringVar(&y, "y", "", "Y column for cluster and quadrant sections")
	cmd.Flags().IntVar(&k, "k", 0, "Add a cluster section with k clusters")
	cmd.Flags().BoolVar(&quadrants, "quadrants", false, "Add a quadrant section")
	cmd.Flags().BoolVar(&html, "html", false, "Render HTML instead of Markdown")
	return cmd
}

// session is one ingested file and the service holding it
type session struct {
	service *app.AnalysisService
	result  *idataset.IngestResult
}

// statsRequest selects every numeric column when no variables are given
func (s *session) statsRequest(variables []string, groupBy string) app.StatsRequest {
	if len(variables) == 0 {
		variables = s.result.NumericHeaders
	}
	return app.StatsRequest{Variables: variables, GroupBy: groupBy}
}

func load(ctx context.Context, opts *options, path string) (*session, error) {
	switch opts.format {
	case "table", "json", "yaml":
	default:
		return nil, fmt.Errorf("unknown format %q (use table, json or yaml)", opts.format)
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	logger := internal.NewLoggerWithWriter(internal.ParseLogLevel(cfg.Log.Level), os.Stderr)
	service := app.NewAnalysisService(idataset.NewMemoryStore(), cfg.Analysis, logger)

	var (
		reader ports.RowReader
		source string
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		reader = api.NewJSONRowReader(body, opts.dataPath)
		source = "json"
	} else {
		dataReader := excel.NewDataReader(path)
		reader = dataReader
		source = dataReader.FileType()
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	result, err := service.Ingest(ctx, name, source, reader)
	if err != nil {
		return nil, err
	}
	return &session{service: service, result: result}, nil
}
