package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"tabstat/domain/spatial"
	"tabstat/domain/stats/brief"
	"tabstat/internal/analysis"
	idataset "tabstat/internal/dataset"
)

// emit writes v as JSON or YAML, or lets fill build a table
func emit(w io.Writer, format string, v interface{}, fill func(t table.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		fill(t)
		t.Render()
		return nil
	}
}

func writeProfile(w io.Writer, format string, result *idataset.IngestResult) error {
	return emit(w, format, result.Profiles, func(t table.Writer) {
		t.SetTitle(fmt.Sprintf("%s: %d rows", result.Dataset.Name, result.Dataset.Len()))
		t.AppendHeader(table.Row{"Column", "Kind", "Sampled", "Non-empty", "Numeric", "Ratio"})
		for _, p := range result.Profiles {
			t.AppendRow(table.Row{p.Column, p.Kind, p.SampledRows, p.NonEmptyCount, p.NumericCount, fmt.Sprintf("%.2f", p.NumericRatio)})
		}
	})
}

func writeStats(w io.Writer, format string, records []brief.VariableStats) error {
	rounded := make([]brief.VariableStats, len(records))
	for i, r := range records {
		r.Stats = r.Stats.Rounded()
		rounded[i] = r
	}
	return emit(w, format, rounded, func(t table.Writer) {
		t.AppendHeader(table.Row{"Variable", "N", "Mean", "Median", "Mode", "Std dev", "Min", "Q1", "Q3", "Max", "Skew", "Kurt", "CI95"})
		for _, r := range rounded {
			s := r.Stats
			t.AppendRow(table.Row{
				r.Label(), s.N, s.Mean, s.Median, s.Mode, s.StdDev,
				s.Min, s.Q1, s.Q3, s.Max, s.Skewness.String(), s.Kurtosis.String(), s.CI95,
			})
		}
		alignRight(t, 2, 13)
	})
}

func writeHistograms(w io.Writer, format string, histograms []brief.Histogram) error {
	for i := range histograms {
		for j := range histograms[i].Bins {
			histograms[i].Bins[j].Start = brief.RoundOutput(histograms[i].Bins[j].Start)
			histograms[i].Bins[j].End = brief.RoundOutput(histograms[i].Bins[j].End)
		}
	}
	return emit(w, format, histograms, func(t table.Writer) {
		t.AppendHeader(table.Row{"Variable", "Group", "Start", "End", "Count"})
		for _, h := range histograms {
			for _, b := range h.Bins {
				t.AppendRow(table.Row{h.Variable, h.Group, b.Start, b.End, b.Count})
			}
			t.AppendSeparator()
		}
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}, {Number: 2, AutoMerge: true}})
	})
}

func writeBoxPlots(w io.Writer, format string, plots []analysis.BoxPlot) error {
	rounded := make([]analysis.BoxPlot, len(plots))
	for i, p := range plots {
		rounded[i] = p.Rounded()
	}
	return emit(w, format, rounded, func(t table.Writer) {
		t.AppendHeader(table.Row{"Label", "Min", "Q1", "Median", "Q3", "Max", "IQR %"})
		for _, p := range rounded {
			t.AppendRow(table.Row{p.Label, p.Min, p.Q1, p.Median, p.Q3, p.Max, p.IQRWidthPct})
		}
		alignRight(t, 2, 7)
	})
}

func writeCluster(w io.Writer, format string, result spatial.ClusterResult) error {
	return emit(w, format, result, func(t table.Writer) {
		t.SetTitle(fmt.Sprintf("%s vs %s, k = %d, %d iterations, converged: %t",
			result.XColumn, result.YColumn, result.K, result.Iterations, result.Converged))
		t.AppendHeader(table.Row{"Cluster", "Size", "Centroid X", "Centroid Y"})
		for _, c := range result.Clusters {
			t.AppendRow(table.Row{c.ID + 1, c.Size, c.Centroid.X, c.Centroid.Y})
		}
	})
}

func writeQuadrants(w io.Writer, format string, result spatial.QuadrantResult) error {
	return emit(w, format, result, func(t table.Writer) {
		t.SetTitle(fmt.Sprintf("%s vs %s, split at %s / %s", result.XColumn, result.YColumn, result.XMean, result.YMean))
		t.AppendHeader(table.Row{"Quadrant", "Points"})
		for _, q := range spatial.Quadrants {
			t.AppendRow(table.Row{q.Description(), result.Counts[q]})
		}
	})
}

// alignRight right-aligns the numeric columns from..to (1-based, inclusive)
func alignRight(t table.Writer, from, to int) {
	configs := make([]table.ColumnConfig, 0, to-from+1)
	for n := from; n <= to; n++ {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)
}
