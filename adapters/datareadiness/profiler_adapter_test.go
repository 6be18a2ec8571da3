package datareadiness

import (
	"fmt"
	"testing"

	"tabstat/adapters/datareadiness/coercer"
	"tabstat/domain/dataset"
)

func columnDataset(values ...dataset.Cell) *dataset.Dataset {
	rows := make([]dataset.Row, len(values))
	for i, v := range values {
		rows[i] = dataset.Row{"col": v}
	}
	return dataset.New([]string{"col"}, rows)
}

func repeatText(n int, s string) []dataset.Cell {
	out := make([]dataset.Cell, n)
	for i := range out {
		out[i] = dataset.Text(s)
	}
	return out
}

func TestClassifyColumns(t *testing.T) {
	profiler := NewProfilerAdapter(coercer.NewDefaultTypeCoercer(), DefaultProfilingConfig())

	tests := []struct {
		name     string
		values   []dataset.Cell
		expected dataset.ColumnKind
	}{
		{
			name:     "numeric strings are numeric",
			values:   []dataset.Cell{dataset.Text("25"), dataset.Text("34"), dataset.Text("45")},
			expected: dataset.KindNumeric,
		},
		{
			name:     "currency values are numeric",
			values:   []dataset.Cell{dataset.Text("$45,000"), dataset.Text("$78,000"), dataset.Text("€120")},
			expected: dataset.KindNumeric,
		},
		{
			name:     "nine of ten numeric is numeric",
			values:   append(repeatText(9, "1"), dataset.Text("x")),
			expected: dataset.KindNumeric,
		},
		{
			name:     "eight of ten numeric is categorical",
			values:   append(repeatText(8, "1"), dataset.Text("x"), dataset.Text("y")),
			expected: dataset.KindCategorical,
		},
		{
			name:     "text values are categorical",
			values:   []dataset.Cell{dataset.Text("North"), dataset.Text("South")},
			expected: dataset.KindCategorical,
		},
		{
			name:     "all empty is categorical",
			values:   []dataset.Cell{dataset.Empty(), dataset.Empty()},
			expected: dataset.KindCategorical,
		},
		{
			name:     "empty cells are skipped",
			values:   []dataset.Cell{dataset.Number(1), dataset.Empty(), dataset.Empty(), dataset.Empty()},
			expected: dataset.KindNumeric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, kinds := profiler.ClassifyColumns(columnDataset(tt.values...))
			if kinds["col"] != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, kinds["col"])
			}
		})
	}
}

func TestClassifyColumnsSamplesOnlyLeadingRows(t *testing.T) {
	profiler := NewProfilerAdapter(nil, ProfilingConfig{SampleSize: 3, NumericThreshold: 0.8})

	values := append(repeatText(3, "7"), repeatText(10, "text")...)
	profiles, kinds := profiler.ClassifyColumns(columnDataset(values...))

	if kinds["col"] != dataset.KindNumeric {
		t.Errorf("expected numeric from leading sample, got %s", kinds["col"])
	}
	if profiles[0].SampledRows != 3 {
		t.Errorf("expected 3 sampled rows, got %d", profiles[0].SampledRows)
	}
}

func TestClassifyColumnsOneKindPerHeader(t *testing.T) {
	profiler := NewProfilerAdapter(nil, DefaultProfilingConfig())

	header := []string{"region", "sales", "notes"}
	var rows []dataset.Row
	for i := 0; i < 5; i++ {
		rows = append(rows, dataset.Row{
			"region": dataset.Text("North"),
			"sales":  dataset.Text(fmt.Sprintf("%d", i*10)),
		})
	}

	profiles, kinds := profiler.ClassifyColumns(dataset.New(header, rows))

	if len(kinds) != len(header) {
		t.Fatalf("expected %d kinds, got %d", len(header), len(kinds))
	}
	for i, col := range header {
		if profiles[i].Column != col {
			t.Errorf("profile %d: expected column %s, got %s", i, col, profiles[i].Column)
		}
	}
	if kinds["region"] != dataset.KindCategorical || kinds["sales"] != dataset.KindNumeric || kinds["notes"] != dataset.KindCategorical {
		t.Errorf("unexpected kinds: %v", kinds)
	}
}
