package coercer

import (
	"math"
	"testing"

	"tabstat/domain/dataset"
)

func TestCoerce(t *testing.T) {
	c := NewDefaultTypeCoercer()

	tests := []struct {
		name   string
		cell   dataset.Cell
		want   float64
		wantOK bool
	}{
		{"currency with thousands", dataset.Text("$1,234.50"), 1234.5, true},
		{"euro prefix", dataset.Text("€99"), 99, true},
		{"pound with spaces", dataset.Text(" £ 12 "), 12, true},
		{"inner whitespace removed", dataset.Text("1 234"), 1234, true},
		{"negative", dataset.Text("-3.5"), -3.5, true},
		{"exponent", dataset.Text("1e3"), 1000, true},
		{"blank text", dataset.Text(" "), 0, false},
		{"lone dash", dataset.Text("-"), 0, false},
		{"not available", dataset.Text("N/A"), 0, false},
		{"word", dataset.Text("hello"), 0, false},
		{"nan text", dataset.Text("NaN"), 0, false},
		{"number unchanged", dataset.Number(42), 42, true},
		{"zero", dataset.Number(0), 0, true},
		{"nan number", dataset.Number(math.NaN()), 0, false},
		{"empty", dataset.Empty(), 0, false},
		{"missing", dataset.Missing(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Coerce(tt.cell)
			if ok != tt.wantOK {
				t.Fatalf("Coerce(%v) ok = %v, want %v", tt.cell, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Coerce(%v) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestCoerceInfinityIsNumber(t *testing.T) {
	c := NewDefaultTypeCoercer()

	v, ok := c.Coerce(dataset.Text("Infinity"))
	if !ok || !math.IsInf(v, 1) {
		t.Errorf("expected +Inf, got %v (ok=%v)", v, ok)
	}

	v, ok = c.Coerce(dataset.Number(math.Inf(-1)))
	if !ok || !math.IsInf(v, -1) {
		t.Errorf("expected -Inf, got %v (ok=%v)", v, ok)
	}
}

func TestCoerceCell(t *testing.T) {
	c := NewDefaultTypeCoercer()

	if got := c.CoerceCell(dataset.Text("7")); got.Kind != dataset.CellNumber || got.Num != 7 {
		t.Errorf("expected Number(7), got %+v", got)
	}
	if got := c.CoerceCell(dataset.Text("abc")); !got.IsMissing() {
		t.Errorf("expected Missing, got %+v", got)
	}
	if got := c.CoerceCell(dataset.Empty()); !got.IsMissing() {
		t.Errorf("expected Missing for empty cell, got %+v", got)
	}
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewDefaultTypeCoercer()

	values := []dataset.Cell{
		dataset.Text("1"), dataset.Number(2), dataset.Empty(), dataset.Text("x"), dataset.Missing(),
	}
	analysis := c.AnalyzeTypeDistribution(values)

	if analysis.TotalCount != 5 {
		t.Errorf("TotalCount = %d, want 5", analysis.TotalCount)
	}
	if analysis.NonEmptyCount != 4 {
		t.Errorf("NonEmptyCount = %d, want 4", analysis.NonEmptyCount)
	}
	if analysis.NumericCount != 2 {
		t.Errorf("NumericCount = %d, want 2", analysis.NumericCount)
	}
	if analysis.NumericRatio != 0.5 {
		t.Errorf("NumericRatio = %v, want 0.5", analysis.NumericRatio)
	}
}
