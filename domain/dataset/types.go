package dataset

import (
	"time"

	"tabstat/domain/core"
)

// ColumnKind classifies a column as numeric or categorical
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
)

// Row maps column names to cells. Column order lives in the dataset header.
type Row map[string]Cell

// Get returns the cell for a column, or an empty cell when absent
func (r Row) Get(column string) Cell {
	if c, ok := r[column]; ok {
		return c
	}
	return Empty()
}

// Dataset is an ordered sequence of rows sharing one header.
// INVARIANTS:
// - every row has every header key
// - Kinds is nil for raw datasets and has one entry per header once classified
// - a dataset is never mutated after construction
type Dataset struct {
	ID        core.ID               `json:"id"`
	Name      string                `json:"name"`
	Source    string                `json:"source"` // "upload", "excel", "csv", "json"
	Header    []string              `json:"header"`
	Rows      []Row                 `json:"rows"`
	Kinds     map[string]ColumnKind `json:"kinds,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// New creates a raw dataset. Rows are copied; absent header keys are filled
// with empty cells and keys outside the header are dropped.
func New(header []string, rows []Row) *Dataset {
	h := make([]string, len(header))
	copy(h, header)

	out := make([]Row, len(rows))
	for i, row := range rows {
		clean := make(Row, len(h))
		for _, col := range h {
			clean[col] = row.Get(col)
		}
		out[i] = clean
	}

	return &Dataset{
		Header:    h,
		Rows:      out,
		CreatedAt: time.Now(),
	}
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// HasColumn reports whether the header contains the column
func (d *Dataset) HasColumn(column string) bool {
	for _, h := range d.Header {
		if h == column {
			return true
		}
	}
	return false
}

// Kind returns the column kind, if classified
func (d *Dataset) Kind(column string) (ColumnKind, bool) {
	k, ok := d.Kinds[column]
	return k, ok
}

// NumericHeaders returns numeric columns in header order
func (d *Dataset) NumericHeaders() []string {
	return d.headersOfKind(KindNumeric)
}

// CategoricalHeaders returns categorical columns in header order
func (d *Dataset) CategoricalHeaders() []string {
	return d.headersOfKind(KindCategorical)
}

func (d *Dataset) headersOfKind(kind ColumnKind) []string {
	out := []string{}
	for _, h := range d.Header {
		if d.Kinds[h] == kind {
			out = append(out, h)
		}
	}
	return out
}

// Column returns the cells of one column in row order
func (d *Dataset) Column(column string) []Cell {
	cells := make([]Cell, len(d.Rows))
	for i, row := range d.Rows {
		cells[i] = row.Get(column)
	}
	return cells
}

// FiniteValues returns the finite numbers of a column in row order
func (d *Dataset) FiniteValues(column string) []float64 {
	values := make([]float64, 0, len(d.Rows))
	for _, row := range d.Rows {
		if v, ok := row.Get(column).Float(); ok {
			values = append(values, v)
		}
	}
	return values
}
