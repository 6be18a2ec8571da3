package dataset

import (
	"encoding/json"
	"math"
	"strconv"
)

// CellKind tags the representation held by a Cell
type CellKind int

const (
	// CellEmpty is an absent or blank raw value
	CellEmpty CellKind = iota
	// CellNumber is a native number
	CellNumber
	// CellText is raw text, possibly numeric-looking
	CellText
	// CellMissing marks a value in a numeric column that failed coercion
	CellMissing
)

// String returns the kind name
func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellNumber:
		return "number"
	case CellText:
		return "text"
	case CellMissing:
		return "missing"
	}
	return "invalid"
}

// Cell is an immutable raw or normalized value
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
}

// Empty creates an empty cell
func Empty() Cell {
	return Cell{Kind: CellEmpty}
}

// Number creates a numeric cell
func Number(n float64) Cell {
	return Cell{Kind: CellNumber, Num: n}
}

// Text creates a text cell. The empty string is an empty cell.
func Text(s string) Cell {
	if s == "" {
		return Empty()
	}
	return Cell{Kind: CellText, Text: s}
}

// Missing creates a missing cell
func Missing() Cell {
	return Cell{Kind: CellMissing}
}

// IsEmpty reports whether the cell carries no raw value
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// IsMissing reports whether the cell failed numeric coercion
func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// Float returns the value when the cell holds a finite number
func (c Cell) Float() (float64, bool) {
	if c.Kind != CellNumber || math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
		return 0, false
	}
	return c.Num, true
}

// String returns the display form of the cell
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellText:
		return c.Text
	}
	return ""
}

// MarshalJSON encodes numbers as JSON numbers, text as strings and
// empty, missing or non-finite values as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellNumber:
		if v, ok := c.Float(); ok {
			return json.Marshal(v)
		}
	case CellText:
		return json.Marshal(c.Text)
	}
	return []byte("null"), nil
}
