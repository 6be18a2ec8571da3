package coercer

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"tabstat/domain/dataset"
)

// TypeCoercer handles deterministic numeric coercion of raw cells
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the symbols stripped before numeric parsing
type CoercionConfig struct {
	CurrencySymbols    []string `json:"currency_symbols" mapstructure:"currency_symbols"`
	ThousandsSeparator string   `json:"thousands_separator" mapstructure:"thousands_separator"`
}

// DefaultCoercionConfig returns the US/standard number format
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		CurrencySymbols:    []string{"$", "€", "£"},
		ThousandsSeparator: ",",
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// NewDefaultTypeCoercer creates a coercer with DefaultCoercionConfig
func NewDefaultTypeCoercer() *TypeCoercer {
	return NewTypeCoercer(DefaultCoercionConfig())
}

// Coerce converts a cell to a number. The second result is false when the
// value is missing; malformed input is never an error.
//
// Rules, in order:
//  1. numbers are returned unchanged (NaN counts as missing)
//  2. text loses all whitespace, currency symbols and thousands separators;
//     an empty remainder or a lone "-" is missing
//  3. the remainder is parsed as a float; parse failures are missing
func (c *TypeCoercer) Coerce(cell dataset.Cell) (float64, bool) {
	switch cell.Kind {
	case dataset.CellNumber:
		if math.IsNaN(cell.Num) {
			return 0, false
		}
		return cell.Num, true
	case dataset.CellText:
		return c.parseText(cell.Text)
	}
	return 0, false
}

// CoerceCell returns the normalized form of a cell in a numeric column
func (c *TypeCoercer) CoerceCell(cell dataset.Cell) dataset.Cell {
	if v, ok := c.Coerce(cell); ok {
		return dataset.Number(v)
	}
	return dataset.Missing()
}

// parseText applies the text rules of Coerce
func (c *TypeCoercer) parseText(raw string) (float64, bool) {
	cleanVal := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	for _, symbol := range c.config.CurrencySymbols {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	if c.config.ThousandsSeparator != "" {
		cleanVal = strings.ReplaceAll(cleanVal, c.config.ThousandsSeparator, "")
	}

	if cleanVal == "" || cleanVal == "-" {
		return 0, false
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil {
		// Out-of-range literals still parse to ±Inf, which is a number
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return val, true
		}
		return 0, false
	}
	if math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// AnalyzeTypeDistribution counts how many non-empty cells of a sample coerce
// to numbers. Empty cells count toward neither total.
func (c *TypeCoercer) AnalyzeTypeDistribution(values []dataset.Cell) TypeAnalysis {
	analysis := TypeAnalysis{
		TotalCount: len(values),
	}

	for _, val := range values {
		if val.IsEmpty() {
			continue
		}
		analysis.NonEmptyCount++
		if _, ok := c.Coerce(val); ok {
			analysis.NumericCount++
		}
	}

	if analysis.NonEmptyCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.NonEmptyCount)
	}

	return analysis
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount    int     `json:"total_count"`
	NonEmptyCount int     `json:"non_empty_count"`
	NumericCount  int     `json:"numeric_count"`
	NumericRatio  float64 `json:"numeric_ratio"`
}
