package brief

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"
)

// OutputPrecision is the number of decimals kept at the output boundary
const OutputPrecision = 4

// Metric is a statistic that may be undefined for the given sample.
// An invalid Metric is "not computable" and is never a stand-in zero.
type Metric struct {
	Value float64
	Valid bool
}

// Computable wraps a defined value. Non-finite values are not computable.
func Computable(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{Value: v, Valid: true}
}

// NotComputable is the undefined metric
func NotComputable() Metric {
	return Metric{}
}

// Get returns the value and whether it is defined
func (m Metric) Get() (float64, bool) {
	return m.Value, m.Valid
}

// String formats the metric, using "n/a" when not computable
func (m Metric) String() string {
	if !m.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// Rounded returns the metric rounded to OutputPrecision decimals
func (m Metric) Rounded() Metric {
	if !m.Valid {
		return m
	}
	return Metric{Value: RoundOutput(m.Value), Valid: true}
}

// MarshalJSON encodes a not-computable metric as null
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Computable(v)
	return nil
}

// MarshalYAML encodes a not-computable metric as null
func (m Metric) MarshalYAML() (interface{}, error) {
	if !m.Valid {
		return nil, nil
	}
	return m.Value, nil
}

// DescriptiveStats is the full summary of a finite numeric sequence.
// INVARIANTS:
// - N >= 1 (an empty sequence has no DescriptiveStats at all)
// - Skewness is not computable when N < 3, Kurtosis when N < 4
// - Min <= Q1 <= Median <= Q3 <= Max
type DescriptiveStats struct {
	N        int     `json:"n" yaml:"n"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Median   float64 `json:"median" yaml:"median"`
	Mode     float64 `json:"mode" yaml:"mode"`
	StdDev   float64 `json:"std_dev" yaml:"std_dev"`
	Variance float64 `json:"variance" yaml:"variance"`
	Skewness Metric  `json:"skewness" yaml:"skewness"`
	Kurtosis Metric  `json:"kurtosis" yaml:"kurtosis"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Range    float64 `json:"range" yaml:"range"`
	Q1       float64 `json:"q1" yaml:"q1"`
	Q3       float64 `json:"q3" yaml:"q3"`
	IQR      float64 `json:"iqr" yaml:"iqr"`
	StdError float64 `json:"std_error" yaml:"std_error"`
	CI95     float64 `json:"ci95" yaml:"ci95"`
}

// Rounded returns a copy with every float rounded to OutputPrecision
// decimals. Computation always happens on the unrounded record.
func (s DescriptiveStats) Rounded() DescriptiveStats {
	r := s
	for _, f := range []*float64{
		&r.Mean, &r.Median, &r.Mode, &r.StdDev, &r.Variance,
		&r.Min, &r.Max, &r.Range, &r.Q1, &r.Q3, &r.IQR,
		&r.StdError, &r.CI95,
	} {
		*f = RoundOutput(*f)
	}
	r.Skewness = r.Skewness.Rounded()
	r.Kurtosis = r.Kurtosis.Rounded()
	return r
}

// RoundOutput rounds v to OutputPrecision decimals
func RoundOutput(v float64) float64 {
	rounded, err := stats.Round(v, OutputPrecision)
	if err != nil {
		return v
	}
	return rounded
}

// VariableStats is one row of a stats request result.
// Group is empty for ungrouped requests.
type VariableStats struct {
	Group    string           `json:"group,omitempty" yaml:"group,omitempty"`
	Variable string           `json:"variable" yaml:"variable"`
	Stats    DescriptiveStats `json:"stats" yaml:"stats"`
}

// Label returns "variable" or "variable (group)"
func (v VariableStats) Label() string {
	if v.Group == "" {
		return v.Variable
	}
	return v.Variable + " (" + v.Group + ")"
}

// Bin is one equal-width histogram bucket
type Bin struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Count int     `json:"count" yaml:"count"`
}

// Histogram is the binned distribution of one variable
type Histogram struct {
	Group    string `json:"group,omitempty" yaml:"group,omitempty"`
	Variable string `json:"variable" yaml:"variable"`
	N        int    `json:"n" yaml:"n"`
	Bins     []Bin  `json:"bins" yaml:"bins"`
}
