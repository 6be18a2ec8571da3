package datareadiness

import (
	"tabstat/adapters/datareadiness/coercer"
	"tabstat/domain/dataset"
)

// ProfilingConfig controls column classification
type ProfilingConfig struct {
	SampleSize       int     `json:"sample_size" mapstructure:"sample_size"`
	NumericThreshold float64 `json:"numeric_threshold" mapstructure:"numeric_threshold"`
}

// DefaultProfilingConfig samples 100 rows and requires more than 80% numeric values
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		SampleSize:       100,
		NumericThreshold: 0.8,
	}
}

// ColumnProfile records how a column was classified
type ColumnProfile struct {
	Column        string             `json:"column"`
	Kind          dataset.ColumnKind `json:"kind"`
	SampledRows   int                `json:"sampled_rows"`
	NonEmptyCount int                `json:"non_empty_count"`
	NumericCount  int                `json:"numeric_count"`
	NumericRatio  float64            `json:"numeric_ratio"`
}

// ProfilerAdapter decides the kind of every column of a raw dataset
type ProfilerAdapter struct {
	coercer *coercer.TypeCoercer
	config  ProfilingConfig
}

// NewProfilerAdapter creates a new profiler adapter
func NewProfilerAdapter(typeCoercer *coercer.TypeCoercer, config ProfilingConfig) *ProfilerAdapter {
	if typeCoercer == nil {
		typeCoercer = coercer.NewDefaultTypeCoercer()
	}
	if config.SampleSize <= 0 {
		config.SampleSize = DefaultProfilingConfig().SampleSize
	}
	if config.NumericThreshold <= 0 || config.NumericThreshold > 1 {
		config.NumericThreshold = DefaultProfilingConfig().NumericThreshold
	}
	return &ProfilerAdapter{coercer: typeCoercer, config: config}
}

// ClassifyColumns profiles every header of ds in header order. The returned
// map has exactly one kind per header.
func (p *ProfilerAdapter) ClassifyColumns(ds *dataset.Dataset) ([]ColumnProfile, map[string]dataset.ColumnKind) {
	sampleSize := p.config.SampleSize
	if sampleSize > len(ds.Rows) {
		sampleSize = len(ds.Rows)
	}
	sample := ds.Rows[:sampleSize]

	profiles := make([]ColumnProfile, 0, len(ds.Header))
	kinds := make(map[string]dataset.ColumnKind, len(ds.Header))

	for _, column := range ds.Header {
		profile := p.profileColumn(column, sample)
		profiles = append(profiles, profile)
		kinds[column] = profile.Kind
	}

	return profiles, kinds
}

// profileColumn analyzes a single column across the sampled rows
func (p *ProfilerAdapter) profileColumn(column string, sample []dataset.Row) ColumnProfile {
	values := make([]dataset.Cell, len(sample))
	for i, row := range sample {
		values[i] = row.Get(column)
	}

	analysis := p.coercer.AnalyzeTypeDistribution(values)

	kind := dataset.KindCategorical
	if analysis.NonEmptyCount > 0 && analysis.NumericRatio > p.config.NumericThreshold {
		kind = dataset.KindNumeric
	}

	return ColumnProfile{
		Column:        column,
		Kind:          kind,
		SampledRows:   len(sample),
		NonEmptyCount: analysis.NonEmptyCount,
		NumericCount:  analysis.NumericCount,
		NumericRatio:  analysis.NumericRatio,
	}
}
