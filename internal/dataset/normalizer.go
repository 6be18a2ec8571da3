// Package dataset turns raw rows into classified, normalized datasets and
// keeps them for the length of an analysis session.
package dataset

import (
	"time"

	"tabstat/adapters/datareadiness"
	"tabstat/adapters/datareadiness/coercer"
	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/internal"
)

// Normalizer rewrites numeric columns to Number or Missing cells
type Normalizer struct {
	coercer *coercer.TypeCoercer
}

// NewNormalizer creates a normalizer backed by the given coercer
func NewNormalizer(typeCoercer *coercer.TypeCoercer) *Normalizer {
	if typeCoercer == nil {
		typeCoercer = coercer.NewDefaultTypeCoercer()
	}
	return &Normalizer{coercer: typeCoercer}
}

// Normalize returns a new dataset in which every numeric column holds only
// Number or Missing cells. Categorical columns are copied unchanged and the
// input is not modified. Running it on its own output is a no-op.
func (n *Normalizer) Normalize(raw *dataset.Dataset, kinds map[string]dataset.ColumnKind) *dataset.Dataset {
	numeric := make([]string, 0, len(raw.Header))
	for _, col := range raw.Header {
		if kinds[col] == dataset.KindNumeric {
			numeric = append(numeric, col)
		}
	}

	rows := make([]dataset.Row, len(raw.Rows))
	for i, row := range raw.Rows {
		clean := make(dataset.Row, len(raw.Header))
		for _, col := range raw.Header {
			clean[col] = row.Get(col)
		}
		for _, col := range numeric {
			clean[col] = n.coercer.CoerceCell(clean[col])
		}
		rows[i] = clean
	}

	frozen := make(map[string]dataset.ColumnKind, len(raw.Header))
	for _, col := range raw.Header {
		frozen[col] = kinds[col]
		if frozen[col] == "" {
			frozen[col] = dataset.KindCategorical
		}
	}

	header := make([]string, len(raw.Header))
	copy(header, raw.Header)

	return &dataset.Dataset{
		ID:        raw.ID,
		Name:      raw.Name,
		Source:    raw.Source,
		Header:    header,
		Rows:      rows,
		Kinds:     frozen,
		CreatedAt: raw.CreatedAt,
	}
}

// Selection is the column choice an analysis starts from
type Selection struct {
	GroupBy   string   `json:"group_by,omitempty"`
	Variables []string `json:"variables"`
}

// IngestResult is everything produced by one ingestion
type IngestResult struct {
	Dataset            *dataset.Dataset              `json:"dataset"`
	Header             []string                      `json:"header"`
	Kinds              map[string]dataset.ColumnKind `json:"kinds"`
	NumericHeaders     []string                      `json:"numeric_headers"`
	CategoricalHeaders []string                      `json:"categorical_headers"`
	Profiles           []datareadiness.ColumnProfile `json:"profiles"`
	DefaultSelection   Selection                     `json:"default_selection"`
}

// Ingestor classifies and normalizes raw rows in one pass
type Ingestor struct {
	profiler   *datareadiness.ProfilerAdapter
	normalizer *Normalizer
	logger     *internal.Logger
}

// NewIngestor wires a classifier and a normalizer sharing one coercer
func NewIngestor(config datareadiness.ProfilingConfig, logger *internal.Logger) *Ingestor {
	typeCoercer := coercer.NewDefaultTypeCoercer()
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Ingestor{
		profiler:   datareadiness.NewProfilerAdapter(typeCoercer, config),
		normalizer: NewNormalizer(typeCoercer),
		logger:     logger.WithComponent("Ingestor"),
	}
}

// Ingest builds a dataset from raw rows, freezes the column kinds and
// normalizes numeric columns. An empty header or zero rows fail with
// core.ErrEmptyDataset.
func (i *Ingestor) Ingest(name, source string, header []string, rows []dataset.Row) (*IngestResult, error) {
	if len(header) == 0 || len(rows) == 0 {
		return nil, core.ErrEmptyDataset
	}

	raw := dataset.New(header, rows)
	raw.ID = core.NewID()
	raw.Name = name
	raw.Source = source
	raw.CreatedAt = time.Now().UTC()

	profiles, kinds := i.profiler.ClassifyColumns(raw)
	ds := i.normalizer.Normalize(raw, kinds)

	result := &IngestResult{
		Dataset:            ds,
		Header:             ds.Header,
		Kinds:              ds.Kinds,
		NumericHeaders:     ds.NumericHeaders(),
		CategoricalHeaders: ds.CategoricalHeaders(),
		Profiles:           profiles,
	}
	result.DefaultSelection = defaultSelection(result.NumericHeaders, result.CategoricalHeaders)

	i.logger.Info("ingested %s: %d rows, %d numeric, %d categorical columns",
		ds.ID, ds.Len(), len(result.NumericHeaders), len(result.CategoricalHeaders))

	return result, nil
}

func defaultSelection(numeric, categorical []string) Selection {
	sel := Selection{Variables: []string{}}
	if len(categorical) > 0 {
		sel.GroupBy = categorical[0]
	}
	if len(numeric) > 0 {
		sel.Variables = []string{numeric[0]}
	}
	return sel
}
