package analysis

import (
	"tabstat/domain/dataset"
)

// normalizedDataset builds a classified dataset directly from typed cells
func normalizedDataset(header []string, kinds map[string]dataset.ColumnKind, rows []dataset.Row) *dataset.Dataset {
	ds := dataset.New(header, rows)
	ds.Kinds = kinds
	return ds
}

func num(v float64) dataset.Cell { return dataset.Number(v) }
func txt(s string) dataset.Cell  { return dataset.Text(s) }
