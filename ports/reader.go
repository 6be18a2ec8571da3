package ports

import (
	"context"

	"tabstat/domain/dataset"
)

// RowReader produces raw ingestion input: an ordered header and rows whose
// cells are Number, Text or Empty
type RowReader interface {
	ReadRows(ctx context.Context) (header []string, rows []dataset.Row, err error)
}
