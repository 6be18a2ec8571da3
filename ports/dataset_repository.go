package ports

import (
	"context"

	"tabstat/domain/core"
	"tabstat/domain/dataset"
)

// DatasetRepository defines the interface for session dataset storage.
// Stored datasets are immutable; replacing one is a new Put.
type DatasetRepository interface {
	Put(ctx context.Context, ds *dataset.Dataset) error
	GetByID(ctx context.Context, id core.ID) (*dataset.Dataset, error)
	List(ctx context.Context) ([]*dataset.Dataset, error)
	Delete(ctx context.Context, id core.ID) error
}
