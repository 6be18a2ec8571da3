package analysis

import (
	"tabstat/domain/dataset"
	"tabstat/domain/spatial"
)

// ExtractPoints pairs two columns into points. Only rows where both cells
// are finite numbers are kept, in row order.
func ExtractPoints(ds *dataset.Dataset, x, y string) []spatial.Point {
	points := make([]spatial.Point, 0, len(ds.Rows))
	for i, row := range ds.Rows {
		xv, ok := row.Get(x).Float()
		if !ok {
			continue
		}
		yv, ok := row.Get(y).Float()
		if !ok {
			continue
		}
		points = append(points, spatial.Point{X: xv, Y: yv, RowIndex: i, Payload: row})
	}
	return points
}
