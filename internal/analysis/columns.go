// Package analysis builds grouped statistics, clusters, quadrants and
// box-plot views on top of the statistical engine.
package analysis

import (
	"sort"

	"tabstat/domain/core"
	"tabstat/domain/dataset"
)

// MissingGroupKey is the group of rows whose grouping cell is empty or missing
const MissingGroupKey = "(missing)"

// RequireColumns fails with core.ErrColumnNotFound for the first column
// outside the header
func RequireColumns(ds *dataset.Dataset, columns ...string) error {
	for _, col := range columns {
		if !ds.HasColumn(col) {
			return core.NewColumnNotFoundError(col)
		}
	}
	return nil
}

// RequireNumeric checks that every column exists and was classified numeric
func RequireNumeric(ds *dataset.Dataset, columns ...string) error {
	if err := RequireColumns(ds, columns...); err != nil {
		return err
	}
	for _, col := range columns {
		if kind, _ := ds.Kind(col); kind != dataset.KindNumeric {
			return core.NewNotNumericError(col)
		}
	}
	return nil
}

// GroupKey is the partition key of a grouping cell
func GroupKey(cell dataset.Cell) string {
	if cell.IsEmpty() || cell.IsMissing() {
		return MissingGroupKey
	}
	return cell.String()
}

// Partition splits rows by the string form of their groupBy cell. Keys are
// returned sorted; rows keep their dataset order within a group.
func Partition(ds *dataset.Dataset, groupBy string) ([]string, map[string][]dataset.Row) {
	groups := make(map[string][]dataset.Row)
	keys := make([]string, 0)
	for _, row := range ds.Rows {
		key := GroupKey(row.Get(groupBy))
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], row)
	}
	sort.Strings(keys)
	return keys, groups
}

// finiteValues collects the finite numbers of a column in row order
func finiteValues(rows []dataset.Row, column string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Get(column).Float(); ok {
			values = append(values, v)
		}
	}
	return values
}
