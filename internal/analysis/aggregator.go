package analysis

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"tabstat/domain/dataset"
	"tabstat/domain/stats/brief"
	enginebrief "tabstat/internal/analysis/brief"
)

// GroupAggregator computes statistics per variable, optionally per group
type GroupAggregator struct {
	engine         *enginebrief.StatisticalEngine
	maxParallelism int
}

// NewGroupAggregator creates an aggregator. maxParallelism bounds the number
// of variables computed at once; values below 1 mean one at a time.
func NewGroupAggregator(engine *enginebrief.StatisticalEngine, maxParallelism int) *GroupAggregator {
	if engine == nil {
		engine = enginebrief.NewEngine()
	}
	if maxParallelism < 1 {
		maxParallelism = 1
	}
	return &GroupAggregator{engine: engine, maxParallelism: maxParallelism}
}

// partition is one slice of rows sharing a group key. The ungrouped request
// has a single partition with an empty key.
type partition struct {
	key  string
	rows []dataset.Row
}

// Aggregate returns one record per (group, variable) with at least one
// finite value. Ungrouped results follow the selection order; grouped
// results are sorted by group then variable.
func (a *GroupAggregator) Aggregate(ctx context.Context, ds *dataset.Dataset, variables []string, groupBy string) ([]brief.VariableStats, error) {
	parts, err := a.prepare(ds, variables, groupBy)
	if err != nil {
		return nil, err
	}

	perVariable := make([][]brief.VariableStats, len(variables))
	err = a.forEachVariable(ctx, variables, func(i int, variable string) {
		records := make([]brief.VariableStats, 0, len(parts))
		for _, p := range parts {
			s, ok := a.engine.ComputeStats(finiteValues(p.rows, variable))
			if !ok {
				continue
			}
			records = append(records, brief.VariableStats{Group: p.key, Variable: variable, Stats: s})
		}
		perVariable[i] = records
	})
	if err != nil {
		return nil, err
	}

	out := make([]brief.VariableStats, 0, len(variables)*len(parts))
	for _, records := range perVariable {
		out = append(out, records...)
	}
	if groupBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Group != out[j].Group {
				return out[i].Group < out[j].Group
			}
			return out[i].Variable < out[j].Variable
		})
	}
	return out, nil
}

// Histograms bins every (group, variable) with at least one finite value,
// ordered like Aggregate
func (a *GroupAggregator) Histograms(ctx context.Context, ds *dataset.Dataset, variables []string, groupBy string) ([]brief.Histogram, error) {
	parts, err := a.prepare(ds, variables, groupBy)
	if err != nil {
		return nil, err
	}

	perVariable := make([][]brief.Histogram, len(variables))
	err = a.forEachVariable(ctx, variables, func(i int, variable string) {
		hists := make([]brief.Histogram, 0, len(parts))
		for _, p := range parts {
			values := finiteValues(p.rows, variable)
			bins, ok := a.engine.Histogram(values)
			if !ok {
				continue
			}
			hists = append(hists, brief.Histogram{Group: p.key, Variable: variable, N: len(values), Bins: bins})
		}
		perVariable[i] = hists
	})
	if err != nil {
		return nil, err
	}

	out := make([]brief.Histogram, 0, len(variables)*len(parts))
	for _, hists := range perVariable {
		out = append(out, hists...)
	}
	if groupBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Group != out[j].Group {
				return out[i].Group < out[j].Group
			}
			return out[i].Variable < out[j].Variable
		})
	}
	return out, nil
}

// prepare validates the selection and partitions the rows
func (a *GroupAggregator) prepare(ds *dataset.Dataset, variables []string, groupBy string) ([]partition, error) {
	if err := RequireNumeric(ds, variables...); err != nil {
		return nil, err
	}
	if groupBy == "" {
		return []partition{{rows: ds.Rows}}, nil
	}
	if err := RequireColumns(ds, groupBy); err != nil {
		return nil, err
	}

	keys, groups := Partition(ds, groupBy)
	parts := make([]partition, len(keys))
	for i, key := range keys {
		parts[i] = partition{key: key, rows: groups[key]}
	}
	return parts, nil
}

// forEachVariable runs fn once per variable on a bounded errgroup. fn writes
// only to its own index, so no locking is needed.
func (a *GroupAggregator) forEachVariable(ctx context.Context, variables []string, fn func(i int, variable string)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxParallelism)

	for i, variable := range variables {
		i, variable := i, variable
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i, variable)
			return nil
		})
	}
	return g.Wait()
}
