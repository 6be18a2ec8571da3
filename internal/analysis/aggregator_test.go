package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabstat/domain/core"
	"tabstat/domain/dataset"
)

func groupedDataset() *dataset.Dataset {
	return normalizedDataset(
		[]string{"region", "x", "y"},
		map[string]dataset.ColumnKind{"region": dataset.KindCategorical, "x": dataset.KindNumeric, "y": dataset.KindNumeric},
		[]dataset.Row{
			{"region": txt("B"), "x": num(10), "y": num(1)},
			{"region": txt("A"), "x": num(1), "y": dataset.Missing()},
			{"region": txt("A"), "x": num(2), "y": num(2)},
			{"region": dataset.Empty(), "x": num(5), "y": dataset.Missing()},
			{"region": txt("B"), "x": num(20), "y": num(3)},
			{"region": txt("A"), "x": num(3), "y": num(4)},
		},
	)
}

func TestAggregateUngroupedKeepsSelectionOrder(t *testing.T) {
	agg := NewGroupAggregator(nil, 2)

	records, err := agg.Aggregate(context.Background(), groupedDataset(), []string{"y", "x"}, "")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "y", records[0].Variable)
	assert.Equal(t, 4, records[0].Stats.N)
	assert.Equal(t, "x", records[1].Variable)
	assert.Equal(t, 6, records[1].Stats.N)
	assert.InDelta(t, 41.0/6.0, records[1].Stats.Mean, 1e-9)
	assert.Empty(t, records[0].Group)
}

func TestAggregateGrouped(t *testing.T) {
	agg := NewGroupAggregator(nil, 4)

	records, err := agg.Aggregate(context.Background(), groupedDataset(), []string{"y", "x"}, "region")
	require.NoError(t, err)

	var labels []string
	for _, r := range records {
		labels = append(labels, r.Label())
	}
	// the (missing) group has no finite y, so only its x record remains
	assert.Equal(t, []string{"x ((missing))", "x (A)", "y (A)", "x (B)", "y (B)"}, labels)

	a := records[1]
	assert.Equal(t, "A", a.Group)
	assert.InDelta(t, 2, a.Stats.Mean, 1e-9)
	b := records[3]
	assert.InDelta(t, 15, b.Stats.Mean, 1e-9)
	assert.Equal(t, 2, b.Stats.N)
}

func TestAggregateParallelismDoesNotChangeResults(t *testing.T) {
	ds := groupedDataset()
	variables := []string{"x", "y", "x"}

	serial, err := NewGroupAggregator(nil, 1).Aggregate(context.Background(), ds, variables, "region")
	require.NoError(t, err)
	parallel, err := NewGroupAggregator(nil, 8).Aggregate(context.Background(), ds, variables, "region")
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
}

func TestAggregatePreconditions(t *testing.T) {
	agg := NewGroupAggregator(nil, 1)
	ds := groupedDataset()
	ctx := context.Background()

	_, err := agg.Aggregate(ctx, ds, []string{"nope"}, "")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	_, err = agg.Aggregate(ctx, ds, []string{"region"}, "")
	assert.ErrorIs(t, err, core.ErrNotNumeric)

	_, err = agg.Aggregate(ctx, ds, []string{"x"}, "nope")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestAggregateSkipsEmptySelections(t *testing.T) {
	ds := normalizedDataset(
		[]string{"v"},
		map[string]dataset.ColumnKind{"v": dataset.KindNumeric},
		[]dataset.Row{{"v": dataset.Missing()}, {"v": dataset.Missing()}},
	)

	records, err := NewGroupAggregator(nil, 1).Aggregate(context.Background(), ds, []string{"v"}, "")
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = NewGroupAggregator(nil, 1).Aggregate(context.Background(), ds, nil, "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAggregateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGroupAggregator(nil, 1).Aggregate(ctx, groupedDataset(), []string{"x"}, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHistogramsGrouped(t *testing.T) {
	hists, err := NewGroupAggregator(nil, 2).Histograms(context.Background(), groupedDataset(), []string{"x"}, "region")
	require.NoError(t, err)
	require.Len(t, hists, 3)

	assert.Equal(t, MissingGroupKey, hists[0].Group)
	assert.Equal(t, "A", hists[1].Group)
	assert.Equal(t, 3, hists[1].N)

	total := 0
	for _, b := range hists[1].Bins {
		total += b.Count
	}
	assert.Equal(t, 3, total)
}

func TestPartitionNumericGroupValues(t *testing.T) {
	ds := normalizedDataset(
		[]string{"year", "v"},
		map[string]dataset.ColumnKind{"year": dataset.KindNumeric, "v": dataset.KindNumeric},
		[]dataset.Row{
			{"year": num(2024), "v": num(1)},
			{"year": dataset.Missing(), "v": num(2)},
			{"year": num(2023), "v": num(3)},
		},
	)

	keys, groups := Partition(ds, "year")
	assert.Equal(t, []string{"(missing)", "2023", "2024"}, keys)
	assert.Len(t, groups["2024"], 1)
}
