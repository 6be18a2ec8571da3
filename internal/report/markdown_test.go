package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tabstat/domain/dataset"
	"tabstat/domain/spatial"
	"tabstat/domain/stats/brief"
)

func reportDataset() *dataset.Dataset {
	ds := dataset.New([]string{"region", "sales"}, []dataset.Row{
		{"region": dataset.Text("North"), "sales": dataset.Number(1)},
	})
	ds.Name = "q3_sales"
	ds.Kinds = map[string]dataset.ColumnKind{"region": dataset.KindCategorical, "sales": dataset.KindNumeric}
	return ds
}

func TestMarkdownStatsTable(t *testing.T) {
	md := Markdown(Input{
		Dataset: reportDataset(),
		GroupBy: "region",
		Stats: []brief.VariableStats{{
			Group:    "North",
			Variable: "sales",
			Stats: brief.DescriptiveStats{
				N: 2, Mean: 1.234567, Median: 1.5,
				Skewness: brief.NotComputable(), Kurtosis: brief.NotComputable(),
			},
		}},
	})

	assert.Contains(t, md, "# Statistical summary: q3\\_sales")
	assert.Contains(t, md, "| region | categorical |")
	assert.Contains(t, md, "| sales | numeric |")
	assert.Contains(t, md, "Grouped by **region**")
	assert.Contains(t, md, "| sales (North) | 2 | 1.2346 | 1.5 |")
	assert.Contains(t, md, "n/a | n/a")
	assert.NotContains(t, md, "## Clusters")
}

func TestMarkdownEmptyStats(t *testing.T) {
	md := Markdown(Input{Dataset: reportDataset()})
	assert.Contains(t, md, "No values to summarize.")
}

func TestMarkdownClusterAndQuadrants(t *testing.T) {
	md := Markdown(Input{
		Dataset: reportDataset(),
		Cluster: &spatial.ClusterResult{
			XColumn: "x", YColumn: "y", K: 2, Iterations: 3, Converged: true,
			Clusters: []spatial.ClusterSummary{
				{ID: 0, Size: 4, Centroid: spatial.Centroid{X: 1.00001, Y: 2}},
				{ID: 1, Size: 1, Centroid: spatial.Centroid{X: 9, Y: 9}},
			},
		},
		Quadrants: &spatial.QuadrantResult{
			XColumn: "x", YColumn: "y",
			XMean: brief.Computable(2.5), YMean: brief.Computable(3),
			Counts: map[spatial.Quadrant]int{spatial.QuadrantHighHigh: 2, spatial.QuadrantLowLow: 3},
		},
	})

	assert.Contains(t, md, "Converged after 3 iterations.")
	assert.Contains(t, md, "| 1 | 4 | 1 | 2 |")
	assert.Contains(t, md, "Split at mean x = 2.5 and mean y = 3.")
	assert.Contains(t, md, "| Q1 (High-High) | 2 |")
	assert.Contains(t, md, "| Q2 (Low-High) | 0 |")
	assert.Contains(t, md, "| Q3 (Low-Low) | 3 |")
}

func TestRenderHTML(t *testing.T) {
	md := Markdown(Input{Dataset: reportDataset()})
	out := string(RenderHTML(md, "Report"))

	assert.True(t, strings.Contains(out, "<html"), "complete page expected")
	assert.Contains(t, out, "<title>Report</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>region</td>")
}

func TestEscapeMarkup(t *testing.T) {
	assert.Equal(t, `a &lt;b&gt; &amp; c \| d`, escape("a <b> & c | d"))
}

func TestRenderHTMLDropsUserMarkup(t *testing.T) {
	col := `<img src=x onerror=alert(1)>`
	ds := dataset.New([]string{col}, []dataset.Row{{col: dataset.Text("v")}})
	ds.Name = "<script>alert(1)</script>"
	ds.Kinds = map[string]dataset.ColumnKind{col: dataset.KindCategorical}

	out := string(RenderHTML(Markdown(Input{Dataset: ds}), "Report"))
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<script>")

	raw := string(RenderHTML("inline <script>alert(1)</script> html\n\n<div>block</div>\n", "Report"))
	assert.NotContains(t, raw, "<script>")
	assert.NotContains(t, raw, "<div>")
}
