// Package report renders analysis results as Markdown and HTML.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"tabstat/domain/dataset"
	"tabstat/domain/spatial"
	"tabstat/domain/stats/brief"
)

// Input is everything a report may show. Cluster and Quadrants are optional.
type Input struct {
	Dataset   *dataset.Dataset
	GroupBy   string
	Stats     []brief.VariableStats
	Cluster   *spatial.ClusterResult
	Quadrants *spatial.QuadrantResult
}

// Markdown builds the report. Numbers are rounded to brief.OutputPrecision
// decimals and not-computable metrics print as "n/a".
func Markdown(in Input) string {
	var b strings.Builder

	name := in.Dataset.Name
	if name == "" {
		name = in.Dataset.ID.String()
	}
	fmt.Fprintf(&b, "# Statistical summary: %s\n\n", escape(name))
	fmt.Fprintf(&b, "%d rows, %d columns.\n\n", in.Dataset.Len(), len(in.Dataset.Header))

	writeSchema(&b, in.Dataset)
	writeStats(&b, in.Stats, in.GroupBy)
	if in.Cluster != nil {
		writeCluster(&b, in.Cluster.Rounded())
	}
	if in.Quadrants != nil {
		writeQuadrants(&b, in.Quadrants.Rounded())
	}
	return b.String()
}

func writeSchema(b *strings.Builder, ds *dataset.Dataset) {
	b.WriteString("## Columns\n\n| Column | Kind |\n|---|---|\n")
	for _, col := range ds.Header {
		kind, _ := ds.Kind(col)
		fmt.Fprintf(b, "| %s | %s |\n", escape(col), kind)
	}
	b.WriteString("\n")
}

func writeStats(b *strings.Builder, records []brief.VariableStats, groupBy string) {
	b.WriteString("## Descriptive statistics\n\n")
	if groupBy != "" {
		fmt.Fprintf(b, "Grouped by **%s**.\n\n", escape(groupBy))
	}
	if len(records) == 0 {
		b.WriteString("No values to summarize.\n\n")
		return
	}

	b.WriteString("| Variable | N | Mean | Median | Mode | Std Dev | Variance | Skewness | Kurtosis | Min | Q1 | Q3 | Max | IQR | Std Error | CI 95% |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, r := range records {
		s := r.Stats.Rounded()
		fmt.Fprintf(b, "| %s | %d | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			escape(r.Label()), s.N,
			num(s.Mean), num(s.Median), num(s.Mode), num(s.StdDev), num(s.Variance),
			s.Skewness, s.Kurtosis,
			num(s.Min), num(s.Q1), num(s.Q3), num(s.Max), num(s.IQR), num(s.StdError), num(s.CI95))
	}
	b.WriteString("\n")
}

func writeCluster(b *strings.Builder, result spatial.ClusterResult) {
	fmt.Fprintf(b, "## Clusters: %s vs %s (k = %d)\n\n", escape(result.XColumn), escape(result.YColumn), result.K)
	if len(result.Clusters) == 0 {
		b.WriteString("No points could be clustered.\n\n")
		return
	}
	if result.Converged {
		fmt.Fprintf(b, "Converged after %d iterations.\n\n", result.Iterations)
	} else {
		fmt.Fprintf(b, "Stopped after %d iterations without converging.\n\n", result.Iterations)
	}
	b.WriteString("| Cluster | Size | Centroid X | Centroid Y |\n|---:|---:|---:|---:|\n")
	for _, c := range result.Clusters {
		fmt.Fprintf(b, "| %d | %d | %s | %s |\n", c.ID+1, c.Size, num(c.Centroid.X), num(c.Centroid.Y))
	}
	b.WriteString("\n")
}

func writeQuadrants(b *strings.Builder, result spatial.QuadrantResult) {
	fmt.Fprintf(b, "## Quadrants: %s vs %s\n\n", escape(result.XColumn), escape(result.YColumn))
	fmt.Fprintf(b, "Split at mean %s = %s and mean %s = %s.\n\n",
		escape(result.XColumn), result.XMean, escape(result.YColumn), result.YMean)
	b.WriteString("| Quadrant | Points |\n|---|---:|\n")
	for _, q := range spatial.Quadrants {
		fmt.Fprintf(b, "| %s | %d |\n", q.Description(), result.Counts[q])
	}
	b.WriteString("\n")
}

func num(v float64) string {
	return brief.Computable(v).String()
}

// escape keeps user text from breaking table cells, adding emphasis or
// injecting markup into the HTML rendering
func escape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;",
		"|", `\|`, "*", `\*`, "_", `\_`, "\n", " ",
	)
	return r.Replace(s)
}

// RenderHTML converts report Markdown into a complete HTML page. Raw HTML
// in the Markdown is dropped.
func RenderHTML(md, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
		Title: title,
	})
	return markdown.Render(doc, renderer)
}
