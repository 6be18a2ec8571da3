package analysis

import (
	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/spatial"
	"tabstat/domain/stats/brief"
	enginebrief "tabstat/internal/analysis/brief"
)

// QuadrantClassifier splits points by the means of their coordinates
type QuadrantClassifier struct {
	engine *enginebrief.StatisticalEngine
}

// NewQuadrantClassifier creates a classifier backed by engine
func NewQuadrantClassifier(engine *enginebrief.StatisticalEngine) *QuadrantClassifier {
	if engine == nil {
		engine = enginebrief.NewEngine()
	}
	return &QuadrantClassifier{engine: engine}
}

// Classify extracts the (x, y) points of ds and labels each one. The dataset
// must have at least two numeric columns, and x and y must be among them.
func (q *QuadrantClassifier) Classify(ds *dataset.Dataset, x, y string) (spatial.QuadrantResult, error) {
	if len(ds.NumericHeaders()) < 2 {
		return spatial.QuadrantResult{}, core.ErrInsufficientNumericColumns
	}
	if err := RequireNumeric(ds, x, y); err != nil {
		return spatial.QuadrantResult{}, err
	}

	result := q.ClassifyPoints(ExtractPoints(ds, x, y))
	result.XColumn = x
	result.YColumn = y
	return result, nil
}

// ClassifyPoints labels points against the unrounded means of their x and y
// values. A coordinate equal to its mean counts as High.
func (q *QuadrantClassifier) ClassifyPoints(points []spatial.Point) spatial.QuadrantResult {
	result := spatial.QuadrantResult{
		Points: make([]spatial.QuadrantPoint, 0, len(points)),
		Counts: make(map[spatial.Quadrant]int, len(spatial.Quadrants)),
	}
	for _, quadrant := range spatial.Quadrants {
		result.Counts[quadrant] = 0
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	xMean, ok := q.engine.Mean(xs)
	if !ok {
		result.XMean = brief.NotComputable()
		result.YMean = brief.NotComputable()
		return result
	}
	yMean, _ := q.engine.Mean(ys)
	result.XMean = brief.Computable(xMean)
	result.YMean = brief.Computable(yMean)

	for _, p := range points {
		label := Label(p.X, p.Y, xMean, yMean)
		result.Points = append(result.Points, spatial.QuadrantPoint{Point: p, Quadrant: label})
		result.Counts[label]++
	}
	return result
}

// Label returns the quadrant of (x, y) relative to the thresholds
func Label(x, y, xMean, yMean float64) spatial.Quadrant {
	switch {
	case x >= xMean && y >= yMean:
		return spatial.QuadrantHighHigh
	case x < xMean && y >= yMean:
		return spatial.QuadrantLowHigh
	case x < xMean && y < yMean:
		return spatial.QuadrantLowLow
	default:
		return spatial.QuadrantHighLow
	}
}
