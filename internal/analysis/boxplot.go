package analysis

import (
	"math"
	"sort"

	"tabstat/domain/stats/brief"
)

// BoxPlot is the geometry of one box plot row. Positions are percentages
// of the [Min, Max] span.
type BoxPlot struct {
	Label       string  `json:"label" yaml:"label"`
	Group       string  `json:"group,omitempty" yaml:"group,omitempty"`
	Variable    string  `json:"variable" yaml:"variable"`
	Min         float64 `json:"min" yaml:"min"`
	Q1          float64 `json:"q1" yaml:"q1"`
	Median      float64 `json:"median" yaml:"median"`
	Q3          float64 `json:"q3" yaml:"q3"`
	Max         float64 `json:"max" yaml:"max"`
	Q1Pos       float64 `json:"q1_pos" yaml:"q1_pos"`
	MedianPos   float64 `json:"median_pos" yaml:"median_pos"`
	Q3Pos       float64 `json:"q3_pos" yaml:"q3_pos"`
	IQRWidthPct float64 `json:"iqr_width_pct" yaml:"iqr_width_pct"`
}

// NewBoxPlot derives box geometry from a stats record. A record whose
// range is zero cannot be drawn.
func NewBoxPlot(record brief.VariableStats) (BoxPlot, bool) {
	s := record.Stats
	span := s.Max - s.Min
	if span == 0 || math.IsNaN(span) {
		return BoxPlot{}, false
	}

	percent := func(v float64) float64 {
		return (v - s.Min) / span * 100
	}

	q1Pos := percent(s.Q1)
	q3Pos := percent(s.Q3)
	return BoxPlot{
		Label:       record.Label(),
		Group:       record.Group,
		Variable:    record.Variable,
		Min:         s.Min,
		Q1:          s.Q1,
		Median:      s.Median,
		Q3:          s.Q3,
		Max:         s.Max,
		Q1Pos:       q1Pos,
		MedianPos:   percent(s.Median),
		Q3Pos:       q3Pos,
		IQRWidthPct: q3Pos - q1Pos,
	}, true
}

// BoxPlots builds a row for every drawable record. Grouped rows are sorted
// by label; ungrouped rows keep the record order.
func BoxPlots(records []brief.VariableStats, grouped bool) []BoxPlot {
	plots := make([]BoxPlot, 0, len(records))
	for _, record := range records {
		if plot, ok := NewBoxPlot(record); ok {
			plots = append(plots, plot)
		}
	}
	if grouped {
		sort.SliceStable(plots, func(i, j int) bool {
			return plots[i].Label < plots[j].Label
		})
	}
	return plots
}

// Rounded returns a copy rounded for output
func (b BoxPlot) Rounded() BoxPlot {
	r := b
	for _, f := range []*float64{&r.Min, &r.Q1, &r.Median, &r.Q3, &r.Max, &r.Q1Pos, &r.MedianPos, &r.Q3Pos, &r.IQRWidthPct} {
		*f = brief.RoundOutput(*f)
	}
	return r
}
