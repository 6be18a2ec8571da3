package brief

import (
	"math"
	"sort"

	"tabstat/domain/stats/brief"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// z-score of the two-sided 95% normal interval
const ci95Z = 1.96

// StatisticalEngine computes descriptive statistics and histograms over
// plain float slices. It is stateless and safe for concurrent use.
type StatisticalEngine struct{}

// NewEngine creates a new statistical engine
func NewEngine() *StatisticalEngine {
	return &StatisticalEngine{}
}

// ComputeStats summarizes values without filtering them. The second result
// is false only for empty input. Results are full precision; callers round
// with DescriptiveStats.Rounded at the output boundary.
func (e *StatisticalEngine) ComputeStats(values []float64) (brief.DescriptiveStats, bool) {
	n := len(values)
	if n == 0 {
		return brief.DescriptiveStats{}, false
	}

	data := stats.Float64Data(values)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	variance, _ := stats.PopulationVariance(data)
	stdDev, _ := stats.StandardDeviationPopulation(data)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := quantileSorted(sorted, 0.25)
	q3 := quantileSorted(sorted, 0.75)

	stdError := stdDev / math.Sqrt(float64(n))

	return brief.DescriptiveStats{
		N:        n,
		Mean:     mean,
		Median:   median,
		Mode:     modeOf(sorted, mean),
		StdDev:   stdDev,
		Variance: variance,
		Skewness: skewness(values),
		Kurtosis: kurtosis(values),
		Min:      min,
		Max:      max,
		Range:    max - min,
		Q1:       q1,
		Q3:       q3,
		IQR:      q3 - q1,
		StdError: stdError,
		CI95:     ci95Z * stdError,
	}, true
}

// Mean returns the arithmetic mean, or false for empty input
func (e *StatisticalEngine) Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0, false
	}
	return mean, true
}

// quantileSorted interpolates linearly between order statistics at rank
// p*(n-1) (Hyndman-Fan type 7). sorted must be ascending and non-empty.
func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// modeOf returns the most frequent value of an ascending slice, the smallest
// one on ties. NaN makes frequencies undefined, so the mean is used instead.
func modeOf(sorted []float64, mean float64) float64 {
	for _, v := range sorted {
		if math.IsNaN(v) {
			return mean
		}
	}

	mode := sorted[0]
	best, run := 0, 0
	for i, v := range sorted {
		if i > 0 && v == sorted[i-1] {
			run++
		} else {
			run = 1
		}
		// strict comparison keeps the earliest, i.e. smallest, value on ties
		if run > best {
			best = run
			mode = v
		}
	}
	return mode
}

// skewness is the adjusted Fisher-Pearson coefficient G1
func skewness(values []float64) brief.Metric {
	if len(values) < 3 {
		return brief.NotComputable()
	}
	return brief.Computable(stat.Skew(values, nil))
}

// kurtosis is the sample excess kurtosis G2
func kurtosis(values []float64) brief.Metric {
	if len(values) < 4 {
		return brief.NotComputable()
	}
	return brief.Computable(stat.ExKurtosis(values, nil))
}

// Histogram bins values into ceil(2*n^(1/3)) equal-width bins over
// [min, max] (Rice rule). Every bin is half-open except the last, which is
// closed. A zero range yields one bin holding every value. Empty input has
// no histogram.
func (e *StatisticalEngine) Histogram(values []float64) ([]brief.Bin, bool) {
	n := len(values)
	if n == 0 {
		return nil, false
	}

	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	width := max - min
	if width == 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return []brief.Bin{{Start: min, End: max, Count: n}}, true
	}

	binCount := int(math.Ceil(2 * math.Cbrt(float64(n))))
	binWidth := width / float64(binCount)

	bins := make([]brief.Bin, binCount)
	for i := range bins {
		bins[i].Start = min + float64(i)*binWidth
		bins[i].End = min + float64(i+1)*binWidth
	}
	bins[binCount-1].End = max

	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		idx := int(math.Floor((v - min) / binWidth))
		if idx >= binCount {
			idx = binCount - 1
		}
		if idx < 0 {
			continue
		}
		bins[idx].Count++
	}

	return bins, true
}
