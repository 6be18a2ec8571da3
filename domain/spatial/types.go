// Package spatial holds the 2-D point views derived from a cleaned dataset:
// k-means cluster assignments and mean-split quadrants.
package spatial

import (
	"tabstat/domain/dataset"
	"tabstat/domain/stats/brief"
)

// Point is one (x, y) observation. RowIndex and Payload point back to the
// source row for display and never take part in computation.
type Point struct {
	X        float64     `json:"x" yaml:"x"`
	Y        float64     `json:"y" yaml:"y"`
	RowIndex int         `json:"row_index" yaml:"row_index"`
	Payload  dataset.Row `json:"payload,omitempty" yaml:"-"`
}

// ClusteredPoint is a point with its cluster id. Clustered is false when
// the request was degenerate (no points or k <= 0) and no id was assigned.
type ClusteredPoint struct {
	Point `yaml:",inline"`

	Cluster   int  `json:"cluster" yaml:"cluster"`
	Clustered bool `json:"clustered" yaml:"clustered"`
}

// Centroid is the mean position of a cluster
type Centroid struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// ClusterSummary describes one cluster of a k-means result
type ClusterSummary struct {
	ID       int      `json:"id" yaml:"id"`
	Size     int      `json:"size" yaml:"size"`
	Centroid Centroid `json:"centroid" yaml:"centroid"`
}

// ClusterResult is the output of one clustering request
type ClusterResult struct {
	XColumn    string           `json:"x_column,omitempty" yaml:"x_column,omitempty"`
	YColumn    string           `json:"y_column,omitempty" yaml:"y_column,omitempty"`
	K          int              `json:"k" yaml:"k"`
	Points     []ClusteredPoint `json:"points" yaml:"points"`
	Clusters   []ClusterSummary `json:"clusters" yaml:"clusters"`
	Iterations int              `json:"iterations" yaml:"iterations"`
	Converged  bool             `json:"converged" yaml:"converged"`
}

// Quadrant is the mean-split bucket of a point
type Quadrant string

const (
	QuadrantHighHigh Quadrant = "HH"
	QuadrantLowHigh  Quadrant = "LH"
	QuadrantLowLow   Quadrant = "LL"
	QuadrantHighLow  Quadrant = "HL"
)

// Quadrants lists the buckets in display order
var Quadrants = []Quadrant{QuadrantHighHigh, QuadrantLowHigh, QuadrantLowLow, QuadrantHighLow}

// Description returns the long display name of the quadrant
func (q Quadrant) Description() string {
	switch q {
	case QuadrantHighHigh:
		return "Q1 (High-High)"
	case QuadrantLowHigh:
		return "Q2 (Low-High)"
	case QuadrantLowLow:
		return "Q3 (Low-Low)"
	case QuadrantHighLow:
		return "Q4 (High-Low)"
	}
	return string(q)
}

// QuadrantPoint is a point with its quadrant label
type QuadrantPoint struct {
	Point `yaml:",inline"`

	Quadrant Quadrant `json:"quadrant" yaml:"quadrant"`
}

// QuadrantResult is the output of one quadrant request. The thresholds are
// not computable when no point could be extracted.
type QuadrantResult struct {
	XColumn string           `json:"x_column,omitempty" yaml:"x_column,omitempty"`
	YColumn string           `json:"y_column,omitempty" yaml:"y_column,omitempty"`
	XMean   brief.Metric     `json:"x_mean" yaml:"x_mean"`
	YMean   brief.Metric     `json:"y_mean" yaml:"y_mean"`
	Points  []QuadrantPoint  `json:"points" yaml:"points"`
	Counts  map[Quadrant]int `json:"counts" yaml:"counts"`
}

// Rounded returns a copy with rounded thresholds for output
func (r QuadrantResult) Rounded() QuadrantResult {
	r.XMean = r.XMean.Rounded()
	r.YMean = r.YMean.Rounded()
	return r
}

// Rounded returns a copy with rounded centroids for output
func (r ClusterResult) Rounded() ClusterResult {
	clusters := make([]ClusterSummary, len(r.Clusters))
	for i, c := range r.Clusters {
		c.Centroid.X = brief.RoundOutput(c.Centroid.X)
		c.Centroid.Y = brief.RoundOutput(c.Centroid.Y)
		clusters[i] = c
	}
	r.Clusters = clusters
	return r
}
