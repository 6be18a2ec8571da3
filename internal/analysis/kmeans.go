package analysis

import (
	"math"

	"tabstat/domain/spatial"
)

// DefaultMaxIterations bounds k-means when the caller gives no limit
const DefaultMaxIterations = 50

// KMeansClusterer runs deterministic k-means over 2-D points
type KMeansClusterer struct {
	maxIterations int
}

// NewKMeansClusterer creates a clusterer. maxIterations <= 0 uses
// DefaultMaxIterations.
func NewKMeansClusterer(maxIterations int) *KMeansClusterer {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &KMeansClusterer{maxIterations: maxIterations}
}

// Cluster assigns every point to one of k clusters.
//
// Seeds are the first k points, so identical input always gives identical
// output. Each point joins the nearest centroid (lowest index on ties),
// centroids move to the mean of their members and a cluster that loses all
// members keeps its previous centroid. Iteration stops at a fixed point or
// after maxIterations rounds (the clusterer default when <= 0). Hitting the
// limit is not an error.
//
// Degenerate input has defined results: no points or k <= 0 leaves every
// point unclustered, and k >= len(points) puts point i in cluster i.
func (c *KMeansClusterer) Cluster(points []spatial.Point, k, maxIterations int) spatial.ClusterResult {
	if maxIterations <= 0 {
		maxIterations = c.maxIterations
	}
	result := spatial.ClusterResult{K: k, Points: make([]spatial.ClusteredPoint, len(points)), Clusters: []spatial.ClusterSummary{}}

	n := len(points)
	if n == 0 || k <= 0 {
		for i, p := range points {
			result.Points[i] = spatial.ClusteredPoint{Point: p}
		}
		return result
	}

	if k >= n {
		for i, p := range points {
			result.Points[i] = spatial.ClusteredPoint{Point: p, Cluster: i, Clustered: true}
			result.Clusters = append(result.Clusters, spatial.ClusterSummary{
				ID:       i,
				Size:     1,
				Centroid: spatial.Centroid{X: p.X, Y: p.Y},
			})
		}
		result.Converged = true
		return result
	}

	centroids := make([]spatial.Centroid, k)
	for i := 0; i < k; i++ {
		centroids[i] = spatial.Centroid{X: points[i].X, Y: points[i].Y}
	}

	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = -1
	}

	changed := true
	iterations := 0
	for changed && iterations < maxIterations {
		changed = false
		iterations++

		for i, p := range points {
			nearest := nearestCentroid(p, centroids)
			if assignment[i] != nearest {
				assignment[i] = nearest
				changed = true
			}
		}

		centroids = recomputeCentroids(points, assignment, centroids)
	}

	sizes := make([]int, k)
	for i, p := range points {
		result.Points[i] = spatial.ClusteredPoint{Point: p, Cluster: assignment[i], Clustered: true}
		sizes[assignment[i]]++
	}
	for i, centroid := range centroids {
		result.Clusters = append(result.Clusters, spatial.ClusterSummary{ID: i, Size: sizes[i], Centroid: centroid})
	}
	result.Iterations = iterations
	result.Converged = !changed
	return result
}

func nearestCentroid(p spatial.Point, centroids []spatial.Centroid) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		d := math.Hypot(p.X-c.X, p.Y-c.Y)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func recomputeCentroids(points []spatial.Point, assignment []int, previous []spatial.Centroid) []spatial.Centroid {
	sumX := make([]float64, len(previous))
	sumY := make([]float64, len(previous))
	counts := make([]int, len(previous))
	for i, p := range points {
		c := assignment[i]
		sumX[c] += p.X
		sumY[c] += p.Y
		counts[c]++
	}

	next := make([]spatial.Centroid, len(previous))
	for i := range previous {
		if counts[i] == 0 {
			next[i] = previous[i]
			continue
		}
		next[i] = spatial.Centroid{X: sumX[i] / float64(counts[i]), Y: sumY[i] / float64(counts[i])}
	}
	return next
}
