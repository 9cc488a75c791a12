package repsel

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric measures dissimilarity between two descriptor vectors.
// It is used by the silhouette computation; k-means itself always minimizes
// squared Euclidean distance.
type DistanceMetric interface {
	Distance(a, b []float64) float64
	ReducedDistance(a, b []float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
// ReducedDistance delegates to the same function.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64        { return f(a, b) }
func (f DistanceFunc) ReducedDistance(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes the Euclidean (L2) distance.
// ReducedDistance returns the squared distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 {
	return math.Sqrt(sqEuclidean(a, b))
}

func (EuclideanMetric) ReducedDistance(a, b []float64) float64 {
	return sqEuclidean(a, b)
}

// ManhattanMetric computes the L1 distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 1) }

func (m ManhattanMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// ChebyshevMetric computes the L-infinity distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }

func (m ChebyshevMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }

// MetricByName resolves "euclidean", "manhattan" or "chebyshev".
func MetricByName(name string) (DistanceMetric, bool) {
	switch name {
	case "", "euclidean":
		return EuclideanMetric{}, true
	case "manhattan":
		return ManhattanMetric{}, true
	case "chebyshev":
		return ChebyshevMetric{}, true
	}
	return nil, false
}

func sqEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// pairDistancer answers distance queries between rows of a feature matrix.
type pairDistancer interface {
	Dist(i, j int) float64
}

// pairwiseMatrix is a precomputed flat n×n distance matrix.
type pairwiseMatrix struct {
	d []float64
	n int
}

func (p *pairwiseMatrix) Dist(i, j int) float64 { return p.d[i*p.n+j] }

// onTheFly computes distances on demand. Used when n×n would be too large.
type onTheFly struct {
	m      *FeatureMatrix
	metric DistanceMetric
}

func (o onTheFly) Dist(i, j int) float64 {
	if i == j {
		return 0
	}
	return o.metric.Distance(o.m.Row(i), o.m.Row(j))
}

// ComputePairwiseDistances computes the full n×n distance matrix of m's rows.
// Returns flat []float64 of length n*n in row-major order.
func ComputePairwiseDistances(m *FeatureMatrix, metric DistanceMetric) []float64 {
	n := m.Rows()
	result := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := metric.Distance(m.Row(i), m.Row(j))
			result[i*n+j] = d
			result[j*n+i] = d
		}
	}
	return result
}
