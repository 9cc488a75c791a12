package repsel

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// KMeansOptions controls a single k-means fit.
type KMeansOptions struct {
	// Restarts is the number of independent k-means++ initializations drawn
	// from the seed's stream. The lowest-inertia run is kept.
	Restarts int

	// MaxIterations caps the Lloyd iterations of each restart.
	MaxIterations int

	// Tolerance is the convergence threshold on the total squared centroid
	// shift, relative to the mean feature variance.
	Tolerance float64
}

// DefaultKMeansOptions returns 10 restarts, 300 iterations and a 1e-4 tolerance.
func DefaultKMeansOptions() KMeansOptions {
	return KMeansOptions{Restarts: 10, MaxIterations: 300, Tolerance: 1e-4}
}

// kmeansFit is the raw outcome of the kept restart.
type kmeansFit struct {
	labels     []int
	centers    []float64 // flat k*dims
	inertia    float64
	iterations int
}

// Partition runs k-means with k groups and the given number of restarts and
// scores the outcome (see [ClusterResult.RobustnessScore]). It is
// deterministic for identical inputs.
//
// k must lie in [1, N], otherwise ErrInvalidGroupCount is returned. k = 1,
// k = N and trials that leave any of the k groups empty return
// ErrDegenerateClustering. The latter happens when the matrix has fewer than
// k distinct rows.
func Partition(m *FeatureMatrix, k int, seed int64, restarts int) (*ClusterResult, error) {
	opts := DefaultKMeansOptions()
	opts.Restarts = restarts
	return partition(context.Background(), m, nil, k, seed, opts)
}

// KMeans fits k groups without scoring. Any k in [1, N] is accepted; the
// returned result has NaN RobustnessScore and Silhouette. Groups left empty
// are dropped, so the result's K can be below k when the matrix has fewer
// than k distinct rows.
func KMeans(m *FeatureMatrix, k int, seed int64, opts KMeansOptions) (*ClusterResult, error) {
	fit, err := fitKMeans(context.Background(), m, k, seed, opts)
	if err != nil {
		return nil, err
	}
	res := fit.result(m.Dims(), k, seed)
	res.dropEmpty()
	res.RobustnessScore = math.NaN()
	res.Silhouette = math.NaN()
	return res, nil
}

func partition(ctx context.Context, m *FeatureMatrix, dist pairDistancer, k int, seed int64, opts KMeansOptions) (*ClusterResult, error) {
	n := m.Rows()
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: K=%d with N=%d", ErrInvalidGroupCount, k, n)
	}
	if k == 1 || k == n {
		return nil, fmt.Errorf("%w: silhouette undefined for K=%d with N=%d", ErrDegenerateClustering, k, n)
	}

	fit, err := fitKMeans(ctx, m, k, seed, opts)
	if err != nil {
		return nil, err
	}
	res := fit.result(m.Dims(), k, seed)
	if p := res.populated(); p < k {
		return nil, fmt.Errorf("%w: K=%d seed=%d left %d populated group(s)", ErrDegenerateClustering, k, seed, p)
	}

	if dist == nil {
		dist = onTheFly{m: m, metric: EuclideanMetric{}}
	}
	res.RobustnessScore, res.Silhouette = robustnessScore(dist, res.Assignment, k)
	return res, nil
}

func fitKMeans(ctx context.Context, m *FeatureMatrix, k int, seed int64, opts KMeansOptions) (*kmeansFit, error) {
	n := m.Rows()
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: K=%d with N=%d", ErrInvalidGroupCount, k, n)
	}
	if opts.Restarts < 1 {
		return nil, fmt.Errorf("repsel: Restarts must be >= 1, got %d", opts.Restarts)
	}
	if opts.MaxIterations < 1 {
		return nil, fmt.Errorf("repsel: MaxIterations must be >= 1, got %d", opts.MaxIterations)
	}

	tol := opts.Tolerance * m.varianceMean()
	rng := rand.New(rand.NewSource(seed))

	var best *kmeansFit
	for r := 0; r < opts.Restarts; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		centers := initPlusPlus(m, k, rng)
		fit := lloyd(m, k, centers, opts.MaxIterations, tol)
		if best == nil || fit.inertia < best.inertia {
			best = fit
		}
	}
	return best, nil
}

// initPlusPlus seeds k centers with greedy k-means++: each new center is the
// best of 2+ln(k) candidates sampled proportionally to squared distance from
// the centers chosen so far.
func initPlusPlus(m *FeatureMatrix, k int, rng *rand.Rand) []float64 {
	n, dims := m.Rows(), m.Dims()
	centers := make([]float64, k*dims)
	nLocal := 2 + int(math.Log(float64(k)))

	first := rng.Intn(n)
	copy(centers[:dims], m.Row(first))

	closest := make([]float64, n)
	for i := range closest {
		closest[i] = sqEuclidean(m.Row(i), centers[:dims])
	}
	cum := make([]float64, n)
	candDist := make([]float64, n)
	bestDist := make([]float64, n)

	for c := 1; c < k; c++ {
		var pot float64
		for i, d := range closest {
			pot += d
			cum[i] = pot
		}

		bestCand, bestPot := -1, math.Inf(1)
		for t := 0; t < nLocal; t++ {
			var cand int
			if pot <= 0 {
				cand = rng.Intn(n)
			} else {
				cand = min(sort.SearchFloat64s(cum, rng.Float64()*pot), n-1)
			}
			var p float64
			for i := 0; i < n; i++ {
				d := min(closest[i], sqEuclidean(m.Row(i), m.Row(cand)))
				candDist[i] = d
				p += d
			}
			if p < bestPot {
				bestCand, bestPot = cand, p
				bestDist, candDist = candDist, bestDist
			}
		}

		copy(centers[c*dims:(c+1)*dims], m.Row(bestCand))
		closest, bestDist = bestDist, closest
	}
	return centers
}

// lloyd alternates assignment and centroid updates from the given centers
// until labels stop changing, the centroid shift drops to tol, or maxIter is
// reached. The returned centers are the means of the final groups.
func lloyd(m *FeatureMatrix, k int, centers []float64, maxIter int, tol float64) *kmeansFit {
	n, dims := m.Rows(), m.Dims()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	dist := make([]float64, n)
	next := make([]float64, k*dims)

	iter := 0
	for iter < maxIter {
		iter++
		if changed := assignNearest(m, centers, k, labels, dist); !changed {
			break
		}
		updateCenters(m, labels, dist, k, centers, next)
		shift := sqEuclidean(centers, next)
		centers, next = next, centers
		if shift <= tol {
			break
		}
	}

	assignNearest(m, centers, k, labels, dist)
	updateCenters(m, labels, nil, k, centers, next)

	var inertia float64
	for i, l := range labels {
		inertia += sqEuclidean(m.Row(i), next[l*dims:(l+1)*dims])
	}
	return &kmeansFit{labels: labels, centers: next, inertia: inertia, iterations: iter}
}

// assignNearest labels every row with its nearest center (lowest index on
// ties), records the squared distance, and reports whether any label changed.
func assignNearest(m *FeatureMatrix, centers []float64, k int, labels []int, dist []float64) bool {
	dims := m.Dims()
	changed := false
	for i := 0; i < m.Rows(); i++ {
		row := m.Row(i)
		best, bestD := 0, sqEuclidean(row, centers[:dims])
		for c := 1; c < k; c++ {
			if d := sqEuclidean(row, centers[c*dims:(c+1)*dims]); d < bestD {
				best, bestD = c, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
		dist[i] = bestD
	}
	return changed
}

// updateCenters writes the mean of each group into next. When dist is
// non-nil, empty groups are given the rows farthest from their current
// centers; otherwise an empty group keeps its previous center.
func updateCenters(m *FeatureMatrix, labels []int, dist []float64, k int, prev, next []float64) {
	dims := m.Dims()
	counts := make([]int, k)
	for i := range next {
		next[i] = 0
	}
	for i, l := range labels {
		counts[l]++
		floats.Add(next[l*dims:(l+1)*dims], m.Row(i))
	}

	if dist != nil {
		relocateEmpty(m, labels, dist, counts, next)
	}

	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			copy(next[c*dims:(c+1)*dims], prev[c*dims:(c+1)*dims])
			continue
		}
		floats.Scale(1/float64(counts[c]), next[c*dims:(c+1)*dims])
	}
}

// relocateEmpty moves the rows with the largest distance to their center
// into empty groups. sums holds per-group coordinate sums and is updated in
// place together with counts and labels.
func relocateEmpty(m *FeatureMatrix, labels []int, dist []float64, counts []int, sums []float64) {
	var empty []int
	for c, cnt := range counts {
		if cnt == 0 {
			empty = append(empty, c)
		}
	}
	if len(empty) == 0 {
		return
	}

	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return dist[order[a]] > dist[order[b]] })

	dims := m.Dims()
	for idx, c := range empty {
		if idx >= len(order) {
			break
		}
		p := order[idx]
		old := labels[p]
		if counts[old] <= 1 {
			continue
		}
		row := m.Row(p)
		floats.Sub(sums[old*dims:(old+1)*dims], row)
		floats.Add(sums[c*dims:(c+1)*dims], row)
		counts[old]--
		counts[c]++
		labels[p] = c
	}
}

func (f *kmeansFit) result(dims, k int, seed int64) *ClusterResult {
	centroids := make([][]float64, k)
	for c := range centroids {
		centroids[c] = append([]float64(nil), f.centers[c*dims:(c+1)*dims]...)
	}
	return &ClusterResult{
		K:          k,
		Seed:       seed,
		Assignment: append([]int(nil), f.labels...),
		Centroids:  centroids,
		Inertia:    f.inertia,
		Iterations: f.iterations,
	}
}

// dropEmpty removes groups without members and relabels the rest in order.
func (r *ClusterResult) dropEmpty() {
	sizes := r.GroupSizes()
	remap := make([]int, r.K)
	var centroids [][]float64
	for g, size := range sizes {
		if size > 0 {
			remap[g] = len(centroids)
			centroids = append(centroids, r.Centroids[g])
		}
	}
	if len(centroids) == r.K {
		return
	}
	for i, g := range r.Assignment {
		r.Assignment[i] = remap[g]
	}
	r.Centroids = centroids
	r.K = len(centroids)
}
