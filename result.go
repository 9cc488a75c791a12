package repsel

import "math"

// ClusterResult records one k-means trial for a given group count and seed.
// Results are shared between the selector and the picker and must be treated
// as read-only once returned.
type ClusterResult struct {
	// K is the number of groups requested for the trial.
	K int

	// Seed is the seed that drove the trial's initializations.
	Seed int64

	// Assignment maps each row of the feature matrix to a group in [0, K).
	Assignment []int

	// Centroids holds K vectors, the mean of each group's members.
	Centroids [][]float64

	// Inertia is the sum of squared Euclidean distances from every row to its
	// group centroid.
	Inertia float64

	// RobustnessScore is the fraction of groups whose mean silhouette is at
	// least Silhouette, in [0, 1]. NaN for unscored fixed-K results.
	RobustnessScore float64

	// Silhouette is the mean silhouette over all rows. NaN when unscored.
	Silhouette float64

	// Iterations is the number of Lloyd iterations of the kept restart.
	Iterations int
}

// Scored reports whether RobustnessScore was computed for this result.
func (r *ClusterResult) Scored() bool { return !math.IsNaN(r.RobustnessScore) }

// GroupSizes returns the number of members of each group.
func (r *ClusterResult) GroupSizes() []int {
	sizes := make([]int, r.K)
	for _, g := range r.Assignment {
		if g >= 0 && g < r.K {
			sizes[g]++
		}
	}
	return sizes
}

// Members returns the row indices assigned to group g in ascending order.
func (r *ClusterResult) Members(g int) []int {
	var out []int
	for i, l := range r.Assignment {
		if l == g {
			out = append(out, i)
		}
	}
	return out
}

// populated counts groups with at least one member.
func (r *ClusterResult) populated() int {
	count := 0
	for _, s := range r.GroupSizes() {
		if s > 0 {
			count++
		}
	}
	return count
}
