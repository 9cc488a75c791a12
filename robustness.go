package repsel

import "fmt"

// scoreTolerance absorbs rounding when a group's mean silhouette is compared
// against the overall mean it contributes to.
const scoreTolerance = 1e-12

// SilhouetteSamples returns the silhouette value of every row for labels in
// [0, k): (b - a) / max(a, b), where a is the mean distance to the other
// members of the row's own group and b the smallest mean distance to the
// members of another populated group. Rows in singleton groups score 0.
func SilhouetteSamples(m *FeatureMatrix, labels []int, k int, metric DistanceMetric) []float64 {
	if metric == nil {
		metric = EuclideanMetric{}
	}
	return silhouetteSamples(onTheFly{m: m, metric: metric}, labels, k)
}

// RobustnessScore computes the fraction of groups whose mean silhouette is at
// least the overall mean silhouette, together with that overall mean.
// It returns ErrDegenerateClustering when fewer than two groups are populated
// or every row is its own group.
func RobustnessScore(m *FeatureMatrix, labels []int, k int, metric DistanceMetric) (score, silhouette float64, err error) {
	if len(labels) != m.Rows() {
		return 0, 0, fmt.Errorf("repsel: %d labels for %d rows", len(labels), m.Rows())
	}
	sizes := make([]int, k)
	for i, l := range labels {
		if l < 0 || l >= k {
			return 0, 0, fmt.Errorf("%w: label %d of row %d outside [0, %d)", ErrInvalidGroupCount, l, i, k)
		}
		sizes[l]++
	}
	populated := 0
	for _, s := range sizes {
		if s > 0 {
			populated++
		}
	}
	if populated < 2 || populated == m.Rows() {
		return 0, 0, fmt.Errorf("%w: %d populated groups for %d rows", ErrDegenerateClustering, populated, m.Rows())
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}
	score, silhouette = robustnessScore(onTheFly{m: m, metric: metric}, labels, k)
	return score, silhouette, nil
}

func silhouetteSamples(d pairDistancer, labels []int, k int) []float64 {
	n := len(labels)
	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}

	samples := make([]float64, n)
	sums := make([]float64, k)
	for i := 0; i < n; i++ {
		for c := range sums {
			sums[c] = 0
		}
		for j := 0; j < n; j++ {
			if j != i {
				sums[labels[j]] += d.Dist(i, j)
			}
		}

		own := labels[i]
		if sizes[own] <= 1 {
			continue
		}
		a := sums[own] / float64(sizes[own]-1)
		b := -1.0
		for c := 0; c < k; c++ {
			if c == own || sizes[c] == 0 {
				continue
			}
			if mean := sums[c] / float64(sizes[c]); b < 0 || mean < b {
				b = mean
			}
		}
		if b < 0 {
			continue
		}
		if den := max(a, b); den > 0 {
			samples[i] = (b - a) / den
		}
	}
	return samples
}

// robustnessScore returns the robustness score and the overall silhouette.
func robustnessScore(d pairDistancer, labels []int, k int) (float64, float64) {
	samples := silhouetteSamples(d, labels, k)

	var overall float64
	groupSum := make([]float64, k)
	groupCount := make([]int, k)
	for i, s := range samples {
		overall += s
		groupSum[labels[i]] += s
		groupCount[labels[i]]++
	}
	overall /= float64(len(samples))

	passing := 0
	for c := 0; c < k; c++ {
		if groupCount[c] == 0 {
			continue
		}
		if groupSum[c]/float64(groupCount[c]) >= overall-scoreTolerance {
			passing++
		}
	}
	return float64(passing) / float64(k), overall
}
