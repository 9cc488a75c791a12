package repsel

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// twoBlobs returns five points around (0.5, 0.5) followed by their
// reflection through (5, 5). The two groups are mirror images, so their
// silhouette statistics agree exactly.
func twoBlobs(t testing.TB) *FeatureMatrix {
	t.Helper()
	return mustMatrix(t, [][]float64{
		{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0.5, 0.5},
		{10, 10}, {9, 10}, {10, 9}, {9, 9}, {9.5, 9.5},
	})
}

func randomMatrix(t testing.TB, n, dims int, seed int64) *FeatureMatrix {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, dims)
		for j := range rows[i] {
			rows[i][j] = rng.Float64() * 100
		}
	}
	return mustMatrix(t, rows)
}

func TestPartition_TwoBlobs(t *testing.T) {
	m := twoBlobs(t)
	res, err := Partition(m, 2, 7, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < 5; i++ {
		if res.Assignment[i] != res.Assignment[0] {
			t.Errorf("row %d: label %d, want %d", i, res.Assignment[i], res.Assignment[0])
		}
		if res.Assignment[5+i] != res.Assignment[5] {
			t.Errorf("row %d: label %d, want %d", 5+i, res.Assignment[5+i], res.Assignment[5])
		}
	}
	if res.Assignment[0] == res.Assignment[5] {
		t.Fatal("blobs share a label")
	}
	if !almostEqual(res.RobustnessScore, 1, floatTol) {
		t.Errorf("RobustnessScore: got %v, want 1", res.RobustnessScore)
	}
	if res.Silhouette <= 0.8 || res.Silhouette > 1 {
		t.Errorf("Silhouette: got %v, want in (0.8, 1]", res.Silhouette)
	}
	if res.K != 2 || res.Seed != 7 {
		t.Errorf("K/Seed: got %d/%d, want 2/7", res.K, res.Seed)
	}
}

func TestPartition_Deterministic(t *testing.T) {
	m := randomMatrix(t, 60, 3, 1)
	a, err := Partition(m, 4, 123, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Partition(m, 4, 123, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a.Assignment {
		if a.Assignment[i] != b.Assignment[i] {
			t.Fatalf("row %d: %d vs %d", i, a.Assignment[i], b.Assignment[i])
		}
	}
	if a.Inertia != b.Inertia || a.RobustnessScore != b.RobustnessScore {
		t.Errorf("inertia %v/%v score %v/%v", a.Inertia, b.Inertia, a.RobustnessScore, b.RobustnessScore)
	}
}

func TestPartition_InvalidGroupCount(t *testing.T) {
	m := twoBlobs(t)
	for _, k := range []int{0, -1, 11} {
		if _, err := Partition(m, k, 0, 1); !errors.Is(err, ErrInvalidGroupCount) {
			t.Errorf("K=%d: got %v, want ErrInvalidGroupCount", k, err)
		}
	}
}

func TestPartition_DegenerateBounds(t *testing.T) {
	m := twoBlobs(t)
	for _, k := range []int{1, m.Rows()} {
		if _, err := Partition(m, k, 0, 1); !errors.Is(err, ErrDegenerateClustering) {
			t.Errorf("K=%d: got %v, want ErrDegenerateClustering", k, err)
		}
	}
}

func TestPartition_CentroidsAndInertia(t *testing.T) {
	m := randomMatrix(t, 40, 2, 3)
	res, err := Partition(m, 3, 5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var inertia float64
	for c := 0; c < res.K; c++ {
		members := res.Members(c)
		if len(members) == 0 {
			t.Fatalf("group %d empty", c)
		}
		for j := 0; j < m.Dims(); j++ {
			var sum float64
			for _, i := range members {
				sum += m.At(i, j)
			}
			if want := sum / float64(len(members)); !almostEqual(res.Centroids[c][j], want, 1e-9) {
				t.Errorf("centroid[%d][%d]: got %v, want %v", c, j, res.Centroids[c][j], want)
			}
		}
		for _, i := range members {
			inertia += sqEuclidean(m.Row(i), res.Centroids[c])
		}
	}
	if !almostEqual(res.Inertia, inertia, 1e-6) {
		t.Errorf("Inertia: got %v, want %v", res.Inertia, inertia)
	}
	sizes := res.GroupSizes()
	total := 0
	for _, s := range sizes {
		total += s
	}
	if total != m.Rows() {
		t.Errorf("GroupSizes sum: got %d, want %d", total, m.Rows())
	}
}

func TestPartition_MoreRestartsNeverWorse(t *testing.T) {
	m := randomMatrix(t, 80, 2, 9)
	one, err := Partition(m, 5, 11, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	many, err := Partition(m, 5, 11, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The first restart of both runs draws from the same stream.
	if many.Inertia > one.Inertia {
		t.Errorf("8 restarts inertia %v > 1 restart inertia %v", many.Inertia, one.Inertia)
	}
}

func TestKMeans_Unscored(t *testing.T) {
	m := twoBlobs(t)
	res, err := KMeans(m, 1, 0, DefaultKMeansOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Scored() {
		t.Error("fixed-K result reports a score")
	}
	if !math.IsNaN(res.Silhouette) {
		t.Errorf("Silhouette: got %v, want NaN", res.Silhouette)
	}
	// Mean of the two mirrored blobs is (5, 5).
	if !almostEqual(res.Centroids[0][0], 5, floatTol) || !almostEqual(res.Centroids[0][1], 5, floatTol) {
		t.Errorf("centroid: got %v, want [5 5]", res.Centroids[0])
	}
}

func TestKMeans_InvalidOptions(t *testing.T) {
	m := twoBlobs(t)
	if _, err := KMeans(m, 2, 0, KMeansOptions{Restarts: 0, MaxIterations: 10}); err == nil {
		t.Error("expected error for zero restarts")
	}
	if _, err := KMeans(m, 2, 0, KMeansOptions{Restarts: 1, MaxIterations: 0}); err == nil {
		t.Error("expected error for zero iterations")
	}
	if _, err := KMeans(m, 11, 0, DefaultKMeansOptions()); !errors.Is(err, ErrInvalidGroupCount) {
		t.Errorf("K=N+1: got %v, want ErrInvalidGroupCount", err)
	}
}

// duplicateRows has three distinct values, so no fit can populate four groups.
func duplicateRows(t *testing.T) *FeatureMatrix {
	t.Helper()
	return lineMatrix(t, 0, 0, 0, 0, 10, 10, 20, 20)
}

func TestPartition_FewerDistinctRowsThanK(t *testing.T) {
	m := duplicateRows(t)
	for seed := int64(0); seed < 5; seed++ {
		if res, err := Partition(m, 4, seed, 3); !errors.Is(err, ErrDegenerateClustering) {
			t.Errorf("seed %d: got %v (sizes %v), want ErrDegenerateClustering", seed, err, groupSizes(res))
		}
		res, err := Partition(m, 3, seed, 3)
		if err != nil {
			t.Fatalf("seed %d, K=3: unexpected error: %v", seed, err)
		}
		for g, size := range res.GroupSizes() {
			if size == 0 {
				t.Errorf("seed %d, K=3: group %d is empty", seed, g)
			}
		}
	}
}

func TestKMeans_DropsEmptyGroups(t *testing.T) {
	m := duplicateRows(t)
	res, err := KMeans(m, 4, 0, DefaultKMeansOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.K != 3 || len(res.Centroids) != 3 {
		t.Fatalf("got K=%d with %d centroids, want 3", res.K, len(res.Centroids))
	}
	for g, size := range res.GroupSizes() {
		if size == 0 {
			t.Errorf("group %d is empty", g)
		}
	}
	for i, g := range res.Assignment {
		if g < 0 || g >= res.K {
			t.Errorf("row %d labeled %d, want [0, %d)", i, g, res.K)
		}
	}
}

func groupSizes(res *ClusterResult) []int {
	if res == nil {
		return nil
	}
	return res.GroupSizes()
}
