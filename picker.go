package repsel

import (
	"fmt"
	"math"
	"math/rand"
)

// CapPolicy decides how Budget.MaxTotal is applied.
type CapPolicy string

const (
	// CapAdvisory ignores MaxTotal across groups; each group is bounded by
	// MaxExtraPerGroup alone.
	CapAdvisory CapPolicy = "advisory"

	// CapTotal bounds the number of selections across all groups by
	// MaxTotal. The closest-to-centroid pick of every group is always kept,
	// so the output can exceed MaxTotal only when there are more groups.
	CapTotal CapPolicy = "total"
)

// Budget bounds how many rows the picker selects.
type Budget struct {
	// MaxExtraPerGroup is the number of members sampled per group in
	// addition to its closest-to-centroid member. <= 0 disables sampling.
	MaxExtraPerGroup int

	// MaxTotal is the overall cap; see Policy. <= 0 means no cap.
	MaxTotal int

	// Policy selects how MaxTotal is enforced. Empty means CapAdvisory.
	Policy CapPolicy
}

// LegacyBudget maps a maximum-samples-per-group setting to a Budget: one
// mandatory member plus maxSamples-1 extras per group, with no overall cap.
func LegacyBudget(maxSamples int) Budget {
	return Budget{
		MaxExtraPerGroup: max(maxSamples-1, 0),
		Policy:           CapAdvisory,
	}
}

func (b Budget) validate() error {
	switch b.Policy {
	case "", CapAdvisory, CapTotal:
		return nil
	}
	return fmt.Errorf("repsel: unknown cap policy %q", b.Policy)
}

// PickRepresentatives selects row indices from res. For every group it keeps
// the member nearest to the centroid (lowest index on ties) followed by up to
// budget.MaxExtraPerGroup other members: all of them when fewer remain,
// otherwise a uniform sample without replacement driven by seed.
//
// Indices are returned group by group, the mandatory pick first. The same
// inputs always produce the same output.
func PickRepresentatives(m *FeatureMatrix, res *ClusterResult, budget Budget, seed int64) ([]int, error) {
	if err := budget.validate(); err != nil {
		return nil, err
	}
	if len(res.Assignment) != m.Rows() {
		return nil, fmt.Errorf("repsel: assignment covers %d rows, matrix has %d", len(res.Assignment), m.Rows())
	}
	k := len(res.Centroids)

	members := make([][]int, k)
	for i, g := range res.Assignment {
		if g < 0 || g >= k {
			return nil, fmt.Errorf("%w: row %d labeled %d, want [0, %d)", ErrInvalidGroupCount, i, g, k)
		}
		members[g] = append(members[g], i)
	}

	rng := rand.New(rand.NewSource(seed))
	mandatory := make([]int, k)
	extras := make([][]int, k)
	for g := 0; g < k; g++ {
		if len(members[g]) == 0 {
			return nil, fmt.Errorf("%w: group %d of %d", ErrEmptyGroup, g, k)
		}
		closest := nearestMember(m, members[g], res.Centroids[g])
		mandatory[g] = closest

		rest := make([]int, 0, len(members[g])-1)
		for _, idx := range members[g] {
			if idx != closest {
				rest = append(rest, idx)
			}
		}
		extras[g] = sampleWithoutReplacement(rest, budget.MaxExtraPerGroup, rng)
	}

	if budget.Policy == CapTotal && budget.MaxTotal > 0 {
		extras = capExtras(extras, budget.MaxTotal-k)
	}

	var out []int
	for g := 0; g < k; g++ {
		out = append(out, mandatory[g])
		out = append(out, extras[g]...)
	}
	return out, nil
}

func nearestMember(m *FeatureMatrix, members []int, centroid []float64) int {
	best, bestD := -1, math.Inf(1)
	for _, idx := range members {
		if d := sqEuclidean(m.Row(idx), centroid); d < bestD {
			best, bestD = idx, d
		}
	}
	return best
}

// sampleWithoutReplacement returns all of pool when it has at most n
// elements, otherwise n elements drawn uniformly by a partial Fisher-Yates
// shuffle. pool is not modified.
func sampleWithoutReplacement(pool []int, n int, rng *rand.Rand) []int {
	if n <= 0 {
		return nil
	}
	if len(pool) <= n {
		return append([]int(nil), pool...)
	}
	cp := append([]int(nil), pool...)
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:n]
}

// capExtras keeps at most allowed extras overall, taking them round-robin
// across groups in sampled order.
func capExtras(extras [][]int, allowed int) [][]int {
	kept := make([][]int, len(extras))
	for round := 0; allowed > 0; round++ {
		progressed := false
		for g := range extras {
			if allowed == 0 {
				break
			}
			if round < len(extras[g]) {
				kept[g] = append(kept[g], extras[g][round])
				allowed--
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return kept
}
