package integrity

import (
	"math"
	"sort"
)

// kdNode is one node of a kdTree, covering idx[start:end].
type kdNode struct {
	start, end int
	leaf       bool
	used       bool
}

// kdTree indexes atom positions for fixed-radius neighbor queries. It is
// stored as a complete binary tree in array form: node i has children at
// 2*i+1 and 2*i+2, with per-node bounding boxes.
type kdTree struct {
	pts      [][3]float64
	leafSize int
	idx      []int // tree-order position to atom index
	nodes    []kdNode
	lo, hi   [][3]float64
}

func newKDTree(pts [][3]float64, leafSize int) *kdTree {
	if leafSize < 1 {
		leafSize = 1
	}
	n := len(pts)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	size := kdMaxNodes(n, leafSize)
	t := &kdTree{
		pts:      pts,
		leafSize: leafSize,
		idx:      idx,
		nodes:    make([]kdNode, size),
		lo:       make([][3]float64, size),
		hi:       make([][3]float64, size),
	}
	if n > 0 {
		t.build(0, 0, n)
	}
	return t
}

// kdMaxNodes bounds the node count of a tree over n points.
func kdMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	for v := 1; v < leaves; v *= 2 {
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2
}

func (t *kdTree) build(node, start, end int) {
	for node >= len(t.nodes) {
		t.nodes = append(t.nodes, kdNode{})
		t.lo = append(t.lo, [3]float64{})
		t.hi = append(t.hi, [3]float64{})
	}

	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range t.idx[start:end] {
		for d := 0; d < 3; d++ {
			lo[d] = math.Min(lo[d], t.pts[p][d])
			hi[d] = math.Max(hi[d], t.pts[p][d])
		}
	}
	t.lo[node], t.hi[node] = lo, hi

	if end-start <= t.leafSize {
		t.nodes[node] = kdNode{start: start, end: end, leaf: true, used: true}
		return
	}

	// Split on the axis of greatest spread at the median.
	axis := 0
	for d := 1; d < 3; d++ {
		if hi[d]-lo[d] > hi[axis]-lo[axis] {
			axis = d
		}
	}
	sub := t.idx[start:end]
	sort.Slice(sub, func(i, j int) bool { return t.pts[sub[i]][axis] < t.pts[sub[j]][axis] })
	mid := start + (end-start)/2

	t.nodes[node] = kdNode{start: start, end: end, used: true}
	t.build(2*node+1, start, mid)
	t.build(2*node+2, mid, end)
}

// within calls fn for every atom j with |pts[j] - q| <= r, passing the
// distance. Atoms are visited in tree order.
func (t *kdTree) within(q [3]float64, r float64, fn func(j int, d float64)) {
	if len(t.pts) == 0 {
		return
	}
	t.search(0, q, r*r, fn)
}

func (t *kdTree) search(node int, q [3]float64, r2 float64, fn func(int, float64)) {
	if node >= len(t.nodes) || !t.nodes[node].used {
		return
	}
	if t.minSqDist(node, q) > r2 {
		return
	}
	nd := t.nodes[node]
	if !nd.leaf {
		t.search(2*node+1, q, r2, fn)
		t.search(2*node+2, q, r2, fn)
		return
	}
	for _, j := range t.idx[nd.start:nd.end] {
		p := t.pts[j]
		dx, dy, dz := p[0]-q[0], p[1]-q[1], p[2]-q[2]
		if d2 := dx*dx + dy*dy + dz*dz; d2 <= r2 {
			fn(j, math.Sqrt(d2))
		}
	}
}

// minSqDist is the squared distance from q to the bounding box of node.
func (t *kdTree) minSqDist(node int, q [3]float64) float64 {
	var s float64
	for d := 0; d < 3; d++ {
		var gap float64
		if q[d] < t.lo[node][d] {
			gap = t.lo[node][d] - q[d]
		} else if q[d] > t.hi[node][d] {
			gap = q[d] - t.hi[node][d]
		}
		s += gap * gap
	}
	return s
}
