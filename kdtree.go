package tractdist

import (
	"math"
	"sort"
)

// Axis identifies the splitting plane of a KD-tree node.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "invalid"
	}
}

// axisForDepth cycles x, y, z with tree depth.
func axisForDepth(depth int) Axis { return Axis(depth % 3) }

// coord returns the coordinate of p along axis a.
func coord(p Point3, a Axis) float64 {
	switch a {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	default:
		return p.Z
	}
}

// KDTree is a static 3D KD-tree for nearest-target queries.
//
// The tree is pointerless: points are stored in a flat array reordered so
// that the subtree over points[lo:hi] has its pivot at lo + (hi-lo)/2, its
// left subtree over points[lo:mid] and its right subtree over
// points[mid+1:hi]. Because every split is at the median by count, the
// height is floor(log2 n)+1 regardless of how the points are distributed.
//
// A KDTree is read-only after Build and safe for concurrent queries.
type KDTree struct {
	points []Point3 // tree order
	height int
}

// Build constructs a KD-tree over a copy of points. At depth d the subset is
// sorted along axis d mod 3 and split at its median. An empty input yields an
// empty tree whose queries report +Inf.
func Build(points []Point3) *KDTree {
	pts := make([]Point3, len(points))
	copy(pts, points)
	t := &KDTree{points: pts}
	t.height = t.buildRange(0, len(pts), 0)
	return t
}

// BuildFlat builds a KD-tree from flat xyz triples.
func BuildFlat(coords []float64) (*KDTree, error) {
	pts, err := PointsFromFlat(coords)
	if err != nil {
		return nil, err
	}
	return Build(pts), nil
}

// buildRange arranges points[lo:hi] as the subtree rooted at depth and
// returns its height.
func (t *KDTree) buildRange(lo, hi, depth int) int {
	if lo >= hi {
		return 0
	}
	axis := axisForDepth(depth)
	sub := t.points[lo:hi]
	sort.Slice(sub, func(i, j int) bool {
		return coord(sub[i], axis) < coord(sub[j], axis)
	})
	mid := lo + (hi-lo)/2
	lh := t.buildRange(lo, mid, depth+1)
	rh := t.buildRange(mid+1, hi, depth+1)
	return 1 + max(lh, rh)
}

// Len returns the number of points in the tree. A nil tree has length 0.
func (t *KDTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.points)
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *KDTree) Height() int {
	if t == nil {
		return 0
	}
	return t.height
}

// Points returns a copy of the indexed points in tree order.
func (t *KDTree) Points() []Point3 {
	if t == nil {
		return nil
	}
	out := make([]Point3, len(t.points))
	copy(out, t.points)
	return out
}

// Nearest returns the indexed point closest to q and its squared distance.
// A nil or empty tree returns the zero point and +Inf.
func (t *KDTree) Nearest(q Point3) (Point3, float64) {
	p, d, _ := t.NearestWithin(q, math.Inf(1))
	return p, d
}

// NearestWithin searches for a point strictly closer to q than seedSq
// (a squared distance). If one exists it returns that point, its squared
// distance and true; otherwise it returns seedSq unchanged and false.
// Seeding with a known upper bound prunes more of the tree.
func (t *KDTree) NearestWithin(q Point3, seedSq float64) (Point3, float64, bool) {
	if t.Len() == 0 {
		return Point3{}, seedSq, false
	}
	s := nearestSearch{query: q, bestSq: seedSq, bestIdx: -1}
	t.search(&s, 0, len(t.points), 0)
	if s.bestIdx < 0 {
		return Point3{}, seedSq, false
	}
	return t.points[s.bestIdx], s.bestSq, true
}

type nearestSearch struct {
	query   Point3
	bestSq  float64
	bestIdx int
}

// search visits the subtree over points[lo:hi]. Recursion depth is bounded
// by the tree height.
func (t *KDTree) search(s *nearestSearch, lo, hi, depth int) {
	if lo >= hi {
		return
	}
	mid := lo + (hi-lo)/2
	pivot := t.points[mid]
	if d := squaredDistance(s.query, pivot); d < s.bestSq {
		s.bestSq = d
		s.bestIdx = mid
	}

	axis := axisForDepth(depth)
	diff := coord(s.query, axis) - coord(pivot, axis)

	nearLo, nearHi, farLo, farHi := lo, mid, mid+1, hi
	if diff > 0 {
		nearLo, nearHi, farLo, farHi = mid+1, hi, lo, mid
	}

	t.search(s, nearLo, nearHi, depth+1)

	// The far side can only hold a closer point if the splitting plane is
	// closer than the current best.
	if diff*diff < s.bestSq {
		t.search(s, farLo, farHi, depth+1)
	}
}

// Node is a read-only view of one KD-tree subtree.
type Node struct {
	tree          *KDTree
	lo, hi, depth int
}

// Root returns the root node, or false for an empty tree.
func (t *KDTree) Root() (Node, bool) {
	if t.Len() == 0 {
		return Node{}, false
	}
	return Node{tree: t, lo: 0, hi: len(t.points)}, true
}

func (n Node) mid() int { return n.lo + (n.hi-n.lo)/2 }

// Axis returns the splitting axis of n.
func (n Node) Axis() Axis { return axisForDepth(n.depth) }

// Pivot returns the point stored at n.
func (n Node) Pivot() Point3 { return n.tree.points[n.mid()] }

// Count returns the number of points in the subtree rooted at n.
func (n Node) Count() int { return n.hi - n.lo }

// Depth returns the depth of n; the root has depth 0.
func (n Node) Depth() int { return n.depth }

// Left returns the subtree whose points lie on or below the pivot along
// Axis, or false if it is empty.
func (n Node) Left() (Node, bool) {
	lo, hi := n.lo, n.mid()
	if lo >= hi {
		return Node{}, false
	}
	return Node{tree: n.tree, lo: lo, hi: hi, depth: n.depth + 1}, true
}

// Right returns the subtree whose points lie on or above the pivot along
// Axis, or false if it is empty.
func (n Node) Right() (Node, bool) {
	lo, hi := n.mid()+1, n.hi
	if lo >= hi {
		return Node{}, false
	}
	return Node{tree: n.tree, lo: lo, hi: hi, depth: n.depth + 1}, true
}
