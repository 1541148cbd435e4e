package tractdist

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// BallTree is a ball tree over 3D target points. Each node stores the
// centroid of its points and the radius of the enclosing ball around it;
// leaves hold up to leafSize points. It tends to prune better than the
// KD-tree when targets form tight, well separated clusters, such as the
// contacts of several depth electrodes.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - points are reordered so each node covers points[start:end]
type BallTree struct {
	points   []Point3 // tree order
	leafSize int
	nodes    []ballNode
}

type ballNode struct {
	start, end int
	leaf       bool
	center     Point3
	radius     float64
}

// NewBallTree builds a ball tree over a copy of points. leafSize controls
// the max points per leaf node and is raised to 1 if smaller.
func NewBallTree(points []Point3, leafSize int) *BallTree {
	if leafSize < 1 {
		leafSize = 1
	}
	pts := make([]Point3, len(points))
	copy(pts, points)

	t := &BallTree{
		points:   pts,
		leafSize: leafSize,
		nodes:    make([]ballNode, maxNodes(len(pts), leafSize)),
	}
	if len(pts) > 0 {
		t.buildNode(0, 0, len(pts))
	}
	return t
}

// maxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func maxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	// Depth of tree: ceil(log2(ceil(n/leafSize))).
	// Number of nodes in a complete binary tree of depth d = 2^(d+1) - 1.
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	for v := 1; v < leaves; v *= 2 {
		depth++
	}
	return (1 << (depth + 1)) - 1
}

// buildNode recursively builds the ball tree for points[start:end].
func (t *BallTree) buildNode(nodeID, start, end int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, ballNode{})
	}

	sub := t.points[start:end]
	var center Point3
	for _, p := range sub {
		center = r3.Add(center, p)
	}
	center = r3.Scale(1/float64(len(sub)), center)

	var radius float64
	for _, p := range sub {
		radius = math.Max(radius, r3.Norm(r3.Sub(p, center)))
	}

	node := ballNode{start: start, end: end, center: center, radius: radius}
	if end-start <= t.leafSize {
		node.leaf = true
		t.nodes[nodeID] = node
		return
	}
	t.nodes[nodeID] = node

	axis := spreadAxis(sub)
	sort.Slice(sub, func(i, j int) bool {
		return coord(sub[i], axis) < coord(sub[j], axis)
	})
	mid := start + (end-start)/2

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// spreadAxis returns the axis along which pts have the greatest extent.
func spreadAxis(pts []Point3) Axis {
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = Point3{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = Point3{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	size := r3.Box{Min: lo, Max: hi}.Size()
	switch {
	case size.X >= size.Y && size.X >= size.Z:
		return AxisX
	case size.Y >= size.Z:
		return AxisY
	default:
		return AxisZ
	}
}

// Len returns the number of indexed points.
func (t *BallTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.points)
}

// Nearest returns the indexed point closest to q and its squared distance,
// or +Inf for an empty tree.
func (t *BallTree) Nearest(q Point3) (Point3, float64) {
	if t.Len() == 0 {
		return Point3{}, math.Inf(1)
	}
	s := nearestSearch{query: q, bestSq: math.Inf(1), bestIdx: -1}
	t.search(&s, 0)
	if s.bestIdx < 0 {
		return Point3{}, s.bestSq
	}
	return t.points[s.bestIdx], s.bestSq
}

// minDist is a lower bound on the distance from q to any point in node.
func (t *BallTree) minDist(nodeID int, q Point3) float64 {
	n := &t.nodes[nodeID]
	return math.Max(r3.Norm(r3.Sub(q, n.center))-n.radius, 0)
}

// search performs a single-tree nearest traversal for the ball tree.
func (t *BallTree) search(s *nearestSearch, nodeID int) {
	node := &t.nodes[nodeID]
	if node.leaf {
		for i := node.start; i < node.end; i++ {
			if d := squaredDistance(s.query, t.points[i]); d < s.bestSq {
				s.bestSq = d
				s.bestIdx = i
			}
		}
		return
	}

	left := 2*nodeID + 1
	right := 2*nodeID + 2

	leftDist := t.minDist(left, s.query)
	rightDist := t.minDist(right, s.query)

	nearChild, farChild := left, right
	farDist := rightDist
	if rightDist < leftDist {
		nearChild, farChild = right, left
		farDist = leftDist
	}

	t.search(s, nearChild)

	if farDist*farDist < s.bestSq {
		t.search(s, farChild)
	}
}
