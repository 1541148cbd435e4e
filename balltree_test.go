package tractdist

import (
	"math"
	"math/rand"
	"testing"
)

func TestBallTree_Construction(t *testing.T) {
	tree := NewBallTree([]Point3{{X: 1}, {X: 2}, {X: 3}}, 0)
	if tree.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tree.Len())
	}
	if tree.leafSize != 1 {
		t.Errorf("leafSize = %d, want 1 after clamping", tree.leafSize)
	}
	root := tree.nodes[0]
	if root.leaf {
		t.Error("root should split with leafSize 1")
	}
	if math.Abs(root.center.X-2) > floatTol || math.Abs(root.radius-1) > floatTol {
		t.Errorf("root ball = center %v radius %v, want (2,0,0) and 1", root.center, root.radius)
	}
}

func TestBallTree_LeafSizeLargerThanN(t *testing.T) {
	tree := NewBallTree([]Point3{{X: 1}, {Y: 2}}, 100)
	if !tree.nodes[0].leaf {
		t.Error("root should be a leaf when leafSize > n")
	}
}

func TestBallTree_BallsEnclosePoints(t *testing.T) {
	tree := NewBallTree(randomPoints(rand.New(rand.NewSource(4)), 300, 50), 4)
	for id, n := range tree.nodes {
		if n.end == 0 {
			continue // unused slot
		}
		for i := n.start; i < n.end; i++ {
			if d := math.Sqrt(squaredDistance(tree.points[i], n.center)); d > n.radius+floatTol {
				t.Errorf("node %d: point %v at %v outside radius %v", id, tree.points[i], d, n.radius)
			}
		}
	}
}

func TestBallTree_Nearest_BruteForceMatch(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, leafSize := range []int{1, 3, 16} {
		for _, n := range []int{1, 2, 17, 400} {
			pts := randomPoints(rng, n, 100)
			tree := NewBallTree(pts, leafSize)
			for q := 0; q < 100; q++ {
				query := randomPoints(rng, 1, 150)[0]
				_, gotSq := tree.Nearest(query)
				_, wantSq := bruteNearest(pts, query)
				if math.Abs(gotSq-wantSq) > 1e-9 {
					t.Errorf("leafSize=%d n=%d: squared distance %v, brute force %v", leafSize, n, gotSq, wantSq)
				}
			}
		}
	}
}

func TestBallTree_ClusteredTargets(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	var pts []Point3
	for _, c := range []Point3{{X: -40}, {Y: 40}, {Z: 40}} {
		for _, p := range randomPoints(rng, 50, 2) {
			pts = append(pts, Point3{X: c.X + p.X, Y: c.Y + p.Y, Z: c.Z + p.Z})
		}
	}
	tree := NewBallTree(pts, 8)
	for q := 0; q < 100; q++ {
		query := randomPoints(rng, 1, 100)[0]
		_, gotSq := tree.Nearest(query)
		_, wantSq := bruteNearest(pts, query)
		if math.Abs(gotSq-wantSq) > 1e-9 {
			t.Errorf("query %v: squared distance %v, brute force %v", query, gotSq, wantSq)
		}
	}
}

func TestBallTree_DuplicatePoints(t *testing.T) {
	pts := make([]Point3, 64)
	for i := range pts {
		pts[i] = Point3{X: 1, Y: 1, Z: 1}
	}
	tree := NewBallTree(pts, 2)
	if _, d := tree.Nearest(Point3{X: 1, Y: 1, Z: 2}); math.Abs(d-1) > floatTol {
		t.Errorf("squared distance = %v, want 1", d)
	}
}

func TestBallTree_Empty(t *testing.T) {
	var nilTree *BallTree
	for name, tree := range map[string]*BallTree{"nil": nilTree, "empty": NewBallTree(nil, 4)} {
		if _, d := tree.Nearest(Point3{}); !math.IsInf(d, 1) {
			t.Errorf("%s: squared distance = %v, want +Inf", name, d)
		}
	}
}

func TestBallTree_Nearest_OverflowingDistances(t *testing.T) {
	pts := []Point3{{X: 1e200}, {X: -1e200}}
	for _, leafSize := range []int{1, 16} {
		tree := NewBallTree(pts, leafSize)
		p, d := tree.Nearest(Point3{})
		if !math.IsInf(d, 1) {
			t.Errorf("leafSize=%d: squared distance = %v, want +Inf", leafSize, d)
		}
		if p != (Point3{}) {
			t.Errorf("leafSize=%d: point = %v, want zero value", leafSize, p)
		}
	}

	// The engine reports the sentinel instead of failing.
	s := &Streamlines{
		Positions:      []float32{0, 0, 0},
		PointOffset:    []int32{0, 1},
		TractRange:     []int32{0, 1, 0},
		InstanceWeight: []float32{1},
	}
	cfg := DefaultConfig()
	cfg.Algorithm = AlgorithmBallTree
	out := make([]float32, 1)
	if _, err := ComputeDistances(TargetPoints(pts), out, s, cfg); err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}
	if out[0] != NoTargetDistance {
		t.Errorf("distance = %v, want %v", out[0], float32(NoTargetDistance))
	}
}

func TestMaxNodes(t *testing.T) {
	tests := []struct{ n, leafSize, want int }{
		{0, 4, 1},
		{1, 1, 1},
		{2, 1, 3},
		{3, 1, 7},
		{16, 4, 7},
		{17, 4, 15},
	}
	for _, tt := range tests {
		if got := maxNodes(tt.n, tt.leafSize); got != tt.want {
			t.Errorf("maxNodes(%d, %d) = %d, want %d", tt.n, tt.leafSize, got, tt.want)
		}
	}
}
