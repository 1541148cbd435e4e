package tractdist

import "math"

// SpatialIndex is the read interface shared by KDTree, BallTree and BruteIndex.
// Implementations must be safe for concurrent Nearest calls.
type SpatialIndex interface {
	// Nearest returns the indexed point closest to q and its squared
	// distance, or +Inf when the index is empty.
	Nearest(q Point3) (Point3, float64)

	// Len returns the number of indexed points.
	Len() int
}

var (
	_ SpatialIndex = (*KDTree)(nil)
	_ SpatialIndex = (*BallTree)(nil)
	_ SpatialIndex = (*BruteIndex)(nil)
)

// BruteIndex answers nearest queries by scanning every point. It is exact
// and allocation-free per query, and beats the tree for a handful of targets.
type BruteIndex struct {
	points []Point3
}

// NewBruteIndex returns a linear-scan index over a copy of points.
func NewBruteIndex(points []Point3) *BruteIndex {
	pts := make([]Point3, len(points))
	copy(pts, points)
	return &BruteIndex{points: pts}
}

// Len returns the number of indexed points.
func (b *BruteIndex) Len() int {
	if b == nil {
		return 0
	}
	return len(b.points)
}

// Nearest returns the first point at minimum squared distance from q.
func (b *BruteIndex) Nearest(q Point3) (Point3, float64) {
	var best Point3
	bestSq := math.Inf(1)
	if b == nil {
		return best, bestSq
	}
	for _, p := range b.points {
		if d := squaredDistance(q, p); d < bestSq {
			best, bestSq = p, d
		}
	}
	return best, bestSq
}

// TargetInput is the set of targets distances are measured to: either raw
// points, indexed on each call, or a prebuilt SpatialIndex reused as is.
// Construct one with TargetPoints or TargetIndex. A nil TargetInput means
// there are no targets.
type TargetInput interface {
	resolve(cfg *Config) SpatialIndex
}

// TargetPoints is a TargetInput of raw points.
type TargetPoints []Point3

func (p TargetPoints) resolve(cfg *Config) SpatialIndex {
	switch cfg.Algorithm {
	case AlgorithmBrute:
		return NewBruteIndex(p)
	case AlgorithmBallTree:
		return NewBallTree(p, cfg.LeafSize)
	default:
		return Build(p)
	}
}

type prebuiltIndex struct {
	index SpatialIndex
}

func (p prebuiltIndex) resolve(*Config) SpatialIndex { return p.index }

// TargetIndex wraps an already built index, which is used regardless of
// Config.Algorithm.
func TargetIndex(index SpatialIndex) TargetInput {
	return prebuiltIndex{index: index}
}

// resolveTargets turns t into an index. The result is nil when there are
// no targets.
func resolveTargets(t TargetInput, cfg *Config) SpatialIndex {
	if t == nil {
		return nil
	}
	idx := t.resolve(cfg)
	if idx == nil || idx.Len() == 0 {
		return nil
	}
	return idx
}
