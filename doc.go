// Package tractdist computes how close each streamline (fiber tract) of a
// tractography data set passes to a set of target points, such as electrode
// contacts or a crosshair position.
//
// Targets are indexed once in a static KD-tree. For every tract, the engine
// walks the polyline, queries the tree for the nearest target and keeps the
// minimum. A triangle-inequality lower bound lets it skip queries for points
// that cannot beat the current minimum. The result is written in place into
// a caller-owned per-segment buffer, so every segment of a tract carries the
// same value, ready to be uploaded as a GPU instance attribute.
//
// Basic usage:
//
//	s := &tractdist.Streamlines{
//		Positions:      positions,  // xyz per point
//		PointOffset:    offsets,    // nTracts+1 entries
//		TractRange:     tractdist.SequentialTractRange(offsets),
//		InstanceWeight: weights,    // < 0 hides a tract
//	}
//	out := make([]float32, len(weights))
//	stats, err := tractdist.ComputeDistances(tractdist.TargetPoints(targets), out, s, tractdist.DefaultConfig())
//	// out[k] is the distance of segment k's tract to the nearest target,
//	// or NoTargetDistance when there are no targets.
//
// To reuse an index across frames, build it once and pass it as a prebuilt
// target:
//
//	tree := tractdist.Build(targets)
//	tractdist.ComputeDistances(tractdist.TargetIndex(tree), out, s, cfg)
//
// # Skip bounds
//
// By default (Bound: "exact") the skip bound is sound and the reported
// distance equals the brute-force minimum over all tract points. Set
// Config.Bound to BoundLegacy for the older, cheaper heuristic, which may
// over-report the distance of tracts that turn back toward a target.
package tractdist
