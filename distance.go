package tractdist

import "math"

// NoTargetDistance is written for tracts whose distance cannot be computed,
// such as when there are no targets.
const NoTargetDistance = 1e8

// TractDistance returns the exact minimum distance from any of points to the
// nearest target in idx, querying every point. It returns NoTargetDistance
// when idx is nil or empty, or when points is empty.
func TractDistance(idx SpatialIndex, points []Point3) float64 {
	if idx == nil || idx.Len() == 0 {
		return NoTargetDistance
	}
	bestSq := math.Inf(1)
	for _, p := range points {
		if _, d := idx.Nearest(p); d < bestSq {
			bestSq = d
		}
	}
	return finiteDistance(bestSq)
}

// finiteDistance converts a squared distance into a distance, mapping +Inf
// to NoTargetDistance.
func finiteDistance(sq float64) float64 {
	if math.IsInf(sq, 1) {
		return NoTargetDistance
	}
	return math.Sqrt(sq)
}
