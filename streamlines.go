package tractdist

import (
	"fmt"
	"math/rand"
)

// Streamlines holds the caller-owned buffers describing a set of tracts.
// They are laid out for direct upload as GPU attributes, hence float32/int32.
//
// Tracts are implicit: TractRange is the iteration plan, a sequence of
// (originalIndex, segLen, bufStart) triples. A tract's walk visits segLen
// points starting at point bufStart of Positions, and it owns the segLen
// instance slots starting at bufStart of InstanceWeight and of the distance
// output.
type Streamlines struct {
	// Positions holds xyz per point, shared by all tracts.
	Positions []float32

	// PointOffset[i] is the first point of tract i; the final entry is the
	// total point count.
	PointOffset []int32

	// TractRange is the iteration plan; see SequentialTractRange and
	// ShuffledTractRange.
	TractRange []int32

	// InstanceWeight holds one entry per instance slot. A tract whose first
	// slot is negative is hidden and skipped.
	InstanceWeight []float32
}

// NumTracts returns the number of entries in the iteration plan.
func (s *Streamlines) NumTracts() int { return len(s.TractRange) / 3 }

// NumPoints returns the number of points in Positions.
func (s *Streamlines) NumPoints() int { return len(s.Positions) / 3 }

// tract returns plan entry i.
func (s *Streamlines) tract(i int) (original, segLen, bufStart int) {
	return int(s.TractRange[3*i]), int(s.TractRange[3*i+1]), int(s.TractRange[3*i+2])
}

// TractPoints returns the points walked for plan entry i.
func (s *Streamlines) TractPoints(i int) []Point3 {
	_, segLen, bufStart := s.tract(i)
	if segLen <= 0 {
		return nil
	}
	pts := make([]Point3, segLen)
	for k := range pts {
		pts[k] = pointAt(s.Positions, bufStart+k)
	}
	return pts
}

// Validate checks that the buffers are mutually consistent. It is meant to
// be run once when a data set is loaded; ComputeDistances does not call it.
func (s *Streamlines) Validate() error {
	if len(s.Positions)%3 != 0 {
		return fmt.Errorf("tractdist: Positions length %d is not a multiple of 3", len(s.Positions))
	}
	nPoints := s.NumPoints()

	if len(s.PointOffset) == 0 {
		return fmt.Errorf("tractdist: PointOffset must hold at least the sentinel entry")
	}
	for i := 1; i < len(s.PointOffset); i++ {
		if s.PointOffset[i] < s.PointOffset[i-1] {
			return fmt.Errorf("tractdist: PointOffset decreases at %d (%d < %d)", i, s.PointOffset[i], s.PointOffset[i-1])
		}
	}
	if s.PointOffset[0] < 0 {
		return fmt.Errorf("tractdist: PointOffset[0] is negative (%d)", s.PointOffset[0])
	}
	if last := int(s.PointOffset[len(s.PointOffset)-1]); last > nPoints {
		return fmt.Errorf("tractdist: PointOffset sentinel %d exceeds point count %d", last, nPoints)
	}

	if len(s.TractRange)%3 != 0 {
		return fmt.Errorf("tractdist: TractRange length %d is not a multiple of 3", len(s.TractRange))
	}
	for i := 0; i < s.NumTracts(); i++ {
		_, segLen, bufStart := s.tract(i)
		if segLen <= 0 {
			continue
		}
		if bufStart < 0 || bufStart+segLen > nPoints {
			return fmt.Errorf("tractdist: tract %d covers points [%d, %d) outside [0, %d)", i, bufStart, bufStart+segLen, nPoints)
		}
		if bufStart+segLen > len(s.InstanceWeight) {
			return fmt.Errorf("tractdist: tract %d covers instances [%d, %d) but InstanceWeight has %d", i, bufStart, bufStart+segLen, len(s.InstanceWeight))
		}
	}
	return nil
}

// SequentialTractRange returns the plan that visits tracts in storage order:
// entry i is (i, pointOffset[i+1]-pointOffset[i], pointOffset[i]).
func SequentialTractRange(pointOffset []int32) []int32 {
	if len(pointOffset) < 2 {
		return []int32{}
	}
	n := len(pointOffset) - 1
	plan := make([]int32, 3*n)
	for i := 0; i < n; i++ {
		plan[3*i] = int32(i)
		plan[3*i+1] = pointOffset[i+1] - pointOffset[i]
		plan[3*i+2] = pointOffset[i]
	}
	return plan
}

// ShuffledTractRange returns the sequential plan in random order, for
// progressive processing under a MaxInstanceCount budget.
func ShuffledTractRange(pointOffset []int32, rng *rand.Rand) []int32 {
	plan := SequentialTractRange(pointOffset)
	rng.Shuffle(len(plan)/3, func(i, j int) {
		a, b := plan[3*i:3*i+3], plan[3*j:3*j+3]
		a[0], a[1], a[2], b[0], b[1], b[2] = b[0], b[1], b[2], a[0], a[1], a[2]
	})
	return plan
}

// ResetDistances fills out with NoTargetDistance. ComputeDistances leaves
// hidden and unprocessed tracts untouched, so callers reset between target
// changes when stale values must not survive.
func ResetDistances(out []float32) {
	for i := range out {
		out[i] = NoTargetDistance
	}
}
