package tractdist

import (
	"fmt"
	"math"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"
)

// Algorithm selects the index built from TargetPoints.
type Algorithm string

const (
	AlgorithmAuto     Algorithm = "auto"
	AlgorithmKDTree   Algorithm = "kdtree"
	AlgorithmBallTree Algorithm = "balltree"
	AlgorithmBrute    Algorithm = "brute"
)

// Bound selects the lower bound used to skip nearest-target queries while
// walking a tract.
type Bound string

const (
	// BoundExact skips a point only when the distance of the last queried
	// point, minus the path length walked since, still exceeds the tract's
	// best distance. By the triangle inequality a skipped point cannot
	// improve the minimum, so results match TractDistance.
	BoundExact Bound = "exact"

	// BoundLegacy skips a point while the tract's best distance, minus the
	// path length walked since the last query, is positive. It issues fewer
	// queries but may over-report the distance of a tract that turns back
	// toward a target. It never under-reports.
	BoundLegacy Bound = "legacy"
)

// Config controls distance computation.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// MaxInstanceCount caps the work of one call: once the segLen of the
	// processed tracts adds up to at least this many instances, the
	// remaining tracts are left untouched. 0 means unlimited. Must be >= 0.
	// Default: 0.
	MaxInstanceCount int

	// WorldTransform maps streamline points into the space of the targets
	// before querying. The zero value is the identity. Default: identity.
	WorldTransform Transform

	// Algorithm selects the index built from TargetPoints. "auto" and
	// "kdtree" build a KDTree; "balltree" builds a BallTree; "brute" scans
	// every target. Ignored for TargetIndex. Default: "auto".
	Algorithm Algorithm

	// LeafSize controls the maximum number of points in a BallTree leaf.
	// Only used with "balltree". Must be >= 1. Default: 16.
	LeafSize int

	// Bound selects the query skip bound. Default: "exact".
	Bound Bound

	// Workers controls the number of goroutines used by
	// ComputeDistancesParallel. 0 means use runtime.NumCPU().
	// Default: 0 (auto).
	Workers int
}

// Stats reports the work done by one call.
type Stats struct {
	// TractsProcessed counts tracts whose distance was written.
	TractsProcessed int
	// TractsSkipped counts hidden or empty tracts.
	TractsSkipped int
	// InstancesProcessed is the sum of segLen over processed tracts.
	InstancesProcessed int
	// Queries counts nearest-target queries issued.
	Queries int
	// QueriesSkipped counts points whose query the bound made unnecessary.
	QueriesSkipped int
	// BudgetReached reports that MaxInstanceCount stopped the call.
	BudgetReached bool
}

func (s *Stats) add(o Stats) {
	s.TractsProcessed += o.TractsProcessed
	s.TractsSkipped += o.TractsSkipped
	s.InstancesProcessed += o.InstancesProcessed
	s.Queries += o.Queries
	s.QueriesSkipped += o.QueriesSkipped
	s.BudgetReached = s.BudgetReached || o.BudgetReached
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Algorithm: AlgorithmAuto,
		Bound:     BoundExact,
		LeafSize:  16,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.MaxInstanceCount < 0 {
		return fmt.Errorf("tractdist: MaxInstanceCount must be >= 0 (0 means unlimited), got %d", cfg.MaxInstanceCount)
	}
	switch cfg.Algorithm {
	case AlgorithmAuto, AlgorithmKDTree, AlgorithmBallTree, AlgorithmBrute:
		// valid
	default:
		return fmt.Errorf("tractdist: invalid Algorithm %q", cfg.Algorithm)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("tractdist: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	switch cfg.Bound {
	case BoundExact, BoundLegacy:
		// valid
	default:
		return fmt.Errorf("tractdist: invalid Bound %q", cfg.Bound)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("tractdist: Workers must be >= 0 (0 means NumCPU), got %d", cfg.Workers)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAuto
	}
	if cfg.Bound == "" {
		cfg.Bound = BoundExact
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 16
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// budget returns the instance budget, with 0 meaning unlimited.
func (cfg *Config) budget() int {
	if cfg.MaxInstanceCount == 0 {
		return math.MaxInt
	}
	return cfg.MaxInstanceCount
}

// ComputeDistances writes, for every visible tract of s, the minimum
// distance from the tract's path to the nearest target into the tract's
// instance slots of out. Tracts are visited in TractRange order. Hidden
// tracts (segLen <= 0 or a negative first InstanceWeight) and tracts past
// the MaxInstanceCount budget are left untouched. A MaxInstanceCount of 0
// means unlimited, not a budget of zero: every visible tract is processed.
// With no targets, every processed tract receives NoTargetDistance.
//
// The buffers are not validated; see Streamlines.Validate. The only error is
// an invalid Config, reported before out is modified.
func ComputeDistances(targets TargetInput, out []float32, s *Streamlines, cfg Config) (Stats, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return Stats{}, err
	}
	e := newEngine(resolveTargets(targets, &cfg), out, s, cfg)
	return e.run(0, s.NumTracts(), cfg.budget()), nil
}

// engine holds the per-call state shared by all tracts.
type engine struct {
	index SpatialIndex // nil when there are no targets
	out   []float32
	s     *Streamlines
	xf    Transform
	bound Bound
}

func newEngine(index SpatialIndex, out []float32, s *Streamlines, cfg Config) *engine {
	return &engine{
		index: index,
		out:   out,
		s:     s,
		xf:    cfg.WorldTransform,
		bound: cfg.Bound,
	}
}

// run processes plan entries [from, to) until budget instances are done.
func (e *engine) run(from, to, budget int) Stats {
	var st Stats
	for i := from; i < to; i++ {
		_, segLen, bufStart := e.s.tract(i)
		if segLen <= 0 || e.s.InstanceWeight[bufStart] < 0 {
			st.TractsSkipped++
			continue
		}

		dist := float32(e.tractDistance(bufStart, segLen, &st))
		slots := e.out[bufStart : bufStart+segLen]
		for k := range slots {
			slots[k] = dist
		}

		st.TractsProcessed++
		st.InstancesProcessed += segLen
		if st.InstancesProcessed >= budget {
			st.BudgetReached = true
			break
		}
	}
	return st
}

// tractDistance walks n points starting at start and returns the minimum
// distance to the nearest target.
func (e *engine) tractDistance(start, n int, st *Stats) float64 {
	if e.index == nil {
		return NoTargetDistance
	}

	bestSq := math.Inf(1)
	// slack is a lower bound on how far the current point is from improving
	// on bestSq; it shrinks by every step walked.
	var slack float64
	var prev Point3
	for k := 0; k < n; k++ {
		p := e.xf.Apply(pointAt(e.s.Positions, start+k))
		if k > 0 {
			slack -= r3.Norm(r3.Sub(p, prev))
		}
		prev = p
		if slack > 0 {
			st.QueriesSkipped++
			continue
		}

		_, dSq := e.index.Nearest(p)
		st.Queries++
		if dSq < bestSq {
			bestSq = dSq
		}
		best := math.Sqrt(bestSq)
		if e.bound == BoundLegacy {
			slack = best
		} else {
			slack = math.Sqrt(dSq) - best
		}
	}
	return finiteDistance(bestSq)
}
