package tractdist

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialTractRange(t *testing.T) {
	plan := SequentialTractRange([]int32{0, 3, 3, 7})
	assert.Equal(t, []int32{
		0, 3, 0,
		1, 0, 3,
		2, 4, 3,
	}, plan)

	assert.Empty(t, SequentialTractRange([]int32{0}))
	assert.Empty(t, SequentialTractRange(nil))
}

func TestShuffledTractRange_IsPermutation(t *testing.T) {
	offsets := []int32{0, 2, 5, 6, 10, 11, 15}
	seq := SequentialTractRange(offsets)
	shuffled := ShuffledTractRange(offsets, rand.New(rand.NewSource(42)))
	require.Len(t, shuffled, len(seq))

	triples := func(plan []int32) [][3]int32 {
		out := make([][3]int32, 0, len(plan)/3)
		for i := 0; i+2 < len(plan); i += 3 {
			out = append(out, [3]int32{plan[i], plan[i+1], plan[i+2]})
		}
		sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
		return out
	}
	assert.Equal(t, triples(seq), triples(shuffled))
}

func TestShuffledTractRange_SameResultsAsSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	targets := TargetPoints(randomPoints(rng, 10, 60))
	s := randomWalkStreamlines(rng, 25, 3, 40, 1)

	want := make([]float32, len(s.InstanceWeight))
	_, err := ComputeDistances(targets, want, s, DefaultConfig())
	require.NoError(t, err)

	s.TractRange = ShuffledTractRange(s.PointOffset, rng)
	got := make([]float32, len(s.InstanceWeight))
	_, err = ComputeDistances(targets, got, s, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestStreamlines_TractPoints(t *testing.T) {
	s := makeStreamlines(
		[]Point3{{X: 1}, {X: 2}},
		[]Point3{{Y: 1}, {Y: 2}, {Y: 3}},
	)
	assert.Equal(t, 2, s.NumTracts())
	assert.Equal(t, 5, s.NumPoints())
	assert.Equal(t, []Point3{{Y: 1}, {Y: 2}, {Y: 3}}, s.TractPoints(1))

	s.TractRange[1] = 0
	assert.Nil(t, s.TractPoints(0))
}

func TestStreamlines_Validate(t *testing.T) {
	valid := func() *Streamlines {
		return makeStreamlines([]Point3{{X: 1}, {X: 2}}, []Point3{{X: 3}})
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name string
		mod  func(*Streamlines)
		msg  string
	}{
		{"partial position", func(s *Streamlines) { s.Positions = s.Positions[:4] }, "Positions length"},
		{"no offsets", func(s *Streamlines) { s.PointOffset = nil }, "sentinel entry"},
		{"decreasing offsets", func(s *Streamlines) { s.PointOffset = []int32{0, 2, 1} }, "decreases"},
		{"negative first offset", func(s *Streamlines) { s.PointOffset[0] = -1 }, "negative"},
		{"sentinel past end", func(s *Streamlines) { s.PointOffset[2] = 9 }, "exceeds point count"},
		{"partial plan", func(s *Streamlines) { s.TractRange = s.TractRange[:4] }, "TractRange length"},
		{"tract past end", func(s *Streamlines) { s.TractRange[5] = 3 }, "outside"},
		{"short weights", func(s *Streamlines) { s.InstanceWeight = s.InstanceWeight[:2] }, "InstanceWeight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mod(s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestResetDistances(t *testing.T) {
	out := []float32{1, 2, 3}
	ResetDistances(out)
	assert.Equal(t, []float32{NoTargetDistance, NoTargetDistance, NoTargetDistance}, out)
}
