package tractdist

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Point3 is a point in 3D space.
type Point3 = r3.Vec

var (
	// ErrFlatLength is returned when a flat coordinate buffer is not a
	// whole number of xyz triples.
	ErrFlatLength = errors.New("tractdist: flat coordinate length is not a multiple of 3")

	// ErrNotAffine is returned when a 4×4 world transform has a bottom row
	// other than (0, 0, 0, 1).
	ErrNotAffine = errors.New("tractdist: world transform is not affine")
)

// PointsFromFlat converts flat xyz triples into points.
func PointsFromFlat(coords []float64) ([]Point3, error) {
	if len(coords)%3 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrFlatLength, len(coords))
	}
	pts := make([]Point3, len(coords)/3)
	for i := range pts {
		pts[i] = Point3{X: coords[3*i], Y: coords[3*i+1], Z: coords[3*i+2]}
	}
	return pts, nil
}

// pointAt reads point i from a flat float32 position buffer.
func pointAt(positions []float32, i int) Point3 {
	return Point3{
		X: float64(positions[3*i]),
		Y: float64(positions[3*i+1]),
		Z: float64(positions[3*i+2]),
	}
}

// squaredDistance returns |a-b|².
func squaredDistance(a, b Point3) float64 {
	return r3.Norm2(r3.Sub(a, b))
}

// Transform is an affine 4×4 world transform, stored as its 3×3 linear part
// and a translation. The zero value is the identity.
type Transform struct {
	linear      *r3.Mat
	translation Point3
}

// IdentityTransform returns the identity transform.
func IdentityTransform() Transform { return Transform{} }

// NewTransform builds a transform from the 16 elements of a 4×4 matrix in
// column-major order, the layout WebGL and most scene graphs use. It returns
// ErrNotAffine if the bottom row is not (0, 0, 0, 1).
func NewTransform(elements [16]float64) (Transform, error) {
	if elements[3] != 0 || elements[7] != 0 || elements[11] != 0 || elements[15] != 1 {
		return Transform{}, fmt.Errorf("%w: bottom row is (%g, %g, %g, %g)",
			ErrNotAffine, elements[3], elements[7], elements[11], elements[15])
	}
	if elements == identityElements {
		return Transform{}, nil
	}
	// Column-major: element (row, col) lives at col*4 + row.
	linear := r3.NewMat([]float64{
		elements[0], elements[4], elements[8],
		elements[1], elements[5], elements[9],
		elements[2], elements[6], elements[10],
	})
	return Transform{
		linear:      linear,
		translation: Point3{X: elements[12], Y: elements[13], Z: elements[14]},
	}, nil
}

var identityElements = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// TransformFromMatrix converts a 4×4 gonum matrix into a Transform.
// It returns an error if m is not 4×4 or its bottom row is not (0, 0, 0, 1).
func TransformFromMatrix(m mat.Matrix) (Transform, error) {
	r, c := m.Dims()
	if r != 4 || c != 4 {
		return Transform{}, fmt.Errorf("tractdist: world transform must be 4x4, got %dx%d", r, c)
	}
	var elements [16]float64
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			elements[col*4+row] = m.At(row, col)
		}
	}
	return NewTransform(elements)
}

// IsIdentity reports whether t leaves every point unchanged.
func (t Transform) IsIdentity() bool { return t.linear == nil }

// Apply maps p through t.
func (t Transform) Apply(p Point3) Point3 {
	if t.linear == nil {
		return p
	}
	return r3.Add(t.linear.MulVec(p), t.translation)
}

// Matrix returns t as a 4×4 row-major gonum matrix.
func (t Transform) Matrix() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	m.Set(3, 3, 1)
	if t.linear == nil {
		for i := 0; i < 3; i++ {
			m.Set(i, i, 1)
		}
		return m
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, t.linear.At(i, j))
		}
	}
	m.Set(0, 3, t.translation.X)
	m.Set(1, 3, t.translation.Y)
	m.Set(2, 3, t.translation.Z)
	return m
}
