// Package unitcell provides lattice bases, Miller-index plane construction,
// and 2D/3D coordinate maps used to anchor drawing planes in a crystal
// lattice.
//
// Purpose:
//   - Declare the fixed-size linear-algebra kernels (determinant, inverse,
//     matrix-vector product) used by UnitCell and DrawingPlane.
//
// Notes:
//   - Only 3x3 and 2x2 forms are implemented; callers needing a general
//     NxN solve are out of scope for this package (there are none in this
//     module — every lattice basis is fixed-dimension).
//
// Determinism:
//   - No floating-point reduction order depends on map iteration; all
//     loops are fixed 0..n-1.
package unitcell

import (
	"errors"
	"fmt"
)

// ErrSingular indicates a matrix has no inverse (determinant within
// epsilon of zero).
var ErrSingular = errors.New("unitcell: matrix is singular")

// Mat3 is a row-major 3x3 matrix of float64 basis vectors (as columns: the
// i-th basis vector of m is (m[0][i], m[1][i], m[2][i])).
type Mat3 [3][3]float64

// Mat2 is a row-major 2x2 matrix.
type Mat2 [2][2]float64

// Det returns the determinant of m.
//
// Complexity: O(1) (fixed unrolled 3x3 cofactor expansion).
func (m Mat3) Det() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Inverse returns the inverse of m via the adjugate/determinant formula.
//
// Errors:
//   - ErrSingular if |det(m)| < 1e-12.
//
// Complexity: O(1).
//
// AI-Hints:
//   - For fixed 3x3 lattice bases, the adjugate formula is both faster and
//     more deterministic than a general Doolittle LU factorization; the
//     latter is reserved for the NxN case this package deliberately omits.
func (m Mat3) Inverse() (Mat3, error) {
	det := m.Det()
	if det > -1e-12 && det < 1e-12 {
		return Mat3{}, fmt.Errorf("unitcell: Inverse: det=%g: %w", det, ErrSingular)
	}
	invDet := 1.0 / det
	var out Mat3
	out[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * invDet
	out[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invDet
	out[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invDet
	out[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * invDet
	out[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invDet
	out[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * invDet
	out[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * invDet
	out[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * invDet
	out[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * invDet
	return out, nil
}

// MulVec returns m*v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Det returns the determinant of a 2x2 matrix.
func (m Mat2) Det() float64 {
	return m[0][0]*m[1][1] - m[0][1]*m[1][0]
}

// MulVec2 returns m*v for a 2x2 matrix.
func (m Mat2) MulVec2(v Vec2) Vec2 {
	return Vec2{X: m[0][0]*v.X + m[0][1]*v.Y, Y: m[1][0]*v.X + m[1][1]*v.Y}
}
