// Package unitcell: UnitCell, DrawingPlane, and the lattice<->real
// coordinate conversions, built on fixed 3x3/2x2 linear-algebra kernels
// (a crystallographic basis never needs a general NxN solve).
package unitcell

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the default tolerance for UnitCell equality and plane-vector
// searches (ε=1e-5 per the basis-vector difference, as specified).
const Epsilon = 1e-5

// ErrZeroMillerIndex indicates a DrawingPlane was constructed from the zero
// Miller index, which has no well-defined plane.
var ErrZeroMillerIndex = errors.New("unitcell: Miller index must be non-zero")

// UnitCell holds three real-space basis vectors a, b, c.
type UnitCell struct {
	A, B, C Vec3
}

// NewUnitCell constructs a UnitCell directly from three basis vectors.
func NewUnitCell(a, b, c Vec3) UnitCell { return UnitCell{A: a, B: b, C: c} }

// NewUnitCellFromParams constructs a UnitCell from lengths (la,lb,lc) and
// angles in degrees (alpha between b,c; beta between a,c; gamma between
// a,b), using the standard crystallographic convention: a lies along X, b
// lies in the XY plane.
func NewUnitCellFromParams(la, lb, lc, alphaDeg, betaDeg, gammaDeg float64) UnitCell {
	alpha := alphaDeg * math.Pi / 180
	beta := betaDeg * math.Pi / 180
	gamma := gammaDeg * math.Pi / 180
	a := Vec3{X: la}
	bx := lb * math.Cos(gamma)
	by := lb * math.Sin(gamma)
	b := Vec3{X: bx, Y: by}

	cx := lc * math.Cos(beta)
	cy := lc * (math.Cos(alpha) - math.Cos(beta)*math.Cos(gamma)) / math.Sin(gamma)
	cz2 := lc*lc - cx*cx - cy*cy
	if cz2 < 0 {
		cz2 = 0
	}
	c := Vec3{X: cx, Y: cy, Z: math.Sqrt(cz2)}
	return UnitCell{A: a, B: b, C: c}
}

// Lengths returns |a|, |b|, |c|.
func (u UnitCell) Lengths() (la, lb, lc float64) {
	return u.A.Length(), u.B.Length(), u.C.Length()
}

// Angles returns alpha (b,c), beta (a,c), gamma (a,b) in degrees,
// round-tripping with NewUnitCellFromParams.
func (u UnitCell) Angles() (alpha, beta, gamma float64) {
	ang := func(x, y Vec3) float64 {
		lx, ly := x.Length(), y.Length()
		if lx < 1e-12 || ly < 1e-12 {
			return 0
		}
		cosv := x.Dot(y) / (lx * ly)
		if cosv > 1 {
			cosv = 1
		} else if cosv < -1 {
			cosv = -1
		}
		return math.Acos(cosv) * 180 / math.Pi
	}
	return ang(u.B, u.C), ang(u.A, u.C), ang(u.A, u.B)
}

// mat3 returns the basis matrix with a, b, c as columns.
func (u UnitCell) mat3() Mat3 {
	return Mat3{
		{u.A.X, u.B.X, u.C.X},
		{u.A.Y, u.B.Y, u.C.Y},
		{u.A.Z, u.B.Z, u.C.Z},
	}
}

// DVec3LatticeToReal converts fractional (lattice) coordinates to real-space
// coordinates: real = frac.x*a + frac.y*b + frac.z*c.
func (u UnitCell) DVec3LatticeToReal(frac Vec3) Vec3 {
	return u.mat3().MulVec(frac)
}

// IVec3LatticeToReal converts an integer lattice coordinate to real space.
func (u UnitCell) IVec3LatticeToReal(frac IVec3) Vec3 {
	return u.DVec3LatticeToReal(frac.ToFloat())
}

// DVec3RealToLattice converts real-space coordinates back to fractional
// lattice coordinates via the inverse basis matrix.
//
// Errors:
//   - ErrSingular (via unitcell.Mat3.Inverse) if the basis is degenerate.
func (u UnitCell) DVec3RealToLattice(real Vec3) (Vec3, error) {
	inv, err := u.mat3().Inverse()
	if err != nil {
		return Vec3{}, fmt.Errorf("unitcell: RealToLattice: %w", err)
	}
	return inv.MulVec(real), nil
}

// DVec2LatticeToReal converts a 2D fractional coordinate using a and b only
// (z contribution from c is ignored; callers working a 2D plane should use
// DrawingPlane.EffectiveUnitCell instead).
func (u UnitCell) DVec2LatticeToReal(frac Vec2) Vec2 {
	return Vec2{
		X: frac.X*u.A.X + frac.Y*u.B.X,
		Y: frac.X*u.A.Y + frac.Y*u.B.Y,
	}
}

// PlaneProps is the result of a Miller-index plane query: the plane normal
// (unit length, real-space) and the interplanar d-spacing.
type PlaneProps struct {
	Normal   Vec3
	DSpacing float64
}

// IVec3MillerIndexToPlaneProps computes the real-space plane normal and
// d-spacing for the Miller index m, via the reciprocal lattice
// (g* = m_x a* + m_y b* + m_z c*, with a*,b*,c* the rows of the inverse
// basis matrix), d = 1/|g*|.
//
// Errors:
//   - ErrZeroMillerIndex if m is the zero vector.
func (u UnitCell) IVec3MillerIndexToPlaneProps(m IVec3) (PlaneProps, error) {
	if m.IsZero() {
		return PlaneProps{}, ErrZeroMillerIndex
	}
	inv, err := u.mat3().Inverse()
	if err != nil {
		return PlaneProps{}, fmt.Errorf("unitcell: MillerIndexToPlaneProps: %w", err)
	}
	// Reciprocal basis vectors are the rows of inv (since inv*basis = I).
	aStar := Vec3{X: inv[0][0], Y: inv[0][1], Z: inv[0][2]}
	bStar := Vec3{X: inv[1][0], Y: inv[1][1], Z: inv[1][2]}
	cStar := Vec3{X: inv[2][0], Y: inv[2][1], Z: inv[2][2]}
	gStar := aStar.Scale(float64(m.X)).Add(bStar.Scale(float64(m.Y))).Add(cStar.Scale(float64(m.Z)))
	mag := gStar.Length()
	if mag < 1e-12 {
		return PlaneProps{}, fmt.Errorf("unitcell: MillerIndexToPlaneProps: degenerate reciprocal vector: %w", ErrSingular)
	}
	return PlaneProps{Normal: gStar.Normalized(), DSpacing: 1 / mag}, nil
}

// Equal reports whether u and o are equal within Epsilon, compared
// component-wise on the difference of each basis vector.
func (u UnitCell) Equal(o UnitCell) bool {
	close := func(x, y Vec3) bool {
		d := x.Sub(y)
		return math.Abs(d.X) < Epsilon && math.Abs(d.Y) < Epsilon && math.Abs(d.Z) < Epsilon
	}
	return close(u.A, o.A) && close(u.B, o.B) && close(u.C, o.C)
}
