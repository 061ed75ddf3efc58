package unitcell

import (
	"errors"
	"fmt"
)

// ErrNoInPlaneVector indicates the primitive in-plane basis search could not
// find any non-zero integer vector u0 with u0·m = 0 (never expected for a
// non-zero Miller index, but guarded defensively).
var ErrNoInPlaneVector = errors.New("unitcell: no in-plane vector found for Miller index")

// DrawingPlane is a 2D sketching frame anchored in a 3D lattice: a plane
// through center with normal given by a Miller index m, carrying a
// canonical primitive in-plane basis (u, v).
type DrawingPlane struct {
	UnitCell    UnitCell
	MillerIndex IVec3
	Center      Vec3

	// UAxis, VAxis are primitive (gcd=1) integer lattice vectors spanning
	// the plane m·x=0, oriented so that UAxis×VAxis is parallel to m.
	UAxis, VAxis IVec3
}

// candidateAxes enumerates axis-aligned starting vectors tried in turn by
// findInPlaneVector's cross-product fallback.
var candidateAxes = [3]IVec3{{X: 1}, {Y: 1}, {Z: 1}}

// findInPlaneVector returns any non-zero integer vector u0 with u0·m = 0,
// preferring the axis-perpendicular construction (−m.y, m.x, 0) when
// m.z != 0, else falling back to a cross product with a basis axis not
// parallel to m.
func findInPlaneVector(m IVec3) (IVec3, error) {
	if m.Z != 0 {
		u0 := IVec3{X: -m.Y, Y: m.X, Z: 0}
		if !u0.IsZero() {
			return u0.Reduced(), nil
		}
	}
	for _, axis := range candidateAxes {
		u0 := axis.Cross(m)
		if !u0.IsZero() {
			return u0.Reduced(), nil
		}
	}
	return IVec3{}, ErrNoInPlaneVector
}

// NewDrawingPlane constructs a DrawingPlane anchored at center with normal
// given by the Miller index m.
//
// Steps (exact, per the lattice-plane contract):
//  1. Reject m = 0.
//  2. Find any non-zero integer u0 with u0·m = 0 (axis-perpendicular
//     construction, or cross product with a non-parallel basis axis).
//  3. Reduce u0 to primitive form (divide by gcd of its components).
//  4. Compute v0 = m × u0 (integer cross product), reduce to primitive.
//  5. Orient (u, v) so that u × v is parallel (not antiparallel) to m.
//
// Errors:
//   - ErrZeroMillerIndex if m is the zero vector.
func NewDrawingPlane(cell UnitCell, m IVec3, center Vec3) (DrawingPlane, error) {
	if m.IsZero() {
		return DrawingPlane{}, ErrZeroMillerIndex
	}
	u0, err := findInPlaneVector(m)
	if err != nil {
		return DrawingPlane{}, fmt.Errorf("unitcell: NewDrawingPlane: %w", err)
	}
	v0 := m.Cross(u0).Reduced()

	// Orient (u,v) so that u×v points the same way as m (dot product > 0).
	if u0.Cross(v0).Dot(m) < 0 {
		v0 = IVec3{X: -v0.X, Y: -v0.Y, Z: -v0.Z}
	}

	return DrawingPlane{
		UnitCell:    cell,
		MillerIndex: m,
		Center:      center,
		UAxis:       u0,
		VAxis:       v0,
	}, nil
}

// Lattice2DToWorld3D maps a 2D lattice coordinate p=(p.X,p.Y) to its world
// position: center + p.X*(unit_cell·u) + p.Y*(unit_cell·v).
func (d DrawingPlane) Lattice2DToWorld3D(p Vec2) Vec3 {
	uReal := d.UnitCell.IVec3LatticeToReal(d.UAxis)
	vReal := d.UnitCell.IVec3LatticeToReal(d.VAxis)
	return d.Center.Add(uReal.Scale(p.X)).Add(vReal.Scale(p.Y))
}

// Real2DToWorld3D maps a real-valued (non-lattice-snapped) 2D offset,
// expressed in units of the u/v real-space vectors, to its world position.
// It is identical to Lattice2DToWorld3D; the distinction is semantic (the
// caller need not round p to integers).
func (d DrawingPlane) Real2DToWorld3D(p Vec2) Vec3 {
	return d.Lattice2DToWorld3D(p)
}

// EffectiveUnitCell returns the 2D-local UnitCell for this plane: a and b
// are the real-space u/v vectors rotated so that z=0 (i.e. expressed with
// z dropped once the in-plane basis has been computed — u, v already lie
// in the plane, so no rotation is required beyond using the plane's own
// 2D coordinates), and c is the out-of-plane unit-cell basis scaled so
// that extrusion by 1 unit advances exactly one lattice step along m.
func (d DrawingPlane) EffectiveUnitCell() UnitCell {
	uReal := d.UnitCell.IVec3LatticeToReal(d.UAxis)
	vReal := d.UnitCell.IVec3LatticeToReal(d.VAxis)

	a2 := Vec3{X: uReal.Length(), Y: 0, Z: 0}
	// Project vReal onto the (u, perp-to-u-in-plane) basis to preserve the
	// true angle between u and v while flattening into the local XY plane.
	uHat := uReal.Normalized()
	planeNormal := d.MillerIndex.ToFloat().Normalized()
	perp := planeNormal.Cross(uHat).Normalized()
	b2 := Vec3{X: vReal.Dot(uHat), Y: vReal.Dot(perp), Z: 0}

	props, err := d.UnitCell.IVec3MillerIndexToPlaneProps(d.MillerIndex)
	cLen := 1.0
	if err == nil {
		cLen = props.DSpacing
	}
	c2 := Vec3{X: 0, Y: 0, Z: cLen}

	return UnitCell{A: a2, B: b2, C: c2}
}
