package unitcell_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocad-org/structkit/unitcell"
)

func cubic(a float64) unitcell.UnitCell {
	return unitcell.NewUnitCell(
		unitcell.Vec3{X: a},
		unitcell.Vec3{Y: a},
		unitcell.Vec3{Z: a},
	)
}

func TestUnitCell_LatticeToRealRoundTrip(t *testing.T) {
	cell := cubic(3.57)
	frac := unitcell.Vec3{X: 0.25, Y: -1.5, Z: 2.0}
	real := cell.DVec3LatticeToReal(frac)

	back, err := cell.DVec3RealToLattice(real)
	require.NoError(t, err)
	assert.InDelta(t, frac.X, back.X, 1e-9)
	assert.InDelta(t, frac.Y, back.Y, 1e-9)
	assert.InDelta(t, frac.Z, back.Z, 1e-9)
}

func TestUnitCell_Equal(t *testing.T) {
	a := cubic(3.57)
	b := cubic(3.57 + 1e-7)
	c := cubic(3.6)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestUnitCell_MillerIndexPlaneProps(t *testing.T) {
	cell := cubic(1.0)
	props, err := cell.IVec3MillerIndexToPlaneProps(unitcell.IVec3{X: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, props.DSpacing, 1e-9)
	assert.InDelta(t, 1.0, math.Abs(props.Normal.X), 1e-9)

	_, err = cell.IVec3MillerIndexToPlaneProps(unitcell.IVec3{})
	assert.ErrorIs(t, err, unitcell.ErrZeroMillerIndex)
}

func TestDrawingPlane_UnitStepsStayInPlane(t *testing.T) {
	cell := cubic(1.0)
	plane, err := unitcell.NewDrawingPlane(cell, unitcell.IVec3{X: 0, Y: 0, Z: 1}, unitcell.Vec3{})
	require.NoError(t, err)

	props, err := cell.IVec3MillerIndexToPlaneProps(plane.MillerIndex)
	require.NoError(t, err)

	origin := plane.Lattice2DToWorld3D(unitcell.Vec2{})
	stepU := plane.Lattice2DToWorld3D(unitcell.Vec2{X: 1})
	stepV := plane.Lattice2DToWorld3D(unitcell.Vec2{Y: 1})

	deltaU := stepU.Sub(origin)
	deltaV := stepV.Sub(origin)

	assert.InDelta(t, 0, props.Normal.Dot(deltaU), 1e-9)
	assert.InDelta(t, 0, props.Normal.Dot(deltaV), 1e-9)

	expectedLen := cell.IVec3LatticeToReal(plane.UAxis).Length()
	assert.InDelta(t, expectedLen, deltaU.Length(), 1e-9)
}

func TestDrawingPlane_RejectsZeroMiller(t *testing.T) {
	cell := cubic(1.0)
	_, err := unitcell.NewDrawingPlane(cell, unitcell.IVec3{}, unitcell.Vec3{})
	assert.ErrorIs(t, err, unitcell.ErrZeroMillerIndex)
}

func TestMat3_InverseAndSingular(t *testing.T) {
	m := unitcell.Mat3{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}}
	inv, err := m.Inverse()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, inv[0][0], 1e-12)

	singular := unitcell.Mat3{{1, 1, 0}, {1, 1, 0}, {0, 0, 1}}
	_, err = singular.Inverse()
	assert.ErrorIs(t, err, unitcell.ErrSingular)
}

func TestGcd3(t *testing.T) {
	assert.Equal(t, int64(2), unitcell.Gcd3(4, 6, 2))
	assert.Equal(t, int64(0), unitcell.Gcd3(0, 0, 0))
}
