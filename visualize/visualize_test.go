package visualize_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocad-org/structkit/geotree"
	"github.com/nanocad-org/structkit/visualize"
)

func TestExtractSurfacePoints3DFindsSphereShell(t *testing.T) {
	sphere := geotree.NewSphere(geotree.Vec3{}, 1.0)
	bounds := visualize.Bounds3{Min: geotree.Vec3{X: -2, Y: -2, Z: -2}, Max: geotree.Vec3{X: 2, Y: 2, Z: 2}}
	opts := visualize.DefaultOptions()
	opts.MaxDepth = 5

	points := visualize.ExtractSurfacePoints3D(sphere, bounds, opts)
	require.NotEmpty(t, points)

	for _, p := range points {
		d := sphere.Sdf3D(p.Position)
		assert.InDelta(t, 0, d, 0.05, "surface point should lie near the zero level set")

		// A sphere's surface normal points radially outward and is unit
		// length.
		normalLen := math.Sqrt(p.Normal.X*p.Normal.X + p.Normal.Y*p.Normal.Y + p.Normal.Z*p.Normal.Z)
		assert.InDelta(t, 1, normalLen, 1e-6)
		radialLen := math.Sqrt(p.Position.X*p.Position.X + p.Position.Y*p.Position.Y + p.Position.Z*p.Position.Z)
		require.Greater(t, radialLen, 0.0)
		dot := (p.Normal.X*p.Position.X + p.Normal.Y*p.Position.Y + p.Normal.Z*p.Position.Z) / radialLen
		assert.InDelta(t, 1, dot, 0.01)
	}
}

func TestExtractSurfacePoints3DEmptyWhenBoundsMissSurface(t *testing.T) {
	sphere := geotree.NewSphere(geotree.Vec3{}, 1.0)
	farBounds := visualize.Bounds3{Min: geotree.Vec3{X: 10, Y: 10, Z: 10}, Max: geotree.Vec3{X: 12, Y: 12, Z: 12}}
	points := visualize.ExtractSurfacePoints3D(sphere, farBounds, visualize.DefaultOptions())
	assert.Empty(t, points)
}

func TestExtractSurfacePoints2DFindsCircleShell(t *testing.T) {
	circle := geotree.NewCircle(geotree.Vec2{}, 1.0)
	bounds := visualize.Bounds2{Min: geotree.Vec2{X: -2, Y: -2}, Max: geotree.Vec2{X: 2, Y: 2}}
	opts := visualize.DefaultOptions()
	opts.MaxDepth = 5

	points := visualize.ExtractSurfacePoints2D(circle, bounds, opts)
	require.NotEmpty(t, points)
	for _, p := range points {
		d := circle.Sdf2D(p.Position)
		assert.InDelta(t, 0, d, 0.05)

		normalLen := math.Sqrt(p.Normal.X*p.Normal.X + p.Normal.Y*p.Normal.Y)
		assert.InDelta(t, 1, normalLen, 1e-6)
	}
}
