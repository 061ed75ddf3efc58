package visualize

import (
	"math"

	"github.com/nanocad-org/structkit/geotree"
)

// projectOntoSurface3D refines a point believed to be near the zero level
// set via full Newton steps (cur - value*g/|g|^2), stopping early once
// |sdf| falls under tolerance. Where the gradient degenerates
// (|g|^2 < 1e-10) it falls back to one undamped step, cur - value*g.
// It never runs more than maxIterations steps, so a saddle region with a
// vanishing gradient cannot spin forever. Returns the projected point and
// the unit surface normal g/|g| at it.
func projectOntoSurface3D(n *geotree.Node, p geotree.Vec3, maxIterations int, tolerance float64) (geotree.Vec3, geotree.Vec3) {
	cur := p
	var grad geotree.Vec3
	for i := 0; i < maxIterations; i++ {
		g, v := n.Gradient3D(cur)
		grad = g
		if abs(v) <= tolerance {
			break
		}
		gradLenSq := g.X*g.X + g.Y*g.Y + g.Z*g.Z
		if gradLenSq < 1e-10 {
			cur = geotree.Vec3{
				X: cur.X - v*g.X,
				Y: cur.Y - v*g.Y,
				Z: cur.Z - v*g.Z,
			}
			continue
		}
		step := v / gradLenSq
		cur = geotree.Vec3{
			X: cur.X - step*g.X,
			Y: cur.Y - step*g.Y,
			Z: cur.Z - step*g.Z,
		}
	}
	return cur, normalize3(grad)
}

func projectOntoSurface2D(n *geotree.Node, p geotree.Vec2, maxIterations int, tolerance float64) (geotree.Vec2, geotree.Vec2) {
	cur := p
	var grad geotree.Vec2
	for i := 0; i < maxIterations; i++ {
		g, v := n.Gradient2D(cur)
		grad = g
		if abs(v) <= tolerance {
			break
		}
		gradLenSq := g.X*g.X + g.Y*g.Y
		if gradLenSq < 1e-10 {
			cur = geotree.Vec2{
				X: cur.X - v*g.X,
				Y: cur.Y - v*g.Y,
			}
			continue
		}
		step := v / gradLenSq
		cur = geotree.Vec2{
			X: cur.X - step*g.X,
			Y: cur.Y - step*g.Y,
		}
	}
	return cur, normalize2(grad)
}

func normalize3(v geotree.Vec3) geotree.Vec3 {
	l := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if l < 1e-12 {
		return geotree.Vec3{}
	}
	return geotree.Vec3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
}

func normalize2(v geotree.Vec2) geotree.Vec2 {
	l := math.Sqrt(v.X*v.X + v.Y*v.Y)
	if l < 1e-12 {
		return geotree.Vec2{}
	}
	return geotree.Vec2{X: v.X / l, Y: v.Y / l}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
