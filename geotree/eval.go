package geotree

import "math"

// Sdf3D evaluates the signed distance at p. Negative is inside, positive is
// outside; the result is a true SDF or a conservative Lipschitz-1 upper
// bound for composite operators.
//
// Complexity: O(size of subtree rooted at n) per call; no memoization (the
// tree is immutable and cheap enough to re-walk).
func (n *Node) Sdf3D(p Vec3) float64 {
	switch n.Kind {
	case KindHalfSpace:
		return p.sub(n.HalfSpaceConst).dot(n.HalfSpaceNormal)
	case KindSphere:
		return p.sub(n.SphereCenter).length() - n.SphereRadius
	case KindExtrude:
		return sdfExtrude(n, p)
	case KindTransform:
		local := n.xformInverse.Apply(p)
		return n.XformShape.Sdf3D(local)
	case KindUnion3D:
		return foldMin3D(n.Shapes, p)
	case KindIntersection3D:
		return foldMax3D(n.Shapes, p)
	case KindDifference3D:
		return math.Max(n.DiffBase.Sdf3D(p), -n.DiffSub.Sdf3D(p))
	case KindNegate3D:
		return -n.NegateShape.Sdf3D(p)
	default:
		// A 2D node was asked for a 3D distance: project onto its own plane
		// (z=0) and evaluate there. This never occurs through well-typed
		// evaluator calls but keeps Sdf3D total.
		return n.Sdf2D(Vec2{X: p.X, Y: p.Y})
	}
}

// Sdf2D evaluates the signed distance at a 2D point p.
func (n *Node) Sdf2D(p Vec2) float64 {
	switch n.Kind {
	case KindHalfPlane:
		d := n.HalfPlaneP2.sub(n.HalfPlaneP1)
		length := d.length()
		if length < 1e-12 {
			return 0
		}
		nHat := Vec2{X: -d.Y / length, Y: d.X / length}
		return nHat.dot(p.sub(n.HalfPlaneP1))
	case KindCircle:
		return p.sub(n.CircleCenter).length() - n.CircleRadius
	case KindPolygon:
		return sdfPolygon(n.PolygonVerts, p)
	case KindRect:
		return sdfRect(n.RectMin, n.RectExt, p)
	case KindTransform:
		local := n.xformInverse.Apply(Vec3{X: p.X, Y: p.Y})
		return n.XformShape.Sdf2D(Vec2{X: local.X, Y: local.Y})
	case KindUnion2D:
		return foldMin2D(n.Shapes, p)
	case KindIntersection2D:
		return foldMax2D(n.Shapes, p)
	case KindDifference2D:
		return math.Max(n.DiffBase.Sdf2D(p), -n.DiffSub.Sdf2D(p))
	case KindNegate2D:
		return -n.NegateShape.Sdf2D(p)
	default:
		return n.Sdf3D(Vec3{X: p.X, Y: p.Y})
	}
}

func foldMin3D(shapes []*Node, p Vec3) float64 {
	if len(shapes) == 0 {
		return math.Inf(1)
	}
	m := shapes[0].Sdf3D(p)
	for _, s := range shapes[1:] {
		if v := s.Sdf3D(p); v < m {
			m = v
		}
	}
	return m
}

func foldMax3D(shapes []*Node, p Vec3) float64 {
	if len(shapes) == 0 {
		return math.Inf(-1)
	}
	m := shapes[0].Sdf3D(p)
	for _, s := range shapes[1:] {
		if v := s.Sdf3D(p); v > m {
			m = v
		}
	}
	return m
}

func foldMin2D(shapes []*Node, p Vec2) float64 {
	if len(shapes) == 0 {
		return math.Inf(1)
	}
	m := shapes[0].Sdf2D(p)
	for _, s := range shapes[1:] {
		if v := s.Sdf2D(p); v < m {
			m = v
		}
	}
	return m
}

func foldMax2D(shapes []*Node, p Vec2) float64 {
	if len(shapes) == 0 {
		return math.Inf(-1)
	}
	m := shapes[0].Sdf2D(p)
	for _, s := range shapes[1:] {
		if v := s.Sdf2D(p); v > m {
			m = v
		}
	}
	return m
}

// sdfExtrude extrudes a 2D shape along n.ExtrudeDir by n.ExtrudeHeight
// (half-height convention): sdf3d(p) = max(sdf2d(proj), |h_component| - h/2).
func sdfExtrude(n *Node, p Vec3) float64 {
	hComponent := p.dot(n.ExtrudeDir)
	// Project p onto the plane perpendicular to ExtrudeDir to get local 2D
	// coordinates. Build an orthonormal in-plane basis from ExtrudeDir.
	u, v := orthonormalBasis(n.ExtrudeDir)
	proj := Vec2{X: p.dot(u), Y: p.dot(v)}
	sdf2 := n.ExtrudeShape.Sdf2D(proj)
	heightTerm := math.Abs(hComponent) - n.ExtrudeHeight/2
	return math.Max(sdf2, heightTerm)
}

// orthonormalBasis returns two unit vectors u, v perpendicular to dir and
// to each other, deterministically chosen (no arbitrary "pick the most
// perpendicular axis" branch — always derived from the same reference
// axis unless dir is parallel to it, matching scalar/batch parity).
func orthonormalBasis(dir Vec3) (u, v Vec3) {
	ref := Vec3{X: 0, Y: 0, Z: 1}
	if math.Abs(dir.dot(ref)) > 0.99 {
		ref = Vec3{X: 1, Y: 0, Z: 0}
	}
	u = crossV3(ref, dir).normalized()
	v = crossV3(dir, u).normalized()
	return u, v
}

func crossV3(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// sdfRect computes the axis-aligned rectangle SDF with corner min and
// extent ext (standard rounded-box formula with zero rounding).
func sdfRect(min, ext Vec2, p Vec2) float64 {
	center := Vec2{X: min.X + ext.X/2, Y: min.Y + ext.Y/2}
	half := Vec2{X: ext.X / 2, Y: ext.Y / 2}
	d := Vec2{X: math.Abs(p.X-center.X) - half.X, Y: math.Abs(p.Y-center.Y) - half.Y}
	outside := Vec2{X: math.Max(d.X, 0), Y: math.Max(d.Y, 0)}
	inside := math.Min(math.Max(d.X, d.Y), 0)
	return outside.length() + inside
}

// sdfPolygon computes the standard winding-based 2D polygon SDF: unsigned
// distance to the nearest edge, signed negative by the even-odd winding
// test.
func sdfPolygon(verts []Vec2, p Vec2) float64 {
	if len(verts) < 3 {
		return math.Inf(1)
	}
	d := p.sub(verts[0]).dot(p.sub(verts[0]))
	inside := false
	n := len(verts)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := verts[i], verts[j]
		e := vj.sub(vi)
		w := p.sub(vi)
		t := clamp01(w.dot(e) / math.Max(e.dot(e), 1e-20))
		proj := Vec2{X: vi.X + e.X*t, Y: vi.Y + e.Y*t}
		dist := p.sub(proj).dot(p.sub(proj))
		if dist < d {
			d = dist
		}
		if ((vi.Y > p.Y) != (vj.Y > p.Y)) &&
			(p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X) {
			inside = !inside
		}
	}
	dist := math.Sqrt(d)
	if inside {
		return -dist
	}
	return dist
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Gradient3D returns the gradient of the SDF at p and the SDF value at p in
// one call (one-sided finite differences, ε=1e-3), avoiding a redundant
// sample at p.
func (n *Node) Gradient3D(p Vec3) (Vec3, float64) {
	const eps = 1e-3
	v0 := n.Sdf3D(p)
	gx := (n.Sdf3D(Vec3{X: p.X + eps, Y: p.Y, Z: p.Z}) - v0) / eps
	gy := (n.Sdf3D(Vec3{X: p.X, Y: p.Y + eps, Z: p.Z}) - v0) / eps
	gz := (n.Sdf3D(Vec3{X: p.X, Y: p.Y, Z: p.Z + eps}) - v0) / eps
	return Vec3{X: gx, Y: gy, Z: gz}, v0
}

// Gradient2D is the 2D analogue of Gradient3D.
func (n *Node) Gradient2D(p Vec2) (Vec2, float64) {
	const eps = 1e-3
	v0 := n.Sdf2D(p)
	gx := (n.Sdf2D(Vec2{X: p.X + eps, Y: p.Y}) - v0) / eps
	gy := (n.Sdf2D(Vec2{X: p.X, Y: p.Y + eps}) - v0) / eps
	return Vec2{X: gx, Y: gy}, v0
}
