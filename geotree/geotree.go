// Package geotree implements the immutable signed-distance-field DAG
// (GeoTree/GeoNode) evaluated by geometry nodes: primitives, boolean CSG,
// transforms, and extrusion, with scalar, fixed-size batched, and
// multi-threaded evaluation paths that must agree bit-for-bit.
//
// A Node is constructed once and shared via handle: values are deeply
// immutable after construction, so worker goroutines in
// BatchedImplicitEvaluator hold read-only references with no locking.
package geotree

import (
	"errors"
	"math"
	"sync/atomic"
)

// ErrUnitCellMismatch indicates a boolean operator was asked to combine
// geometries authored in incompatible unit cells.
var ErrUnitCellMismatch = errors.New("geotree: unit cell mismatch")

// BatchSize is the fixed width of a batched SDF evaluation.
const BatchSize = 1024

// nextNodeID hands out unique GeoNode ids (construction-time only; ids are
// never reused within a process).
var nextNodeID uint64

func allocNodeID() uint64 { return atomic.AddUint64(&nextNodeID, 1) }

// Kind tags which GeoNode variant a node holds.
type Kind int

// The closed set of GeoNode variants.
const (
	KindHalfSpace Kind = iota
	KindHalfPlane
	KindCircle
	KindSphere
	KindPolygon
	KindRect
	KindExtrude
	KindTransform
	KindUnion2D
	KindUnion3D
	KindIntersection2D
	KindIntersection3D
	KindDifference2D
	KindDifference3D
	KindNegate2D
	KindNegate3D
)

// Vec3 is a plain double-precision 3D vector (geotree keeps its own vector
// type rather than importing unitcell, since a GeoNode is authored before
// any particular lattice frame is known — frame_transform attaches a
// UnitCell only at the GeometrySummary level).
type Vec3 struct{ X, Y, Z float64 }

// Vec2 is a plain double-precision 2D vector.
type Vec2 struct{ X, Y float64 }

func (a Vec3) sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) length() float64 { return math.Sqrt(a.dot(a)) }
func (a Vec3) normalized() Vec3 {
	l := a.length()
	if l < 1e-12 {
		return Vec3{}
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}

func (a Vec2) sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) dot(b Vec2) float64 { return a.X*b.X + a.Y*b.Y }
func (a Vec2) length() float64 { return math.Sqrt(a.dot(a)) }

// Xform is a rigid/affine 3D transform: world = Rotation*local + Translation.
// The inverse is precomputed at construction (Transform nodes require it).
type Xform struct {
	Rotation    [3][3]float64
	Translation Vec3
}

// Identity returns the identity transform.
func Identity() Xform {
	return Xform{Rotation: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// Apply maps a local point to world space.
func (x Xform) Apply(p Vec3) Vec3 {
	r := x.Rotation
	return Vec3{
		X: r[0][0]*p.X + r[0][1]*p.Y + r[0][2]*p.Z + x.Translation.X,
		Y: r[1][0]*p.X + r[1][1]*p.Y + r[1][2]*p.Z + x.Translation.Y,
		Z: r[2][0]*p.X + r[2][1]*p.Y + r[2][2]*p.Z + x.Translation.Z,
	}
}

// inverse returns the inverse transform, assuming Rotation is orthonormal
// (its inverse is its transpose).
func (x Xform) inverse() Xform {
	r := x.Rotation
	rt := [3][3]float64{
		{r[0][0], r[1][0], r[2][0]},
		{r[0][1], r[1][1], r[2][1]},
		{r[0][2], r[1][2], r[2][2]},
	}
	inv := Xform{Rotation: rt}
	negT := Vec3{-x.Translation.X, -x.Translation.Y, -x.Translation.Z}
	inv.Translation = inv.Apply(negT)
	// inv.Apply used Rotation only for linear part; Translation must be
	// applied without re-adding inv.Translation, so recompute directly.
	inv.Translation = Vec3{
		X: rt[0][0]*negT.X + rt[0][1]*negT.Y + rt[0][2]*negT.Z,
		Y: rt[1][0]*negT.X + rt[1][1]*negT.Y + rt[1][2]*negT.Z,
		Z: rt[2][0]*negT.X + rt[2][1]*negT.Y + rt[2][2]*negT.Z,
	}
	return inv
}

// Node is an immutable GeoTree value. Exactly one of the typed fields
// matching Kind is populated; children are shared *Node handles.
type Node struct {
	id   uint64
	Kind Kind

	// Primitive fields.
	HalfSpaceNormal Vec3
	HalfSpaceConst  Vec3 // a point c on the plane
	HalfPlaneP1     Vec2
	HalfPlaneP2     Vec2
	CircleCenter    Vec2
	CircleRadius    float64
	SphereCenter    Vec3
	SphereRadius    float64
	PolygonVerts    []Vec2
	RectMin         Vec2
	RectExt         Vec2

	// Composite fields.
	ExtrudeHeight float64
	ExtrudeDir    Vec3 // out-of-plane axis (unit length)
	ExtrudeShape  *Node
	XformOf       Xform
	XformShape    *Node
	xformInverse  Xform // precomputed at construction
	Shapes        []*Node
	DiffBase      *Node
	DiffSub       *Node
	NegateShape   *Node
}

// ID returns the unique construction-time id of this node.
func (n *Node) ID() uint64 { return n.id }

// Is3D reports whether this node evaluates in 3D space.
func (n *Node) Is3D() bool {
	switch n.Kind {
	case KindHalfSpace, KindSphere, KindExtrude, KindUnion3D, KindIntersection3D, KindDifference3D, KindNegate3D:
		return true
	case KindTransform:
		return n.XformShape.Is3D()
	default:
		return false
	}
}

// Is2D reports whether this node evaluates in 2D space.
func (n *Node) Is2D() bool { return !n.Is3D() }

// NewHalfSpace constructs sdf(p) = (p-c)·n̂.
func NewHalfSpace(normal, pointOnPlane Vec3) *Node {
	return &Node{id: allocNodeID(), Kind: KindHalfSpace, HalfSpaceNormal: normal.normalized(), HalfSpaceConst: pointOnPlane}
}

// NewHalfPlane constructs the 2D half-plane through p1,p2 whose inside is
// to the left of the directed segment p1->p2.
func NewHalfPlane(p1, p2 Vec2) *Node {
	return &Node{id: allocNodeID(), Kind: KindHalfPlane, HalfPlaneP1: p1, HalfPlaneP2: p2}
}

// NewCircle constructs a 2D circle.
func NewCircle(center Vec2, radius float64) *Node {
	return &Node{id: allocNodeID(), Kind: KindCircle, CircleCenter: center, CircleRadius: radius}
}

// NewSphere constructs a 3D sphere.
func NewSphere(center Vec3, radius float64) *Node {
	return &Node{id: allocNodeID(), Kind: KindSphere, SphereCenter: center, SphereRadius: radius}
}

// NewPolygon constructs a 2D polygon from an ordered vertex loop.
func NewPolygon(verts []Vec2) *Node {
	cp := make([]Vec2, len(verts))
	copy(cp, verts)
	return &Node{id: allocNodeID(), Kind: KindPolygon, PolygonVerts: cp}
}

// NewRect constructs an axis-aligned rectangle with corner min and extent ext.
func NewRect(min, ext Vec2) *Node {
	return &Node{id: allocNodeID(), Kind: KindRect, RectMin: min, RectExt: ext}
}

// NewExtrude extrudes a 2D shape by height h along dir (which is
// normalized at construction).
func NewExtrude(height float64, dir Vec3, shape *Node) *Node {
	return &Node{id: allocNodeID(), Kind: KindExtrude, ExtrudeHeight: height, ExtrudeDir: dir.normalized(), ExtrudeShape: shape}
}

// NewTransform wraps shape in xform, precomputing its inverse.
func NewTransform(xform Xform, shape *Node) *Node {
	return &Node{id: allocNodeID(), Kind: KindTransform, XformOf: xform, XformShape: shape, xformInverse: xform.inverse()}
}

func newBoolNode(kind Kind, shapes []*Node) *Node {
	cp := make([]*Node, len(shapes))
	copy(cp, shapes)
	return &Node{id: allocNodeID(), Kind: kind, Shapes: cp}
}

// NewUnion2D returns Union(shapes) in 2D: min_i sdf_i(p).
func NewUnion2D(shapes ...*Node) *Node { return newBoolNode(KindUnion2D, shapes) }

// NewUnion3D returns Union(shapes) in 3D.
func NewUnion3D(shapes ...*Node) *Node { return newBoolNode(KindUnion3D, shapes) }

// NewIntersection2D returns Intersection(shapes) in 2D: max_i sdf_i(p).
func NewIntersection2D(shapes ...*Node) *Node { return newBoolNode(KindIntersection2D, shapes) }

// NewIntersection3D returns Intersection(shapes) in 3D.
func NewIntersection3D(shapes ...*Node) *Node { return newBoolNode(KindIntersection3D, shapes) }

// NewDifference2D returns max(sdf_base(p), -sdf_sub(p)) in 2D.
func NewDifference2D(base, sub *Node) *Node {
	return &Node{id: allocNodeID(), Kind: KindDifference2D, DiffBase: base, DiffSub: sub}
}

// NewDifference3D returns max(sdf_base(p), -sdf_sub(p)) in 3D.
func NewDifference3D(base, sub *Node) *Node {
	return &Node{id: allocNodeID(), Kind: KindDifference3D, DiffBase: base, DiffSub: sub}
}

// NewNegate2D returns -sdf_shape(p), swapping inside and outside.
func NewNegate2D(shape *Node) *Node {
	return &Node{id: allocNodeID(), Kind: KindNegate2D, NegateShape: shape}
}

// NewNegate3D is the 3D analogue of NewNegate2D.
func NewNegate3D(shape *Node) *Node {
	return &Node{id: allocNodeID(), Kind: KindNegate3D, NegateShape: shape}
}

// NewRectCuboid builds an axis-aligned 3D box from min corner and extent,
// as the intersection of six half-spaces. There is no dedicated Cuboid
// variant (the primitive set stops at Rect/Extrude in 2D plus
// HalfSpace/Sphere in 3D); the "cuboid" built-in node type composes this
// constructor instead of introducing a new DAG variant.
func NewRectCuboid(min, ext Vec3) *Node {
	max := min.add(ext)
	return NewIntersection3D(
		NewHalfSpace(Vec3{X: -1}, min),
		NewHalfSpace(Vec3{X: 1}, max),
		NewHalfSpace(Vec3{Y: -1}, min),
		NewHalfSpace(Vec3{Y: 1}, max),
		NewHalfSpace(Vec3{Z: -1}, min),
		NewHalfSpace(Vec3{Z: 1}, max),
	)
}

// DistanceTo returns the Euclidean distance between two Vec3 points.
func (a Vec3) DistanceTo(b Vec3) float64 { return a.sub(b).length() }
