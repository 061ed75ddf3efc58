package builtin

import (
	"math"

	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/evaluator"
	"github.com/nanocad-org/structkit/geotree"
	"github.com/nanocad-org/structkit/network"
	"github.com/nanocad-org/structkit/unitcell"
)

func geo3D(k dtype.Kind) dtype.DataType { return dtype.Leaf(k) }

// latticeFrame3D resolves a primitive's optional unit_cell input at
// argument index i: when wired, the primitive's coordinates are lattice
// units, so everything scales by the cell's a-length and the summary
// carries that cell; unwired, coordinates are world units in the identity
// cell.
func latticeFrame3D(args []dtype.NetworkResult, i int) (cell unitcell.UnitCell, scale float64) {
	c, wired := evaluator.OrDefault(args, i, dtype.None()).ExtractUnitCell()
	if !wired || c == nil {
		return unitcell.NewUnitCell(unitcell.Vec3{X: 1}, unitcell.Vec3{Y: 1}, unitcell.Vec3{Z: 1}), 1
	}
	la, _, _ := c.Lengths()
	if la < 1e-12 {
		la = 1
	}
	return *c, la
}

type cuboidData struct{ baseData }

func (cuboidData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	center, ok := evaluator.RequiredInput(args, 0, "center").ExtractVec3()
	if !ok {
		return dtype.ErrorResult("cuboid: center must be a Vec3")
	}
	size, ok := evaluator.RequiredInput(args, 1, "size").ExtractVec3()
	if !ok {
		return dtype.ErrorResult("cuboid: size must be a Vec3")
	}
	cell, scale := latticeFrame3D(args, 2)
	c := toGeoVec3(center.Scale(scale))
	ext := geotree.Vec3{X: size.X * scale, Y: size.Y * scale, Z: size.Z * scale}
	min := geotree.Vec3{X: c.X - ext.X/2, Y: c.Y - ext.Y/2, Z: c.Z - ext.Z/2}
	return dtype.Geometry3DResult(&geotree.Summary3D{
		UnitCell:       cell,
		FrameTransform: geotree.Identity(),
		Root:           geotree.NewRectCuboid(min, ext),
	})
}

type sphereData struct{ baseData }

func (sphereData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	center, ok := evaluator.RequiredInput(args, 0, "center").ExtractVec3()
	if !ok {
		return dtype.ErrorResult("sphere: center must be a Vec3")
	}
	radius, ok := evaluator.RequiredInput(args, 1, "radius").ExtractFloat()
	if !ok {
		return dtype.ErrorResult("sphere: radius must be a Float")
	}
	cell, scale := latticeFrame3D(args, 2)
	return dtype.Geometry3DResult(&geotree.Summary3D{
		UnitCell:       cell,
		FrameTransform: geotree.Identity(),
		Root:           geotree.NewSphere(toGeoVec3(center.Scale(scale)), radius*scale),
	})
}

type halfSpaceData struct{ baseData }

func (halfSpaceData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	normal, ok := evaluator.RequiredInput(args, 0, "normal").ExtractVec3()
	if !ok {
		return dtype.ErrorResult("half_space: normal must be a Vec3")
	}
	point, ok := evaluator.RequiredInput(args, 1, "point").ExtractVec3()
	if !ok {
		return dtype.ErrorResult("half_space: point must be a Vec3")
	}
	return dtype.Geometry3DResult(identitySummary3D(geotree.NewHalfSpace(toGeoVec3(normal), toGeoVec3(point))))
}

type union3DData struct{ baseData }

func (union3DData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	elems, _ := evaluator.RequiredInput(args, 0, "shapes").ExtractArray()
	summaries := geometryArraySummaries3D(elems)
	if len(summaries) == 0 {
		return dtype.ErrorResult("union: at least one shape is required")
	}
	if !sameUnitCell3D(summaries) {
		return dtype.ErrorResult("union: unit cell mismatch between shapes")
	}
	return dtype.Geometry3DResult(&geotree.Summary3D{
		UnitCell:       summaries[0].UnitCell,
		FrameTransform: geotree.Identity(),
		Root:           geotree.NewUnion3D(roots3D(summaries)...),
	})
}

type intersect3DData struct{ baseData }

func (intersect3DData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	elems, _ := evaluator.RequiredInput(args, 0, "shapes").ExtractArray()
	summaries := geometryArraySummaries3D(elems)
	if len(summaries) == 0 {
		return dtype.ErrorResult("intersect: at least one shape is required")
	}
	if !sameUnitCell3D(summaries) {
		return dtype.ErrorResult("intersect: unit cell mismatch between shapes")
	}
	return dtype.Geometry3DResult(&geotree.Summary3D{
		UnitCell:       summaries[0].UnitCell,
		FrameTransform: geotree.Identity(),
		Root:           geotree.NewIntersection3D(roots3D(summaries)...),
	})
}

type diff3DData struct{ baseData }

func (diff3DData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	base, ok := evaluator.RequiredInput(args, 0, "base").ExtractGeometry3D()
	if !ok {
		return dtype.ErrorResult("diff: base must be a Geometry3D")
	}
	sub, ok := evaluator.RequiredInput(args, 1, "subtract").ExtractGeometry3D()
	if !ok {
		return dtype.ErrorResult("diff: subtract must be a Geometry3D")
	}
	if !base.UnitCell.Equal(sub.UnitCell) {
		return dtype.ErrorResult("diff: unit cell mismatch between base and subtract")
	}
	return dtype.Geometry3DResult(&geotree.Summary3D{
		UnitCell:       base.UnitCell,
		FrameTransform: geotree.Identity(),
		Root:           geotree.NewDifference3D(base.Root, sub.Root),
	})
}

type negate3DData struct{ baseData }

func (negate3DData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	shape, ok := evaluator.RequiredInput(args, 0, "shape").ExtractGeometry3D()
	if !ok {
		return dtype.ErrorResult("negate: shape must be a Geometry3D")
	}
	return dtype.Geometry3DResult(&geotree.Summary3D{
		UnitCell:       shape.UnitCell,
		FrameTransform: shape.FrameTransform,
		Root:           geotree.NewNegate3D(shape.Root),
	})
}

// rotationFromEuler builds the rotation matrix R = Rz·Ry·Rx (angles in
// radians): a rotation about the fixed X axis, then Y, then Z. It is the
// kernel geo_transform needs and unitcell's Mat3 (determinant, inverse and
// matrix-vector product only) does not provide.
func rotationFromEuler(rx, ry, rz float64) [3][3]float64 {
	cx, sx := math.Cos(rx), math.Sin(rx)
	cy, sy := math.Cos(ry), math.Sin(ry)
	cz, sz := math.Cos(rz), math.Sin(rz)
	rX := [3][3]float64{{1, 0, 0}, {0, cx, -sx}, {0, sx, cx}}
	rY := [3][3]float64{{cy, 0, sy}, {0, 1, 0}, {-sy, 0, cy}}
	rZ := [3][3]float64{{cz, -sz, 0}, {sz, cz, 0}, {0, 0, 1}}
	return mul3(mul3(rZ, rY), rX)
}

func mul3(a, b [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += a[i][k] * b[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

type geoTransformData struct{ baseData }

func (geoTransformData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	shape, ok := evaluator.RequiredInput(args, 0, "shape").ExtractGeometry3D()
	if !ok {
		return dtype.ErrorResult("geo_transform: shape must be a Geometry3D")
	}
	translation, _ := evaluator.OrDefault(args, 1, dtype.Vec3Result(unitcell.Vec3{})).ExtractVec3()
	rotation, _ := evaluator.OrDefault(args, 2, dtype.Vec3Result(unitcell.Vec3{})).ExtractVec3()

	xform := geotree.Xform{
		Rotation:    rotationFromEuler(rotation.X, rotation.Y, rotation.Z),
		Translation: toGeoVec3(translation),
	}
	return dtype.Geometry3DResult(&geotree.Summary3D{
		UnitCell:       shape.UnitCell,
		FrameTransform: xform,
		Root:           geotree.NewTransform(xform, shape.Root),
	})
}

func primitive3DEntries() map[string]catalogEntry {
	geometry3D := geo3D(dtype.KindGeometry3D)
	vec3 := dtype.Leaf(dtype.KindVec3)
	floatT := dtype.Leaf(dtype.KindFloat)
	unitCellT := dtype.Leaf(dtype.KindUnitCell)
	return map[string]catalogEntry{
		"cuboid": {
			nodeType: network.NodeType{Name: "cuboid", InputName: []string{"center", "size", "unit_cell"}, InputType: []dtype.DataType{vec3, vec3, unitCellT}, Output: geometry3D},
			newData:  func() network.NodeData { return &cuboidData{} },
		},
		"sphere": {
			nodeType: network.NodeType{Name: "sphere", InputName: []string{"center", "radius", "unit_cell"}, InputType: []dtype.DataType{vec3, floatT, unitCellT}, Output: geometry3D},
			newData:  func() network.NodeData { return &sphereData{} },
		},
		"half_space": {
			nodeType: network.NodeType{Name: "half_space", InputName: []string{"normal", "point"}, InputType: []dtype.DataType{vec3, vec3}, Output: geometry3D},
			newData:  func() network.NodeData { return &halfSpaceData{} },
		},
		"union": {
			nodeType: network.NodeType{Name: "union", InputName: []string{"shapes"}, InputType: []dtype.DataType{dtype.ArrayOf(geometry3D)}, Output: geometry3D},
			newData:  func() network.NodeData { return &union3DData{} },
		},
		"intersect": {
			nodeType: network.NodeType{Name: "intersect", InputName: []string{"shapes"}, InputType: []dtype.DataType{dtype.ArrayOf(geometry3D)}, Output: geometry3D},
			newData:  func() network.NodeData { return &intersect3DData{} },
		},
		"diff": {
			nodeType: network.NodeType{Name: "diff", InputName: []string{"base", "subtract"}, InputType: []dtype.DataType{geometry3D, geometry3D}, Output: geometry3D},
			newData:  func() network.NodeData { return &diff3DData{} },
		},
		"negate": {
			nodeType: network.NodeType{Name: "negate", InputName: []string{"shape"}, InputType: []dtype.DataType{geometry3D}, Output: geometry3D},
			newData:  func() network.NodeData { return &negate3DData{} },
		},
		"geo_transform": {
			nodeType: network.NodeType{Name: "geo_transform", InputName: []string{"shape", "translation", "rotation"}, InputType: []dtype.DataType{geometry3D, vec3, vec3}, Output: geometry3D},
			newData:  func() network.NodeData { return &geoTransformData{} },
		},
	}
}
