package builtin

import (
	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/evaluator"
	"github.com/nanocad-org/structkit/geotree"
	"github.com/nanocad-org/structkit/network"
	"github.com/nanocad-org/structkit/unitcell"
)

type circleData struct{ baseData }

func (circleData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	center, ok := evaluator.RequiredInput(args, 0, "center").ExtractVec2()
	if !ok {
		return dtype.ErrorResult("circle: center must be a Vec2")
	}
	radius, ok := evaluator.RequiredInput(args, 1, "radius").ExtractFloat()
	if !ok {
		return dtype.ErrorResult("circle: radius must be a Float")
	}
	return dtype.Geometry2DResult(identitySummary2D(geotree.NewCircle(toGeoVec2(center), radius)))
}

type halfPlaneData struct{ baseData }

func (halfPlaneData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	p1, ok := evaluator.RequiredInput(args, 0, "p1").ExtractVec2()
	if !ok {
		return dtype.ErrorResult("half_plane: p1 must be a Vec2")
	}
	p2, ok := evaluator.RequiredInput(args, 1, "p2").ExtractVec2()
	if !ok {
		return dtype.ErrorResult("half_plane: p2 must be a Vec2")
	}
	return dtype.Geometry2DResult(identitySummary2D(geotree.NewHalfPlane(toGeoVec2(p1), toGeoVec2(p2))))
}

type polygonData struct{ baseData }

func (polygonData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	elems, _ := evaluator.RequiredInput(args, 0, "vertices").ExtractArray()
	if len(elems) < 3 {
		return dtype.ErrorResult("polygon: at least 3 vertices are required")
	}
	verts := make([]geotree.Vec2, 0, len(elems))
	for _, e := range elems {
		v, ok := e.ExtractVec2()
		if !ok {
			return dtype.ErrorResult("polygon: every vertex must be a Vec2")
		}
		verts = append(verts, toGeoVec2(v))
	}
	return dtype.Geometry2DResult(identitySummary2D(geotree.NewPolygon(verts)))
}

type rectData struct{ baseData }

func (rectData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	min, ok := evaluator.RequiredInput(args, 0, "min").ExtractVec2()
	if !ok {
		return dtype.ErrorResult("rect: min must be a Vec2")
	}
	size, ok := evaluator.RequiredInput(args, 1, "size").ExtractVec2()
	if !ok {
		return dtype.ErrorResult("rect: size must be a Vec2")
	}
	return dtype.Geometry2DResult(identitySummary2D(geotree.NewRect(toGeoVec2(min), toGeoVec2(size))))
}

type extrudeData struct{ baseData }

func (extrudeData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	shape, ok := evaluator.RequiredInput(args, 0, "shape").ExtractGeometry2D()
	if !ok {
		return dtype.ErrorResult("extrude: shape must be a Geometry2D")
	}
	height, ok := evaluator.RequiredInput(args, 1, "height").ExtractFloat()
	if !ok {
		return dtype.ErrorResult("extrude: height must be a Float")
	}
	direction, _ := evaluator.OrDefault(args, 2, dtype.Vec3Result(defaultExtrudeDir())).ExtractVec3()
	return dtype.Geometry3DResult(&geotree.Summary3D{
		UnitCell:       shape.UnitCell,
		FrameTransform: shape.FrameTransform,
		Root:           geotree.NewExtrude(height, toGeoVec3(direction), shape.Root),
	})
}

type union2DData struct{ baseData }

func (union2DData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	elems, _ := evaluator.RequiredInput(args, 0, "shapes").ExtractArray()
	summaries := geometryArraySummaries2D(elems)
	if len(summaries) == 0 {
		return dtype.ErrorResult("union_2d: at least one shape is required")
	}
	if !sameUnitCell2D(summaries) {
		return dtype.ErrorResult("union_2d: unit cell mismatch between shapes")
	}
	return dtype.Geometry2DResult(&geotree.Summary2D{
		UnitCell:       summaries[0].UnitCell,
		FrameTransform: geotree.Identity(),
		Root:           geotree.NewUnion2D(roots2D(summaries)...),
	})
}

type intersect2DData struct{ baseData }

func (intersect2DData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	elems, _ := evaluator.RequiredInput(args, 0, "shapes").ExtractArray()
	summaries := geometryArraySummaries2D(elems)
	if len(summaries) == 0 {
		return dtype.ErrorResult("intersect_2d: at least one shape is required")
	}
	if !sameUnitCell2D(summaries) {
		return dtype.ErrorResult("intersect_2d: unit cell mismatch between shapes")
	}
	return dtype.Geometry2DResult(&geotree.Summary2D{
		UnitCell:       summaries[0].UnitCell,
		FrameTransform: geotree.Identity(),
		Root:           geotree.NewIntersection2D(roots2D(summaries)...),
	})
}

type diff2DData struct{ baseData }

func (diff2DData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	base, ok := evaluator.RequiredInput(args, 0, "base").ExtractGeometry2D()
	if !ok {
		return dtype.ErrorResult("diff_2d: base must be a Geometry2D")
	}
	sub, ok := evaluator.RequiredInput(args, 1, "subtract").ExtractGeometry2D()
	if !ok {
		return dtype.ErrorResult("diff_2d: subtract must be a Geometry2D")
	}
	if !base.UnitCell.Equal(sub.UnitCell) {
		return dtype.ErrorResult("diff_2d: unit cell mismatch between base and subtract")
	}
	return dtype.Geometry2DResult(&geotree.Summary2D{
		UnitCell:       base.UnitCell,
		FrameTransform: geotree.Identity(),
		Root:           geotree.NewDifference2D(base.Root, sub.Root),
	})
}

type negate2DData struct{ baseData }

func (negate2DData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	shape, ok := evaluator.RequiredInput(args, 0, "shape").ExtractGeometry2D()
	if !ok {
		return dtype.ErrorResult("negate_2d: shape must be a Geometry2D")
	}
	return dtype.Geometry2DResult(&geotree.Summary2D{
		UnitCell:       shape.UnitCell,
		FrameTransform: shape.FrameTransform,
		Root:           geotree.NewNegate2D(shape.Root),
	})
}

func defaultExtrudeDir() unitcell.Vec3 { return unitcell.Vec3{Z: 1} }

func primitive2DEntries() map[string]catalogEntry {
	geometry2D := dtype.Leaf(dtype.KindGeometry2D)
	geometry3D := dtype.Leaf(dtype.KindGeometry3D)
	vec2 := dtype.Leaf(dtype.KindVec2)
	vec3 := dtype.Leaf(dtype.KindVec3)
	floatT := dtype.Leaf(dtype.KindFloat)
	return map[string]catalogEntry{
		"circle": {
			nodeType: network.NodeType{Name: "circle", InputName: []string{"center", "radius"}, InputType: []dtype.DataType{vec2, floatT}, Output: geometry2D},
			newData:  func() network.NodeData { return &circleData{} },
		},
		"half_plane": {
			nodeType: network.NodeType{Name: "half_plane", InputName: []string{"p1", "p2"}, InputType: []dtype.DataType{vec2, vec2}, Output: geometry2D},
			newData:  func() network.NodeData { return &halfPlaneData{} },
		},
		"polygon": {
			nodeType: network.NodeType{Name: "polygon", InputName: []string{"vertices"}, InputType: []dtype.DataType{dtype.ArrayOf(vec2)}, Output: geometry2D},
			newData:  func() network.NodeData { return &polygonData{} },
		},
		"rect": {
			nodeType: network.NodeType{Name: "rect", InputName: []string{"min", "size"}, InputType: []dtype.DataType{vec2, vec2}, Output: geometry2D},
			newData:  func() network.NodeData { return &rectData{} },
		},
		"extrude": {
			nodeType: network.NodeType{Name: "extrude", InputName: []string{"shape", "height", "direction"}, InputType: []dtype.DataType{geometry2D, floatT, vec3}, Output: geometry3D},
			newData:  func() network.NodeData { return &extrudeData{} },
		},
		"union_2d": {
			nodeType: network.NodeType{Name: "union_2d", InputName: []string{"shapes"}, InputType: []dtype.DataType{dtype.ArrayOf(geometry2D)}, Output: geometry2D},
			newData:  func() network.NodeData { return &union2DData{} },
		},
		"intersect_2d": {
			nodeType: network.NodeType{Name: "intersect_2d", InputName: []string{"shapes"}, InputType: []dtype.DataType{dtype.ArrayOf(geometry2D)}, Output: geometry2D},
			newData:  func() network.NodeData { return &intersect2DData{} },
		},
		"diff_2d": {
			nodeType: network.NodeType{Name: "diff_2d", InputName: []string{"base", "subtract"}, InputType: []dtype.DataType{geometry2D, geometry2D}, Output: geometry2D},
			newData:  func() network.NodeData { return &diff2DData{} },
		},
		"negate_2d": {
			nodeType: network.NodeType{Name: "negate_2d", InputName: []string{"shape"}, InputType: []dtype.DataType{geometry2D}, Output: geometry2D},
			newData:  func() network.NodeData { return &negate2DData{} },
		},
	}
}
