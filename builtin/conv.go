package builtin

import (
	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/geotree"
	"github.com/nanocad-org/structkit/unitcell"
)

func toGeoVec3(v unitcell.Vec3) geotree.Vec3 { return geotree.Vec3{X: v.X, Y: v.Y, Z: v.Z} }
func toGeoVec2(v unitcell.Vec2) geotree.Vec2 { return geotree.Vec2{X: v.X, Y: v.Y} }

// identitySummary3D wraps root in a Summary3D authored in the identity
// lattice frame: primitives with no unit_cell pin (or with it unwired)
// start here; a wired unit_cell, geo_transform, or crystal_fill attaches
// a real UnitCell/FrameTransform.
func identitySummary3D(root *geotree.Node) *geotree.Summary3D {
	return &geotree.Summary3D{
		UnitCell:       unitcell.NewUnitCell(unitcell.Vec3{X: 1}, unitcell.Vec3{Y: 1}, unitcell.Vec3{Z: 1}),
		FrameTransform: geotree.Identity(),
		Root:           root,
	}
}

func identitySummary2D(root *geotree.Node) *geotree.Summary2D {
	return &geotree.Summary2D{
		UnitCell:       unitcell.NewUnitCell(unitcell.Vec3{X: 1}, unitcell.Vec3{Y: 1}, unitcell.Vec3{Z: 1}),
		FrameTransform: geotree.Identity(),
		Root:           root,
	}
}

// geometryArraySummaries3D extracts every element's Summary3D from an
// Array(Geometry3D) NetworkResult, skipping nil summaries defensively
// (a well-typed network never produces one, but a direct Eval call in a
// test harness might).
func geometryArraySummaries3D(elems []dtype.NetworkResult) []*geotree.Summary3D {
	var out []*geotree.Summary3D
	for _, e := range elems {
		if g, ok := e.ExtractGeometry3D(); ok && g != nil {
			out = append(out, g)
		}
	}
	return out
}

func geometryArraySummaries2D(elems []dtype.NetworkResult) []*geotree.Summary2D {
	var out []*geotree.Summary2D
	for _, e := range elems {
		if g, ok := e.ExtractGeometry2D(); ok && g != nil {
			out = append(out, g)
		}
	}
	return out
}

// sameUnitCell3D reports whether every summary was authored in the same
// unit cell (within unitcell.Epsilon); boolean operators reject a mix.
func sameUnitCell3D(summaries []*geotree.Summary3D) bool {
	for _, s := range summaries[1:] {
		if !summaries[0].UnitCell.Equal(s.UnitCell) {
			return false
		}
	}
	return true
}

func sameUnitCell2D(summaries []*geotree.Summary2D) bool {
	for _, s := range summaries[1:] {
		if !summaries[0].UnitCell.Equal(s.UnitCell) {
			return false
		}
	}
	return true
}

func roots3D(summaries []*geotree.Summary3D) []*geotree.Node {
	out := make([]*geotree.Node, len(summaries))
	for i, s := range summaries {
		out[i] = s.Root
	}
	return out
}

func roots2D(summaries []*geotree.Summary2D) []*geotree.Node {
	out := make([]*geotree.Node, len(summaries))
	for i, s := range summaries {
		out[i] = s.Root
	}
	return out
}
