package builtin

import (
	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/evaluator"
	"github.com/nanocad-org/structkit/network"
	"github.com/nanocad-org/structkit/unitcell"
)

// diamondLatticeConstant is the cubic diamond lattice parameter in
// Angstroms, the default cell new designs start from.
const diamondLatticeConstant = 3.567

// unitCellData holds a unit cell's crystallographic parameters (lengths in
// Angstroms, angles in degrees). The zero value resolves to the cubic
// diamond cell.
type unitCellData struct {
	baseData
	LA, LB, LC         float64
	Alpha, Beta, Gamma float64
}

func (d *unitCellData) resolved() (la, lb, lc, alpha, beta, gamma float64) {
	la, lb, lc = d.LA, d.LB, d.LC
	if la == 0 {
		la = diamondLatticeConstant
	}
	if lb == 0 {
		lb = la
	}
	if lc == 0 {
		lc = la
	}
	alpha, beta, gamma = d.Alpha, d.Beta, d.Gamma
	if alpha == 0 {
		alpha = 90
	}
	if beta == 0 {
		beta = 90
	}
	if gamma == 0 {
		gamma = 90
	}
	return la, lb, lc, alpha, beta, gamma
}

func (d *unitCellData) Eval([]dtype.NetworkResult) dtype.NetworkResult {
	la, lb, lc, alpha, beta, gamma := d.resolved()
	cell := unitcell.NewUnitCellFromParams(la, lb, lc, alpha, beta, gamma)
	return dtype.UnitCellResult(&cell)
}

func (d *unitCellData) GetSubtitle() string {
	la, lb, lc, _, _, _ := d.resolved()
	if la == lb && lb == lc {
		return "a=" + formatFloat(la)
	}
	return formatFloat(la) + " " + formatFloat(lb) + " " + formatFloat(lc)
}

func (d *unitCellData) GetTextProperties() map[string]string {
	la, lb, lc, alpha, beta, gamma := d.resolved()
	return map[string]string{
		"a": formatFloat(la), "b": formatFloat(lb), "c": formatFloat(lc),
		"alpha": formatFloat(alpha), "beta": formatFloat(beta), "gamma": formatFloat(gamma),
	}
}

func (d *unitCellData) SetTextProperties(p map[string]string) {
	d.LA = parseFloat(p["a"])
	d.LB = parseFloat(p["b"])
	d.LC = parseFloat(p["c"])
	d.Alpha = parseFloat(p["alpha"])
	d.Beta = parseFloat(p["beta"])
	d.Gamma = parseFloat(p["gamma"])
}

// drawingPlaneData anchors a 2D sketching frame in a lattice from a unit
// cell, a Miller index, and a center point.
type drawingPlaneData struct{ baseData }

func (drawingPlaneData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	cell, ok := evaluator.RequiredInput(args, 0, "unit_cell").ExtractUnitCell()
	if !ok {
		return dtype.ErrorResult("drawing_plane: unit_cell must be a UnitCell")
	}
	miller, ok := evaluator.RequiredInput(args, 1, "miller_index").ExtractIVec3()
	if !ok {
		return dtype.ErrorResult("drawing_plane: miller_index must be an IVec3")
	}
	center, _ := evaluator.OrDefault(args, 2, dtype.Vec3Result(unitcell.Vec3{})).ExtractVec3()

	plane, err := unitcell.NewDrawingPlane(*cell, miller, center)
	if err != nil {
		return dtype.ErrorResult("drawing_plane: %s", err.Error())
	}
	return dtype.DrawingPlaneResult(&plane)
}

func latticeEntries() map[string]catalogEntry {
	unitCellT := dtype.Leaf(dtype.KindUnitCell)
	planeT := dtype.Leaf(dtype.KindDrawingPlane)
	ivec3 := dtype.Leaf(dtype.KindIVec3)
	vec3 := dtype.Leaf(dtype.KindVec3)
	return map[string]catalogEntry{
		"unit_cell": {
			nodeType: withName("unit_cell", network.NodeType{Output: unitCellT}),
			newData:  func() network.NodeData { return &unitCellData{} },
		},
		"drawing_plane": {
			nodeType: network.NodeType{Name: "drawing_plane", InputName: []string{"unit_cell", "miller_index", "center"}, InputType: []dtype.DataType{unitCellT, ivec3, vec3}, Output: planeT},
			newData:  func() network.NodeData { return &drawingPlaneData{} },
		},
	}
}
