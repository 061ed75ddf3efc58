package builtin

import (
	"strconv"

	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/network"
)

// parameterData implements network.ParameterNodeData: a subnetwork's own
// synthesized input parameter, resolved by the evaluator's frame-climbing
// dispatch rather than by Eval (see evaluator.evalParameterNode).
type parameterData struct {
	baseData
	Name      string
	SortOrder int
	Kind      dtype.Kind
}

func (d *parameterData) ParamName() string { return d.Name }
func (d *parameterData) ParamSortOrder() int { return d.SortOrder }
func (d *parameterData) CalculateCustomNodeType() (dtype.DataType, bool) {
	return dtype.Leaf(d.Kind), true
}
func (d *parameterData) GetSubtitle() string { return d.Name }

// Eval is never invoked through the evaluator's ordinary Eval dispatch
// (parameter nodes are special-cased before that dispatch runs); it exists
// only to satisfy network.NodeData.
func (d *parameterData) Eval([]dtype.NetworkResult) dtype.NetworkResult {
	return dtype.ErrorResult("builtin: parameter node evaluated outside frame-climbing dispatch")
}

func (d *parameterData) GetTextProperties() map[string]string {
	return map[string]string{
		"name":       d.Name,
		"sort_order": strconv.Itoa(d.SortOrder),
		"type":       kindName(d.Kind),
	}
}

func (d *parameterData) SetTextProperties(p map[string]string) {
	d.Name = p["name"]
	if v, err := strconv.Atoi(p["sort_order"]); err == nil {
		d.SortOrder = v
	}
	d.Kind = parseKindName(p["type"])
}

var kindsByName = map[string]dtype.Kind{
	"None": dtype.KindNone, "Bool": dtype.KindBool, "Int": dtype.KindInt,
	"Float": dtype.KindFloat, "String": dtype.KindString, "Vec2": dtype.KindVec2,
	"Vec3": dtype.KindVec3, "IVec2": dtype.KindIVec2, "IVec3": dtype.KindIVec3,
	"Geometry2D": dtype.KindGeometry2D, "Geometry3D": dtype.KindGeometry3D,
	"Atomic": dtype.KindAtomic, "Motif": dtype.KindMotif, "UnitCell": dtype.KindUnitCell,
	"DrawingPlane": dtype.KindDrawingPlane, "Closure": dtype.KindClosure, "Array": dtype.KindArray,
}

func kindName(k dtype.Kind) string { return k.String() }

func parseKindName(s string) dtype.Kind {
	if k, ok := kindsByName[s]; ok {
		return k
	}
	return dtype.KindNone
}

func parameterEntries() map[string]catalogEntry {
	return map[string]catalogEntry{
		"parameter": {
			nodeType: withName("parameter", network.NodeType{Output: dtype.Leaf(dtype.KindNone)}),
			newData:  func() network.NodeData { return &parameterData{} },
		},
	}
}
