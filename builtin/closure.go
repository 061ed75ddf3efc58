package builtin

import (
	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/evaluator"
	"github.com/nanocad-org/structkit/network"
)

// closureData implements network.ClosureNodeData: it names the user
// subnetwork the closure applies. The evaluator special-cases closure
// nodes before ordinary Eval dispatch (building the function value needs
// the live evaluation stack), so Eval here only guards against a direct
// call that bypassed that dispatch.
type closureData struct {
	baseData
	NetworkName string
}

func (d *closureData) ClosureNetworkName() string { return d.NetworkName }
func (d *closureData) GetSubtitle() string { return d.NetworkName }

func (d *closureData) Eval([]dtype.NetworkResult) dtype.NetworkResult {
	return dtype.ErrorResult("builtin: closure node evaluated outside capture dispatch")
}

func (d *closureData) GetTextProperties() map[string]string {
	return map[string]string{"network": d.NetworkName}
}

func (d *closureData) SetTextProperties(p map[string]string) {
	d.NetworkName = p["network"]
}

// callData applies a closure to an argument list gathered from its
// multi-wire args pin.
type callData struct{ baseData }

func (callData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	fn, ok := evaluator.RequiredInput(args, 0, "function").ExtractClosure()
	if !ok {
		return dtype.ErrorResult("call: function must be a Closure")
	}
	callArgs, _ := evaluator.OrDefault(args, 1, dtype.ArrayResult(dtype.KindNone, nil)).ExtractArray()
	return fn.Call(callArgs)
}

// mapData applies a closure to every element of its items pin,
// collecting the results in order. Any element application returning
// Error short-circuits as the map's own result.
type mapData struct{ baseData }

func (mapData) Eval(args []dtype.NetworkResult) dtype.NetworkResult {
	fn, ok := evaluator.RequiredInput(args, 0, "function").ExtractClosure()
	if !ok {
		return dtype.ErrorResult("map: function must be a Closure")
	}
	items, ok := evaluator.RequiredInput(args, 1, "items").ExtractArray()
	if !ok {
		return dtype.ErrorResult("map: items must be an Array")
	}

	out := make([]dtype.NetworkResult, 0, len(items))
	elemKind := dtype.KindNone
	for _, item := range items {
		r := fn.Call([]dtype.NetworkResult{item})
		if r.IsError() {
			return r
		}
		elemKind = r.Kind
		out = append(out, r)
	}
	return dtype.ArrayResult(elemKind, out)
}

func closureEntries() map[string]catalogEntry {
	closureT := dtype.DataType{Kind: dtype.KindClosure}
	// The args/items pins are untyped multi-wire pins (Array with no
	// declared element type): a closure's parameter types are only known
	// at application time, so static wiring accepts any element here and
	// the applied subnetwork's own nodes surface any mismatch as Error.
	anyArray := dtype.DataType{Kind: dtype.KindArray}
	return map[string]catalogEntry{
		"closure": {
			nodeType: withName("closure", network.NodeType{Output: closureT}),
			newData:  func() network.NodeData { return &closureData{} },
		},
		"call": {
			nodeType: network.NodeType{Name: "call", InputName: []string{"function", "args"}, InputType: []dtype.DataType{closureT, anyArray}, Output: dtype.Leaf(dtype.KindNone)},
			newData:  func() network.NodeData { return &callData{} },
		},
		"map": {
			nodeType: network.NodeType{Name: "map", InputName: []string{"function", "items"}, InputType: []dtype.DataType{closureT, anyArray}, Output: dtype.DataType{Kind: dtype.KindArray}},
			newData:  func() network.NodeData { return &mapData{} },
		},
	}
}
