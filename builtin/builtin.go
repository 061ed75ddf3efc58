// Package builtin is the concrete node-type catalog: CSG primitives and
// their 2D analogues, boolean operators, transforms, lattice and motif
// nodes, crystal-fill and atom-edit nodes, closures, float arithmetic,
// and a literal node per scalar DataType, each implementing
// network.NodeData and registered under a fixed NodeType shape.
package builtin

import (
	"github.com/nanocad-org/structkit/dtype"
	"github.com/nanocad-org/structkit/network"
	"github.com/nanocad-org/structkit/registry"
)

// baseData is embedded by every NodeData in this package that has no
// custom type, subtitle, or text-property behavior, so each concrete
// type only has to implement Eval (and override the rest where it
// actually carries state).
type baseData struct{}

func (baseData) CalculateCustomNodeType() (dtype.DataType, bool) { return dtype.DataType{}, false }
func (baseData) GetSubtitle() string { return "" }
func (baseData) GetTextProperties() map[string]string { return nil }
func (baseData) SetTextProperties(map[string]string) {}

// catalog lists every built-in node type's static shape alongside the
// zero-value NodeData constructor used to create a fresh instance of it
// (e.g. when textfmt/cnndio decode a node record).
type catalogEntry struct {
	nodeType network.NodeType
	newData  func() network.NodeData
}

func entries() map[string]catalogEntry {
	out := make(map[string]catalogEntry)
	addAll(out, literalEntries())
	addAll(out, parameterEntries())
	addAll(out, primitive3DEntries())
	addAll(out, primitive2DEntries())
	addAll(out, crystalEntries())
	addAll(out, latticeEntries())
	addAll(out, closureEntries())
	addAll(out, mathEntries())
	return out
}

func addAll(dst map[string]catalogEntry, src map[string]catalogEntry) {
	for k, v := range src {
		dst[k] = v
	}
}

// RegisterAll registers every built-in node type's NodeType shape into reg.
func RegisterAll(reg *registry.NodeTypeRegistry) {
	for name, e := range entries() {
		reg.RegisterBuiltIn(name, e.nodeType)
	}
}

// Resolve implements textfmt.Resolver/cnndio.Resolver: look up a built-in
// node type's static shape by name.
func Resolve(typeName string) (network.NodeType, bool) {
	e, ok := entries()[typeName]
	return e.nodeType, ok
}

// NewNodeData implements textfmt.NewNodeData/cnndio.NewNodeData: construct
// a fresh, zero-valued NodeData for a built-in type name.
func NewNodeData(typeName string) (network.NodeData, error) {
	e, ok := entries()[typeName]
	if !ok {
		return nil, unknownTypeError(typeName)
	}
	return e.newData(), nil
}

func unknownTypeError(typeName string) error {
	return &unknownTypeErr{typeName}
}

type unknownTypeErr struct{ name string }

func (e *unknownTypeErr) Error() string { return "builtin: unknown node type: " + e.name }
