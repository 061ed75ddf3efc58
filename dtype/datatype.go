// Package dtype implements the closed tagged-union value system carried on
// every node-network wire: DataType (the static pin type) and NetworkResult
// (the runtime value).
package dtype

import "fmt"

// Kind identifies which DataType variant a value holds.
type Kind int

// The closed set of DataType tags.
const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindVec2
	KindVec3
	KindIVec2
	KindIVec3
	KindGeometry2D
	KindGeometry3D
	KindAtomic
	KindMotif
	KindUnitCell
	KindDrawingPlane
	KindClosure
	KindArray

	// KindError has no corresponding DataType: NetworkResult extends this
	// tag set with exactly one variant a pin's static type can never
	// declare.
	KindError
)

// kindNames gives a short display name per Kind, in declaration order.
var kindNames = [...]string{
	"None", "Bool", "Int", "Float", "String", "Vec2", "Vec3", "IVec2", "IVec3",
	"Geometry2D", "Geometry3D", "Atomic", "Motif", "UnitCell", "DrawingPlane",
	"Closure", "Array", "Error",
}

// String returns the display name of k.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// DataType is the static type of a pin. Closure and Array carry nested
// DataTypes; every other Kind is a leaf.
type DataType struct {
	Kind Kind

	// Elem is the element type for KindArray.
	Elem *DataType

	// ClosureParams, ClosureReturn describe a KindClosure's signature.
	ClosureParams []DataType
	ClosureReturn *DataType
}

// Leaf constructs a non-parametric DataType (anything but Array/Closure).
func Leaf(k Kind) DataType { return DataType{Kind: k} }

// ArrayOf constructs an Array(elem) DataType.
func ArrayOf(elem DataType) DataType { return DataType{Kind: KindArray, Elem: &elem} }

// ClosureOf constructs a Closure(params, ret) DataType.
func ClosureOf(params []DataType, ret DataType) DataType {
	return DataType{Kind: KindClosure, ClosureParams: params, ClosureReturn: &ret}
}

// AcceptsMultiWire reports whether this DataType's pin accepts any number
// of incoming wires (true only for Array(T); every other DataType accepts
// exactly one wire).
func (d DataType) AcceptsMultiWire() bool { return d.Kind == KindArray }

// Equal reports whether d and o describe the same structural type.
func (d DataType) Equal(o DataType) bool {
	if d.Kind != o.Kind {
		return false
	}
	switch d.Kind {
	case KindArray:
		if d.Elem == nil || o.Elem == nil {
			return d.Elem == o.Elem
		}
		return d.Elem.Equal(*o.Elem)
	case KindClosure:
		if len(d.ClosureParams) != len(o.ClosureParams) {
			return false
		}
		for i := range d.ClosureParams {
			if !d.ClosureParams[i].Equal(o.ClosureParams[i]) {
				return false
			}
		}
		if d.ClosureReturn == nil || o.ClosureReturn == nil {
			return d.ClosureReturn == o.ClosureReturn
		}
		return d.ClosureReturn.Equal(*o.ClosureReturn)
	default:
		return true
	}
}

// CompatibleWith reports whether a wire whose source is type src may feed
// a pin declared with type dst: compatibility is structural equality,
// exactly as the network's wiring rule requires (DataType carries no
// subtyping).
func (src DataType) CompatibleWith(dst DataType) bool { return src.Equal(dst) }

// String renders d for diagnostics (e.g. "Array(Float)", "Closure(Int,Float->Bool)").
func (d DataType) String() string {
	switch d.Kind {
	case KindArray:
		if d.Elem == nil {
			return "Array(?)"
		}
		return fmt.Sprintf("Array(%s)", d.Elem.String())
	case KindClosure:
		params := ""
		for i, p := range d.ClosureParams {
			if i > 0 {
				params += ","
			}
			params += p.String()
		}
		ret := "?"
		if d.ClosureReturn != nil {
			ret = d.ClosureReturn.String()
		}
		return fmt.Sprintf("Closure(%s->%s)", params, ret)
	default:
		return d.Kind.String()
	}
}
