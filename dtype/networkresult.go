package dtype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nanocad-org/structkit/atomic"
	"github.com/nanocad-org/structkit/geotree"
	"github.com/nanocad-org/structkit/motif"
	"github.com/nanocad-org/structkit/unitcell"
)

// NetworkResult is the runtime value carried on a network wire: exactly one
// variant per DataType Kind, plus Error and Array (Array's elements are
// themselves NetworkResults, tagged with the array's declared element
// type).
//
// Producers must always emit a value whose Kind matches the node's
// declared output DataType, or emit Error; the evaluator relies on that
// invariant to propagate a required input's Error as its own result
// without inspecting the error's message.
type NetworkResult struct {
	Kind Kind

	Bool   bool
	Int    int64
	Float  float64
	String string

	Vec2  unitcell.Vec2
	Vec3  unitcell.Vec3
	IVec2 unitcell.IVec2
	IVec3 unitcell.IVec3

	Geometry2D *geotree.Summary2D
	Geometry3D *geotree.Summary3D
	Atomic     *atomic.Structure
	Motif      *motif.Motif
	UnitCell   *unitcell.UnitCell
	DrawPlane  *unitcell.DrawingPlane

	// Array holds KindArray's elements; ElemKind records the array's
	// declared element Kind for Array(T) compatibility checks.
	Array    []NetworkResult
	ElemKind Kind

	// Closure holds KindClosure's callable value.
	Closure *ClosureValue

	// ErrMessage holds KindError's diagnostic text.
	ErrMessage string
}

// ClosureValue is a first-class function value: a subnetwork reference
// plus its already-bound arguments, captured lazily and applied when a
// callee node (e.g. "map") invokes Call.
//
// Call is a plain func value rather than a captured-stack-frame struct:
// the evaluator owns the frame representation, and holding one here would
// force dtype to import the network/evaluator packages, creating an
// import cycle (both already import dtype).
type ClosureValue struct {
	Call func(args []NetworkResult) NetworkResult
}

// ClosureResult constructs a Closure(...) value wrapping fn.
func ClosureResult(fn func(args []NetworkResult) NetworkResult) NetworkResult {
	return NetworkResult{Kind: KindClosure, Closure: &ClosureValue{Call: fn}}
}

// ExtractClosure returns (value, true) if r holds a Closure.
func (r NetworkResult) ExtractClosure() (*ClosureValue, bool) {
	return r.Closure, r.Kind == KindClosure
}

// None returns the unit/absent value (KindNone).
func None() NetworkResult { return NetworkResult{Kind: KindNone} }

// BoolResult, IntResult, ... construct the corresponding leaf variant.
func BoolResult(v bool) NetworkResult { return NetworkResult{Kind: KindBool, Bool: v} }
func IntResult(v int64) NetworkResult { return NetworkResult{Kind: KindInt, Int: v} }
func FloatResult(v float64) NetworkResult { return NetworkResult{Kind: KindFloat, Float: v} }
func StringResult(v string) NetworkResult { return NetworkResult{Kind: KindString, String: v} }
func Vec2Result(v unitcell.Vec2) NetworkResult { return NetworkResult{Kind: KindVec2, Vec2: v} }
func Vec3Result(v unitcell.Vec3) NetworkResult { return NetworkResult{Kind: KindVec3, Vec3: v} }
func IVec2Result(v unitcell.IVec2) NetworkResult { return NetworkResult{Kind: KindIVec2, IVec2: v} }
func IVec3Result(v unitcell.IVec3) NetworkResult { return NetworkResult{Kind: KindIVec3, IVec3: v} }

// Geometry2DResult, Geometry3DResult, AtomicResult, MotifResult,
// UnitCellResult, DrawingPlaneResult wrap the corresponding reference-typed
// variant.
func Geometry2DResult(v *geotree.Summary2D) NetworkResult {
	return NetworkResult{Kind: KindGeometry2D, Geometry2D: v}
}
func Geometry3DResult(v *geotree.Summary3D) NetworkResult {
	return NetworkResult{Kind: KindGeometry3D, Geometry3D: v}
}
func AtomicResult(v *atomic.Structure) NetworkResult { return NetworkResult{Kind: KindAtomic, Atomic: v} }
func MotifResult(v *motif.Motif) NetworkResult { return NetworkResult{Kind: KindMotif, Motif: v} }
func UnitCellResult(v *unitcell.UnitCell) NetworkResult {
	return NetworkResult{Kind: KindUnitCell, UnitCell: v}
}
func DrawingPlaneResult(v *unitcell.DrawingPlane) NetworkResult {
	return NetworkResult{Kind: KindDrawingPlane, DrawPlane: v}
}

// ArrayResult constructs an Array(elemKind) value.
func ArrayResult(elemKind Kind, elems []NetworkResult) NetworkResult {
	return NetworkResult{Kind: KindArray, ElemKind: elemKind, Array: elems}
}

// ErrorResult constructs an Error(message) value.
func ErrorResult(format string, args ...any) NetworkResult {
	return NetworkResult{Kind: KindError, ErrMessage: fmt.Sprintf(format, args...)}
}

// IsError reports whether r is an Error variant.
func (r NetworkResult) IsError() bool { return r.Kind == KindError }

// PropagateError returns (r, true) if r is an Error, else (zero, false);
// reflexive with IsError by construction.
func (r NetworkResult) PropagateError() (NetworkResult, bool) {
	if r.Kind == KindError {
		return r, true
	}
	return NetworkResult{}, false
}

// ExtractBool, ExtractInt, ExtractFloat, ExtractString, ExtractVec2,
// ExtractVec3, ExtractIVec2, ExtractIVec3 return (value, true) if r holds
// that exact variant, else (zero value, false).
func (r NetworkResult) ExtractBool() (bool, bool) { return r.Bool, r.Kind == KindBool }
func (r NetworkResult) ExtractInt() (int64, bool) { return r.Int, r.Kind == KindInt }
func (r NetworkResult) ExtractFloat() (float64, bool) { return r.Float, r.Kind == KindFloat }
func (r NetworkResult) ExtractString() (string, bool) { return r.String, r.Kind == KindString }
func (r NetworkResult) ExtractVec2() (unitcell.Vec2, bool) { return r.Vec2, r.Kind == KindVec2 }
func (r NetworkResult) ExtractVec3() (unitcell.Vec3, bool) { return r.Vec3, r.Kind == KindVec3 }
func (r NetworkResult) ExtractIVec2() (unitcell.IVec2, bool) { return r.IVec2, r.Kind == KindIVec2 }
func (r NetworkResult) ExtractIVec3() (unitcell.IVec3, bool) { return r.IVec3, r.Kind == KindIVec3 }

// ExtractGeometry3D, ExtractAtomic, ExtractMotif, ExtractUnitCell extract
// the corresponding reference-typed variant.
func (r NetworkResult) ExtractGeometry3D() (*geotree.Summary3D, bool) {
	return r.Geometry3D, r.Kind == KindGeometry3D
}
func (r NetworkResult) ExtractGeometry2D() (*geotree.Summary2D, bool) {
	return r.Geometry2D, r.Kind == KindGeometry2D
}
func (r NetworkResult) ExtractAtomic() (*atomic.Structure, bool) { return r.Atomic, r.Kind == KindAtomic }
func (r NetworkResult) ExtractMotif() (*motif.Motif, bool) { return r.Motif, r.Kind == KindMotif }
func (r NetworkResult) ExtractUnitCell() (*unitcell.UnitCell, bool) {
	return r.UnitCell, r.Kind == KindUnitCell
}
func (r NetworkResult) ExtractArray() ([]NetworkResult, bool) { return r.Array, r.Kind == KindArray }

// FromString parses a human literal s into the variant declared by ty.
// Rejects a value whose textual shape does not match ty's declared Kind
// (e.g. "1.0" for an IVec3 pin is an error, not a silently-truncated int).
func FromString(s string, ty DataType) (NetworkResult, error) {
	s = strings.TrimSpace(s)
	switch ty.Kind {
	case KindBool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return NetworkResult{}, fmt.Errorf("dtype: FromString: not a bool: %q", s)
		}
		return BoolResult(v), nil
	case KindInt:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return NetworkResult{}, fmt.Errorf("dtype: FromString: not an int: %q", s)
		}
		return IntResult(v), nil
	case KindFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return NetworkResult{}, fmt.Errorf("dtype: FromString: not a float: %q", s)
		}
		return FloatResult(v), nil
	case KindString:
		return StringResult(s), nil
	case KindVec2:
		xs, err := parseFloatTuple(s, 2)
		if err != nil {
			return NetworkResult{}, err
		}
		return Vec2Result(unitcell.Vec2{X: xs[0], Y: xs[1]}), nil
	case KindVec3:
		xs, err := parseFloatTuple(s, 3)
		if err != nil {
			return NetworkResult{}, err
		}
		return Vec3Result(unitcell.Vec3{X: xs[0], Y: xs[1], Z: xs[2]}), nil
	case KindIVec2:
		xs, err := parseIntTuple(s, 2)
		if err != nil {
			return NetworkResult{}, err
		}
		return IVec2Result(unitcell.IVec2{X: xs[0], Y: xs[1]}), nil
	case KindIVec3:
		xs, err := parseIntTuple(s, 3)
		if err != nil {
			return NetworkResult{}, err
		}
		return IVec3Result(unitcell.IVec3{X: xs[0], Y: xs[1], Z: xs[2]}), nil
	default:
		return NetworkResult{}, fmt.Errorf("dtype: FromString: %s has no literal syntax", ty.Kind)
	}
}

func parseFloatTuple(s string, n int) ([]float64, error) {
	parts := splitTuple(s)
	if len(parts) != n {
		return nil, fmt.Errorf("dtype: FromString: expected %d comma-separated floats, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("dtype: FromString: component %d of %q is not a float", i, s)
		}
		out[i] = v
	}
	return out, nil
}

func parseIntTuple(s string, n int) ([]int64, error) {
	parts := splitTuple(s)
	if len(parts) != n {
		return nil, fmt.Errorf("dtype: FromString: expected %d comma-separated ints, got %q", n, s)
	}
	out := make([]int64, n)
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("dtype: FromString: component %d of %q is not an int", i, s)
		}
		out[i] = v
	}
	return out, nil
}

func splitTuple(s string) []string {
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	return strings.Split(s, ",")
}

// ToDisplayString yields a short one-line form for node subtitles.
func (r NetworkResult) ToDisplayString() string {
	switch r.Kind {
	case KindNone:
		return "None"
	case KindBool:
		return strconv.FormatBool(r.Bool)
	case KindInt:
		return strconv.FormatInt(r.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(r.Float, 'g', 6, 64)
	case KindString:
		return r.String
	case KindVec2:
		return fmt.Sprintf("(%.3g, %.3g)", r.Vec2.X, r.Vec2.Y)
	case KindVec3:
		return fmt.Sprintf("(%.3g, %.3g, %.3g)", r.Vec3.X, r.Vec3.Y, r.Vec3.Z)
	case KindIVec2:
		return fmt.Sprintf("(%d, %d)", r.IVec2.X, r.IVec2.Y)
	case KindIVec3:
		return fmt.Sprintf("(%d, %d, %d)", r.IVec3.X, r.IVec3.Y, r.IVec3.Z)
	case KindGeometry2D:
		return "Geometry2D"
	case KindGeometry3D:
		return "Geometry3D"
	case KindAtomic:
		if r.Atomic != nil {
			return fmt.Sprintf("Atomic(%d atoms)", r.Atomic.NumAtoms())
		}
		return "Atomic"
	case KindMotif:
		return "Motif"
	case KindUnitCell:
		return "UnitCell"
	case KindDrawingPlane:
		return "DrawingPlane"
	case KindClosure:
		return "Closure"
	case KindArray:
		return fmt.Sprintf("Array(%s)[%d]", r.ElemKind, len(r.Array))
	case KindError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ToDetailedString yields a deterministic diagnostic form: the Kind tag
// followed by a value-specific detail, used by snapshot-style tests.
func (r NetworkResult) ToDetailedString() string {
	switch r.Kind {
	case KindArray:
		parts := make([]string, len(r.Array))
		for i, e := range r.Array {
			parts[i] = e.ToDetailedString()
		}
		return fmt.Sprintf("Array(%s)[%s]", r.ElemKind, strings.Join(parts, ", "))
	case KindError:
		return fmt.Sprintf("Error(%s)", r.ErrMessage)
	default:
		return fmt.Sprintf("%s(%s)", r.Kind, r.ToDisplayString())
	}
}
